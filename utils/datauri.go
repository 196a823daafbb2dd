package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const MaxUploadBytes = 10 << 20

var (
	ErrInvalidFile     = errors.New("invalid base64 file")
	ErrFileTooLarge    = errors.New("file exceeds 10MB")
	ErrUnsupportedFile = errors.New("only images and PDF files are accepted")
)

type DecodedFile struct {
	Name        string
	ContentType string
	Ext         string
	Data        []byte
}

// IsImage reports whether the file can be sent as an image_url part.
func (f *DecodedFile) IsImage() bool {
	return strings.HasPrefix(f.ContentType, "image/")
}

// DataURI re-encodes the file as "data:<mime>;base64,<data>".
func (f *DecodedFile) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", f.ContentType, base64.StdEncoding.EncodeToString(f.Data))
}

// DecodeBase64File accepts either a data URI ("data:<mime>;base64,<data>") or
// bare base64. The declared type is checked against the sniffed one.
func DecodeBase64File(payload, filename string) (*DecodedFile, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrInvalidFile
	}

	declared := ""
	data := payload
	if strings.HasPrefix(payload, "data:") {
		meta, rest, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, ErrInvalidFile
		}
		mediaType := strings.TrimPrefix(meta, "data:") // "image/jpeg;base64"
		declared = strings.SplitN(mediaType, ";", 2)[0]
		data = rest
	}

	// base64 inflates by 4/3; reject early before decoding
	if len(data)/4*3 > MaxUploadBytes+3 {
		return nil, ErrFileTooLarge
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if len(raw) > MaxUploadBytes {
		return nil, ErrFileTooLarge
	}

	mt := mimetype.Detect(raw)
	contentType := mt.String()
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if contentType == "application/octet-stream" && declared != "" {
		contentType = declared
	}
	if !allowedType(contentType) {
		return nil, ErrUnsupportedFile
	}

	ext := mt.Extension()
	if ext == "" && filename != "" {
		ext = strings.ToLower(filepath.Ext(filename))
	}
	if contentType == "image/jpeg" {
		ext = ".jpg"
	}

	return &DecodedFile{Name: filename, ContentType: contentType, Ext: ext, Data: raw}, nil
}

func allowedType(ct string) bool {
	return strings.HasPrefix(ct, "image/") || ct == "application/pdf"
}

package utils

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// S3Uploader stores user uploads (exam files, meal photos, avatars).
type S3Uploader struct {
	client *s3.Client
	bucket string
	cdnURL string
	region string
}

func NewS3Uploader(ctx context.Context, region, bucket, cdnURL string) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config for s3: %w", err)
	}
	return &S3Uploader{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		cdnURL: strings.TrimRight(cdnURL, "/"),
		region: region,
	}, nil
}

// Upload puts the file under "<prefix>/<owner>/<unix-nano><ext>" and returns
// its public URL (CDN when configured, bucket URL otherwise).
func (u *S3Uploader) Upload(ctx context.Context, f *DecodedFile, prefix string, owner uuid.UUID) (string, error) {
	key := fmt.Sprintf("%s/%s/%d%s", prefix, owner, time.Now().UnixNano(), f.Ext)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(f.Data),
		ContentType: aws.String(f.ContentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	if u.cdnURL != "" {
		return fmt.Sprintf("%s/%s", u.cdnURL, key), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key), nil
}

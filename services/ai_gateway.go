package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brfrauches/augmend-71119/metrics"
	"github.com/brfrauches/augmend-71119/prompts"
	"github.com/brfrauches/augmend-71119/utils"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Responses bigger than this are not chat completions we can use.
const maxAIResponseBytes = 4 << 20

type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []ContentPart
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// AIGateway talks to an OpenAI-compatible chat-completions endpoint.
type AIGateway struct {
	client  *http.Client
	url     string
	key     string
	model   string
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewAIGateway(url, key, model string, timeout time.Duration, m *metrics.Metrics, log *zap.Logger) *AIGateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &AIGateway{
		client:  &http.Client{Timeout: timeout},
		url:     url,
		key:     key,
		model:   model,
		metrics: m,
		log:     log,
	}
}

// Complete sends messages and returns choices[0].message.content.
func (g *AIGateway) Complete(ctx context.Context, feature string, messages []ChatMessage) (string, error) {
	start := time.Now()
	content, err := g.complete(ctx, messages)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		g.log.Warn("ai gateway call failed", zap.String("feature", feature), zap.Error(err))
	}
	g.metrics.RecordAICall(feature, outcome, time.Since(start))
	return content, err
}

func (g *AIGateway) complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if g.key == "" {
		return "", fmt.Errorf("%w: AI_GATEWAY_KEY not configured", ErrAIUnavailable)
	}

	body, err := json.Marshal(map[string]any{
		"model":       g.model,
		"messages":    messages,
		"temperature": 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("encode ai request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build ai request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxAIResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrAIUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// gateways answer {"error": {"message": ...}} or {"error": "..."}
		msg := gjson.GetBytes(respBytes, "error.message").String()
		if msg == "" {
			msg = gjson.GetBytes(respBytes, "error").String()
		}
		if msg == "" {
			msg = preview(respBytes)
		}
		return "", fmt.Errorf("%w: AI API error (%d): %s", ErrAIUnavailable, resp.StatusCode, msg)
	}

	content := gjson.GetBytes(respBytes, "choices.0.message.content")
	if !content.Exists() || strings.TrimSpace(content.String()) == "" {
		return "", fmt.Errorf("%w: no content returned from AI", ErrAIResponse)
	}
	return content.String(), nil
}

// CompleteJSON renders the feature prompt, calls the gateway and decodes the
// JSON document found in the reply into out. imageURL is optional.
func (g *AIGateway) CompleteJSON(ctx context.Context, feature string, data map[string]any, imageURL string, out any) error {
	system, user, err := prompts.Render(feature, data)
	if err != nil {
		return err
	}

	var userMsg ChatMessage
	if imageURL != "" {
		userMsg = ChatMessage{Role: "user", Content: []ContentPart{
			{Type: "text", Text: user},
			{Type: "image_url", ImageURL: &ImageURL{URL: imageURL}},
		}}
	} else {
		userMsg = ChatMessage{Role: "user", Content: user}
	}

	content, err := g.Complete(ctx, feature, []ChatMessage{
		{Role: "system", Content: system},
		userMsg,
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(utils.ExtractJSON(content)), out); err != nil {
		g.log.Warn("unparseable ai reply", zap.String("feature", feature), zap.String("content", preview([]byte(content))))
		return fmt.Errorf("%w: %v", ErrAIResponse, err)
	}
	return nil
}

func preview(b []byte) string {
	s := string(b)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// IsAIError reports whether err came from the gateway rather than the caller.
func IsAIError(err error) bool {
	return errors.Is(err, ErrAIUnavailable) || errors.Is(err, ErrAIResponse)
}

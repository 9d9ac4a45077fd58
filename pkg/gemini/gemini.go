package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-flash-latest"

var (
	ErrMissingAPIKey = errors.New("gemini API key is required")
	ErrEmptyResponse = errors.New("no response from Gemini API")
)

type IGemini interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType string, prompt string) (string, error)
	Provider() string
	ModelName() string
	Close() error
}

type Config struct {
	APIKey    string
	ModelName string
	// Attempts bounds GenerateContent calls per request, including the first.
	Attempts int
}

type geminiClient struct {
	modelName string
	attempts  int
	client    *genai.Client
}

func NewGeminiClient(ctx context.Context, cfg Config) (IGemini, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	modelName := strings.TrimSpace(cfg.ModelName)
	if modelName == "" {
		modelName = DefaultModel
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &geminiClient{
		modelName: modelName,
		attempts:  cfg.Attempts,
		client:    client,
	}, nil
}

func (g *geminiClient) Provider() string  { return "gemini" }
func (g *geminiClient) ModelName() string { return g.modelName }

func (g *geminiClient) AnalyzeImage(ctx context.Context, image []byte, mimeType string, prompt string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("image data is empty")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	model := g.client.GenerativeModel(g.modelName)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}

	parts := []genai.Part{
		genai.Text(prompt),
		&genai.Blob{MIMEType: mimeType, Data: image},
	}

	var lastErr error
	for attempt := 1; attempt <= g.attempts; attempt++ {
		res, err := model.GenerateContent(ctx, parts...)
		if err == nil {
			text := firstText(res)
			if text == "" {
				return "", ErrEmptyResponse
			}
			return text, nil
		}

		lastErr = err
		if ctx.Err() != nil || attempt == g.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("gemini: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
		}
	}

	if ctx.Err() != nil {
		return "", fmt.Errorf("gemini: %w", ctx.Err())
	}
	return "", fmt.Errorf("gemini: %w", lastErr)
}

func (g *geminiClient) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func firstText(res *genai.GenerateContentResponse) string {
	if res == nil {
		return ""
	}
	for _, cand := range res.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}

func ptrFloat32(f float32) *float32 { return &f }

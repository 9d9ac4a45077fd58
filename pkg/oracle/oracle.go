// Package oracle selects the multimodal model that judges liveness frames.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"FaceVerify/pkg/gemini"
	"FaceVerify/pkg/openai"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var ErrUnknownProvider = errors.New("unknown oracle provider")

// IOracle sends one instruction and one image and returns the raw text reply.
type IOracle interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType string, prompt string) (string, error)
	Provider() string
	ModelName() string
	Close() error
}

type Config struct {
	Provider     string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
}

func New(ctx context.Context, cfg Config) (IOracle, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		return gemini.NewGeminiClient(ctx, gemini.Config{
			APIKey:    cfg.GeminiAPIKey,
			ModelName: cfg.GeminiModel,
		})
	case ProviderOpenAI:
		return openai.NewVision(openai.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

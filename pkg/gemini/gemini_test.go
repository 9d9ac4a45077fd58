package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestFirstText(t *testing.T) {
	tests := []struct {
		name string
		res  *genai.GenerateContentResponse
		want string
	}{
		{name: "nil response", res: nil, want: ""},
		{name: "no candidates", res: &genai.GenerateContentResponse{}, want: ""},
		{
			name: "joins text parts of first candidate with text",
			res: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: nil},
				{Content: &genai.Content{Parts: []genai.Part{
					genai.Text(`{"verified":`),
					genai.Blob{MIMEType: "image/png"},
					genai.Text(` true}`),
				}}},
			}},
			want: `{"verified": true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstText(tt.res); got != tt.want {
				t.Errorf("firstText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	if _, err := NewGeminiClient(context.Background(), Config{APIKey: "  "}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("NewGeminiClient() error = %v, want %v", err, ErrMissingAPIKey)
	}
}

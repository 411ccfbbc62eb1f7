package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini implements the Extractor interface using Google Gemini. The
// model argument of ExtractFields is ignored unless non-empty; the
// client is bound to one model at construction.
type Gemini struct {
	client    *genai.Client
	modelName string
}

// NewGemini creates a new Gemini Extractor instance
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{
		client:    client,
		modelName: modelName,
	}, nil
}

// ExtractFields prompts Gemini with the invoice text and recovers the
// structured field set from its reply. Failures degrade to Empty() the
// same way the Ollama client does.
func (g *Gemini) ExtractFields(ctx context.Context, text, model string) (FieldSet, error) {
	name := g.modelName
	if model != "" {
		name = model
	}
	gm := g.client.GenerativeModel(name)

	resp, err := gm.GenerateContent(ctx, genai.Text(BuildPrompt(text)))
	if err != nil {
		return Empty(), fmt.Errorf("%w: generating content: %v", ErrUnreachable, err)
	}

	// Safety-blocked candidates carry a nil Content
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Empty(), fmt.Errorf("%w: no response from gemini", ErrUnreachable)
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			reply.WriteString(string(t))
		}
	}

	return RecoverFieldSet(reply.String())
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}

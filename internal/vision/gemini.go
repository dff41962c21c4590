// Package vision forwards images to a hosted vision-capable language model.
package vision

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dtroode/vision-analyzer/internal/model"
)

const describePrompt = `Describe this image in detail. Mention the main subjects, the setting,
notable colors and any visible text. Answer in plain prose without markdown.`

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var _ model.Describer = (*Gemini)(nil)

// Gemini describes images with the Gemini API.
type Gemini struct {
	models    generator
	modelName string
}

// NewGemini creates a client for the Gemini API authenticated with apiKey.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return newGemini(client.Models, modelName), nil
}

func newGemini(models generator, modelName string) *Gemini {
	return &Gemini{models: models, modelName: modelName}
}

// Describe sends the image inline with the describe prompt. Provider
// failures come back as *model.ProviderError.
func (g *Gemini) Describe(ctx context.Context, image model.Image) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: describePrompt},
				{InlineData: &genai.Blob{MIMEType: image.ContentType, Data: image.Data}},
			},
		}},
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(0.4)),
		},
	)
	if err != nil {
		return "", &model.ProviderError{Message: err.Error(), Err: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &model.ProviderError{Message: "the vision model returned no description"}
	}

	return text, nil
}

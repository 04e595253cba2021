package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/hanbit-dev/pagecraft/internal/core"
)

type GeminiLLM struct {
	client      *genai.Client
	modelName   string
	visionModel string
}

func NewGeminiLLM(ctx context.Context, apiKey, modelName, visionModel string) (*GeminiLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if visionModel == "" {
		visionModel = modelName
	}
	return &GeminiLLM{client: cl, modelName: modelName, visionModel: visionModel}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return collectText(resp), nil
}

// GenerateWithImages sends the prompt together with inline images to the vision
// model. Images come first so the model reads them before the instructions,
// mirroring how the prompt templates are written.
func (g *GeminiLLM) GenerateWithImages(ctx context.Context, prompt string, images []core.ImageInput) (string, error) {
	m := g.client.GenerativeModel(g.visionModel)

	parts := make([]genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, genai.ImageData(imageFormat(img.MIMEType), img.Data))
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini vision generate: %w", err)
	}
	return collectText(resp), nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

// imageFormat turns a MIME type like "image/png" into the bare format genai expects.
func imageFormat(mimeType string) string {
	format := strings.TrimPrefix(mimeType, "image/")
	if format == "" {
		return "jpeg"
	}
	return format
}

var _ core.LLMProvider = (*GeminiLLM)(nil)

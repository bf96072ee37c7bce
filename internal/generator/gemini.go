package generator

import (
	"context"
	"fmt"
	"os"
	"sync"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider implements Provider with Google's Gemini models.
// The GenAI client is built on first use and shared by later requests.
type GeminiProvider struct {
	APIKey string
	Model  string

	once      sync.Once
	client    *genai.Client
	clientErr error
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProviderFromEnv reads GEMINI_API_KEY and GEMINI_MODEL.
func NewGeminiProviderFromEnv() *GeminiProvider {
	return &GeminiProvider{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_MODEL"),
	}
}

func (p *GeminiProvider) model() string {
	if p.Model == "" {
		return defaultGeminiModel
	}
	return p.Model
}

func (p *GeminiProvider) Name() string {
	return "gemini/" + p.model()
}

// GenerateResponse sends a generateContent request through the GenAI SDK.
func (p *GeminiProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, opts Options) (string, error) {
	if p.APIKey == "" {
		return "", &GenerationError{
			Code:    CodeProviderUnavailable,
			Message: "GEMINI_API_KEY environment variable not set",
		}
	}

	model := p.model()
	if opts.Model != "" {
		model = opts.Model
	}

	client, err := p.clientFor(ctx)
	if err != nil {
		return "", &GenerationError{
			Code:    CodeProviderUnavailable,
			Message: "failed to create GenAI client",
			Err:     err,
		}
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
	}
	if opts.JSON {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = draftSchema()
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", &GenerationError{
			Code:    CodeProviderFailed,
			Message: fmt.Sprintf("gemini generation failed (model=%s)", model),
			Err:     err,
		}
	}
	return result.Text(), nil
}

// clientFor returns the shared client. The first caller's cancellation does
// not leak into it.
func (p *GeminiProvider) clientFor(ctx context.Context) (*genai.Client, error) {
	p.once.Do(func() {
		p.client, p.clientErr = genai.NewClient(context.WithoutCancel(ctx), &genai.ClientConfig{
			APIKey:  p.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return p.client, p.clientErr
}

// draftSchema mirrors Draft so the model answers with every field present.
func draftSchema() *genai.Schema {
	props := make(map[string]*genai.Schema, len(draftFields))
	required := make([]string, 0, len(draftFields))
	for _, f := range draftFields {
		typ := genai.TypeNumber
		if f.text {
			typ = genai.TypeString
		}
		props[f.name] = &genai.Schema{Type: typ, Description: f.description}
		required = append(required, f.name)
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   required,
	}
}

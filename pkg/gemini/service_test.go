package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	resp *genai.GenerateContentResponse
	err  error

	model  string
	config *genai.GenerateContentConfig
	prompt string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGenerateForwardsOptions(t *testing.T) {
	t.Parallel()

	fake := &fakeModels{resp: textResponse(`{"title":`, ` "Laptops"}`)}
	svc := newGeminiService(fake, "", nil)

	out, err := svc.Generate(context.Background(), "  extract this  ", Options{
		Temperature:     0.1,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 2048,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"title": "Laptops"}`, out)
	assert.Equal(t, DefaultModel, fake.model)
	assert.Equal(t, "extract this", fake.prompt)
	require.NotNil(t, fake.config.Temperature)
	assert.InDelta(t, 0.1, *fake.config.Temperature, 1e-6)
	assert.InDelta(t, 0.95, *fake.config.TopP, 1e-6)
	assert.InDelta(t, 40, *fake.config.TopK, 1e-6)
	assert.Equal(t, int32(2048), fake.config.MaxOutputTokens)
}

func TestGenerateLeavesUnsetOptionsNil(t *testing.T) {
	t.Parallel()

	fake := &fakeModels{resp: textResponse("ok")}
	svc := newGeminiService(fake, "gemini-2.5-pro", nil)

	_, err := svc.Generate(context.Background(), "hi", Options{Temperature: 0.3, MaxOutputTokens: 1024})
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-pro", fake.model)
	assert.Nil(t, fake.config.TopP)
	assert.Nil(t, fake.config.TopK)
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fake   *fakeModels
		prompt string
	}{
		{"empty prompt", &fakeModels{resp: textResponse("x")}, "   "},
		{"api error", &fakeModels{err: errors.New("429 RESOURCE_EXHAUSTED")}, "hi"},
		{"empty response", &fakeModels{resp: &genai.GenerateContentResponse{}}, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := newGeminiService(tt.fake, "", nil).Generate(context.Background(), tt.prompt, Options{})
			assert.Error(t, err)
		})
	}
}

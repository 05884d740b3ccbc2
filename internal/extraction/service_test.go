package extraction

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"rfp-backend/pkg/ai"
	"rfp-backend/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	response string
	err      error
	block    bool

	calls   int
	prompts []string
	configs []ai.GenerationConfig
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, cfg ai.GenerationConfig) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.configs = append(f.configs, cfg)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.response, f.err
}

func TestExtractRFP(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{response: "```json\n" + `{
		"title": "Office Laptop Procurement",
		"budget": "$50,000",
		"deadline": "2025-03-31",
		"items": [
			{"name": "Laptop", "quantity": 20, "specifications": "16GB RAM"},
			{"name": "Monitor", "quantity": 0},
			{"name": "Dock", "quantity": "3"},
			{"quantity": 4},
			"not an object"
		]
	}` + "\n```"}
	svc := NewService(fake, 0, nil)

	rec, err := svc.ExtractRFP(context.Background(), "We need 20 laptops with 16GB RAM and monitors, budget $50,000, by end of March.")
	require.NoError(t, err)

	assert.Equal(t, "Office Laptop Procurement", rec.Title)
	require.NotNil(t, rec.Budget)
	assert.True(t, decimal.NewFromInt(50000).Equal(*rec.Budget))
	require.NotNil(t, rec.Deadline)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), *rec.Deadline)
	assert.Equal(t, []ItemRecord{
		{Name: "Laptop", Quantity: 20, Specifications: "16GB RAM"},
		{Name: "Monitor", Quantity: 1},
		{Name: "Dock", Quantity: 3},
	}, rec.Items)

	require.Equal(t, 1, fake.calls)
	assert.Equal(t, RFPSchema.Generation, fake.configs[0])
	assert.InDelta(t, 0.1, fake.configs[0].Temperature, 1e-6)
	assert.Equal(t, int32(2048), fake.configs[0].MaxOutputTokens)
	assert.Contains(t, fake.prompts[0], "We need 20 laptops")
	assert.Contains(t, fake.prompts[0], "YYYY-MM-DD")
}

func TestExtractRFPQuantities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"integer", `50`, 50},
		{"numeric string", `"50"`, 50},
		{"quantity with unit", `"50 units"`, 50},
		{"thousands separator", `"1,200 pcs"`, 1200},
		{"fraction rounds", `2.6`, 3},
		{"negative", `-3`, 1},
		{"negative string", `"-3"`, 1},
		{"zero", `0`, 1},
		{"no number", `"several"`, 1},
		{"null", `null`, 1},
		{"huge integer", `5000000000`, math.MaxInt32},
		{"huge float", `1e30`, math.MaxInt32},
		{"huge float string", `"1e30 boxes"`, math.MaxInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeCompleter{response: `{"title": "Laptops", "items": [{"name": "Laptop", "quantity": ` + tt.raw + `}]}`}
			rec, err := NewService(fake, 0, nil).ExtractRFP(context.Background(), "We need 50 laptops with 16GB RAM. Budget is $75,000.")
			require.NoError(t, err)
			require.Len(t, rec.Items, 1)
			assert.Equal(t, tt.want, rec.Items[0].Quantity)
		})
	}
}

func TestExtractRFPDefaults(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{response: `{"title": "", "budget": null, "deadline": "next month"}`}
	rec, err := NewService(fake, 0, nil).ExtractRFP(context.Background(), "Need some chairs")
	require.NoError(t, err)

	assert.Equal(t, "Untitled RFP", rec.Title)
	assert.Nil(t, rec.Budget)
	assert.Nil(t, rec.Deadline)
	assert.NotNil(t, rec.Items)
	assert.Empty(t, rec.Items)
}

func TestExtractEmptyInputMakesNoCall(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{response: `{}`}
	svc := NewService(fake, 0, nil)

	_, err := svc.ExtractRFP(context.Background(), "   \n\t ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.ExtractProposal(context.Background(), "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	assert.Zero(t, fake.calls)
}

func TestExtractMalformedResponses(t *testing.T) {
	t.Parallel()

	for name, response := range map[string]string{
		"not json":      "Sure! Here is the data you asked for.",
		"array":         `[{"title": "x"}]`,
		"empty":         "   ",
		"trailing text": `{"title": "x"} hope this helps`,
		"null":          "null",
	} {
		fake := &fakeCompleter{response: response}
		_, err := NewService(fake, 0, nil).ExtractRFP(context.Background(), "laptops")
		assert.ErrorIs(t, err, apperr.ErrMalformedResponse, name)
		assert.Equal(t, 1, fake.calls, name)
	}
}

func TestExtractUpstreamFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{err: errors.New("503 service unavailable")}
	_, err := NewService(fake, 0, nil).ExtractProposal(context.Background(), "price is 100")

	assert.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)
	assert.NotErrorIs(t, err, apperr.ErrTimeout)
	assert.Equal(t, 1, fake.calls)
}

func TestExtractTimeout(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{block: true}
	_, err := NewService(fake, 20*time.Millisecond, nil).ExtractRFP(context.Background(), "laptops")

	assert.ErrorIs(t, err, apperr.ErrTimeout)
	assert.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)
}

func TestExtractNoCompleter(t *testing.T) {
	t.Parallel()

	_, err := NewService(nil, 0, nil).ExtractRFP(context.Background(), "laptops")
	assert.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)
}

func TestExtractProposal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		response  string
		wantPrice string
		wantTerms *string
		wantWarr  *string
	}{
		{
			name:      "all fields",
			response:  `{"price": 48500.5, "payment_terms": "Net 30", "warranty": "3 years on-site"}`,
			wantPrice: "48500.5",
			wantTerms: ptr("Net 30"),
			wantWarr:  ptr("3 years on-site"),
		},
		{
			name:      "missing price stays absent",
			response:  `{"price": null, "payment_terms": "50% upfront", "warranty": ""}`,
			wantTerms: ptr("50% upfront"),
		},
		{
			name:      "price as string",
			response:  `{"price": "USD 12,345.678"}`,
			wantPrice: "12345.68",
		},
		{
			name:     "negative price rejected",
			response: `{"price": -10}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeCompleter{response: tt.response}
			rec, err := NewService(fake, 0, nil).ExtractProposal(context.Background(), "Our offer ...")
			require.NoError(t, err)

			if tt.wantPrice == "" {
				assert.Nil(t, rec.Price)
			} else {
				require.NotNil(t, rec.Price)
				assert.True(t, decimal.RequireFromString(tt.wantPrice).Equal(*rec.Price), rec.Price.String())
			}
			assert.Equal(t, tt.wantTerms, rec.PaymentTerms)
			assert.Equal(t, tt.wantWarr, rec.Warranty)
			assert.Equal(t, int32(1024), fake.configs[0].MaxOutputTokens)
		})
	}
}

func TestPromptIsDeterministic(t *testing.T) {
	t.Parallel()

	a := ProposalSchema.Prompt("Total: $100")
	b := ProposalSchema.Prompt("Total: $100")
	assert.Equal(t, a, b)
	assert.Contains(t, a, `"payment_terms": "payment terms", or null`)
	assert.Contains(t, a, "1. When several prices are quoted")

	rfp := RFPSchema.Prompt("chairs")
	assert.Contains(t, rfp, `"items": [`)
	assert.Contains(t, rfp, `"quantity": integer, 1 when not stated`)
}

func ptr(s string) *string { return &s }

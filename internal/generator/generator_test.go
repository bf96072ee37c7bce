package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"runway-forecast/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDraft = `{
  "startArrUsd": 1200000,
  "acvUsd": 12000,
  "newLogosPerMonth": 10,
  "churnMonthly": 1.5,
  "upsellMonthly": 0.5,
  "startCashUsd": 3000000,
  "payrollPerMonthUsd": 150000,
  "opexPerMonthUsd": 30000,
  "collectSplit0": 25,
  "collectSplit1": 75,
  "oneOffInvestmentMonth": 2,
  "oneOffInvestmentAmountUsd": 2000000,
  "reasoning": "Seed-stage SMB motion with a bridge round in month 2."
}`

type fakeProvider struct {
	responses []string
	err       error
	calls     int
	lastSys   string
	lastOpts  Options
}

func (f *fakeProvider) Name() string { return "fake/test" }

func (f *fakeProvider) GenerateResponse(_ context.Context, _ string, systemPrompt string, opts Options) (string, error) {
	f.calls++
	f.lastSys = systemPrompt
	f.lastOpts = opts
	if f.err != nil {
		return "", f.err
	}
	i := f.calls - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func requireCode(t *testing.T, err error, code string) *GenerationError {
	t.Helper()
	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr), "expected GenerationError, got %v", err)
	assert.Equal(t, code, genErr.Code)
	return genErr
}

func TestParseDraftConvertsPercentages(t *testing.T) {
	d, err := ParseDraft(validDraft)
	require.NoError(t, err)

	a, err := d.ToAssumptions()
	require.NoError(t, err)
	assert.Equal(t, DraftHorizonMonths, a.HorizonMonths)
	assert.Equal(t, 1_200_000.0, a.StartArrUsd)
	assert.InDelta(t, 0.015, a.ChurnMonthly, 1e-12)
	assert.InDelta(t, 0.005, a.UpsellMonthly, 1e-12)
	assert.InDelta(t, 0.25, a.CollectSplit.Current(), 1e-12)
	assert.InDelta(t, 0.75, a.CollectSplit.Previous(), 1e-12)
	assert.Equal(t, 2, a.OneOffInvestmentMonth)
	assert.Equal(t, model.CostModelFlat, a.Costs.Kind)
	require.NotNil(t, a.Costs.Flat)
	assert.Equal(t, 150_000.0, a.Costs.Flat.PayrollPerMonthUsd)
	assert.Equal(t, 30_000.0, a.Costs.Flat.OpexPerMonthUsd)
	assert.NoError(t, a.Validate())
}

func TestParseDraftNormalizesCollectSplit(t *testing.T) {
	raw := strings.Replace(validDraft, `"collectSplit0": 25`, `"collectSplit0": 50`, 1)
	raw = strings.Replace(raw, `"collectSplit1": 75`, `"collectSplit1": 100`, 1)

	d, err := ParseDraft(raw)
	require.NoError(t, err)
	a, err := d.ToAssumptions()
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3, a.CollectSplit.Current(), 1e-12)
	assert.InDelta(t, 2.0/3, a.CollectSplit.Previous(), 1e-12)
}

func TestParseDraftLenient(t *testing.T) {
	raw := `{
  startArrUsd: 0,
  acvUsd: 5000,
  newLogosPerMonth: 4,
  churnMonthly: 2,
  upsellMonthly: 0.3,
  startCashUsd: 800000,
  payrollPerMonthUsd: 60000,
  opexPerMonthUsd: 12000,
  collectSplit0: 25,
  collectSplit1: 75,
  oneOffInvestmentMonth: 0,
  oneOffInvestmentAmountUsd: 0,
  reasoning: "Pre-revenue",
}`
	d, err := ParseDraft(raw)
	require.NoError(t, err)
	require.NotNil(t, d.AcvUsd)
	assert.Equal(t, 5000.0, *d.AcvUsd)
	require.NotNil(t, d.Reasoning)
	assert.Equal(t, "Pre-revenue", *d.Reasoning)
}

func TestParseDraftRejects(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		detail string
	}{
		{
			name:   "missing field",
			raw:    strings.Replace(validDraft, `"reasoning": "Seed-stage SMB motion with a bridge round in month 2."`, `"reasoning": null`, 1),
			detail: "reasoning is required",
		},
		{
			name:   "churn above 100 percent",
			raw:    strings.Replace(validDraft, `"churnMonthly": 1.5`, `"churnMonthly": 150`, 1),
			detail: "churnMonthly must be <= 100",
		},
		{
			name:   "negative cash",
			raw:    strings.Replace(validDraft, `"startCashUsd": 3000000`, `"startCashUsd": -1`, 1),
			detail: "startCashUsd must be >= 0",
		},
		{
			name:   "investment month beyond horizon",
			raw:    strings.Replace(validDraft, `"oneOffInvestmentMonth": 2`, `"oneOffInvestmentMonth": 13`, 1),
			detail: "oneOffInvestmentMonth must be <= 12",
		},
		{
			name:   "fractional investment month",
			raw:    strings.Replace(validDraft, `"oneOffInvestmentMonth": 2`, `"oneOffInvestmentMonth": 2.5`, 1),
			detail: "oneOffInvestmentMonth must be a whole month",
		},
		{
			name:   "zero acv",
			raw:    strings.Replace(validDraft, `"acvUsd": 12000`, `"acvUsd": 0`, 1),
			detail: "acvUsd must be > 0",
		},
		{
			name:   "zero collect split",
			raw:    strings.Replace(strings.Replace(validDraft, `"collectSplit0": 25`, `"collectSplit0": 0`, 1), `"collectSplit1": 75`, `"collectSplit1": 0`, 1),
			detail: "cannot both be 0",
		},
		{
			name:   "unknown field",
			raw:    strings.Replace(validDraft, `"acvUsd": 12000,`, `"acvUsd": 12000, "burnRate": 5,`, 1),
			detail: `unexpected field "burnRate"`,
		},
		{
			name:   "number as string",
			raw:    strings.Replace(validDraft, `"acvUsd": 12000`, `"acvUsd": "12000"`, 1),
			detail: "invalid budget assumptions generated",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDraft(tt.raw)
			genErr := requireCode(t, err, CodeInvalidDraft)
			assert.Contains(t, genErr.Error(), tt.detail)
		})
	}
}

func TestParseDraftNotJSON(t *testing.T) {
	for _, raw := range []string{"", "   ", "[1, 2, 3]"} {
		_, err := ParseDraft(raw)
		requireCode(t, err, CodeInvalidDraft)
	}
}

func TestGenerateUsesCache(t *testing.T) {
	p := &fakeProvider{responses: []string{validDraft}}
	g := New(p, NewResponseCache(time.Hour))

	first, err := g.Generate(context.Background(), "  Seed SaaS raising $2M  ")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "Seed-stage SMB motion with a bridge round in month 2.", first.Reasoning)
	assert.Equal(t, SystemPrompt, p.lastSys)
	assert.True(t, p.lastOpts.JSON)

	second, err := g.Generate(context.Background(), "Seed SaaS raising $2M")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Assumptions, second.Assumptions)
	assert.Equal(t, 1, p.calls)
}

func TestGenerateDoesNotCacheRejectedDrafts(t *testing.T) {
	bad := strings.Replace(validDraft, `"churnMonthly": 1.5`, `"churnMonthly": 101`, 1)
	p := &fakeProvider{responses: []string{bad}}
	g := New(p, NewResponseCache(time.Hour))

	for i := 0; i < 2; i++ {
		_, err := g.Generate(context.Background(), "same prompt")
		requireCode(t, err, CodeInvalidDraft)
	}
	assert.Equal(t, 2, p.calls)
}

func TestGenerateErrors(t *testing.T) {
	ctx := context.Background()

	_, err := New(&fakeProvider{responses: []string{validDraft}}, nil).Generate(ctx, "   ")
	requireCode(t, err, CodeInvalidPrompt)

	_, err = New(&fakeProvider{responses: []string{validDraft}}, nil).Generate(ctx, strings.Repeat("x", MaxPromptLength+1))
	requireCode(t, err, CodeInvalidPrompt)

	_, err = New(nil, nil).Generate(ctx, "hello")
	requireCode(t, err, CodeProviderUnavailable)

	boom := errors.New("connection reset")
	_, err = New(&fakeProvider{err: boom}, nil).Generate(ctx, "hello")
	requireCode(t, err, CodeProviderFailed)
	assert.ErrorIs(t, err, boom)

	unavailable := &GenerationError{Code: CodeProviderUnavailable, Message: "down"}
	_, err = New(&fakeProvider{err: fmt.Errorf("wrapped: %w", unavailable)}, nil).Generate(ctx, "hello")
	requireCode(t, err, CodeProviderUnavailable)
}

func TestGeminiProviderWithoutKey(t *testing.T) {
	p := &GeminiProvider{}
	assert.Equal(t, "gemini/"+defaultGeminiModel, p.Name())

	for range 2 {
		_, err := p.GenerateResponse(context.Background(), "hi", SystemPrompt, Options{JSON: true})
		requireCode(t, err, CodeProviderUnavailable)
	}
	assert.Nil(t, p.client, "no client without a key")
}

func TestGeminiProviderReusesClient(t *testing.T) {
	p := &GeminiProvider{APIKey: "test-key"}
	ctx, cancel := context.WithCancel(context.Background())

	first, err := p.clientFor(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	cancel()

	second, err := p.clientFor(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestDraftSchemaRequiresEveryField(t *testing.T) {
	s := draftSchema()
	assert.Len(t, s.Required, len(draftFields))
	assert.Len(t, s.Properties, len(draftFields))
	assert.Contains(t, s.Required, "reasoning")
}

func TestResponseCacheExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewResponseCache(time.Minute)
	c.now = func() time.Time { return now }

	key := CacheKey("fake/test", "prompt")
	assert.Len(t, key, 64)
	assert.NotEqual(t, key, CacheKey("fake/other", "prompt"))

	c.Set(key, "value")
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "value", got)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(key)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Prune())

	var nilCache *ResponseCache
	nilCache.Set(key, "x")
	_, ok = nilCache.Get(key)
	assert.False(t, ok)
}

// Package generator turns a founder's plain-language goals into forecast
// assumptions by asking an LLM for a draft and validating it strictly.
package generator

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"runway-forecast/internal/model"
)

// MaxPromptLength bounds the user prompt in characters.
const MaxPromptLength = 4000

// SystemPrompt frames the provider as a SaaS finance advisor.
const SystemPrompt = `You are a financial advisor helping B2B SaaS founders build realistic 12-month budgets.

Read the founder's goals and answer with one JSON object of budget assumptions.

Benchmarks for B2B SaaS:
- Monthly churn 0.5-2% for good retention; monthly expansion 0.3-1%.
- ACV $3,000-$50,000 for SMB, above $50,000 for enterprise.
- 5-50 new logos per month depending on stage and go-to-market motion.
- Loaded payroll of $8,000-$15,000 per employee per month.
- Operating expenses around 10-30% of payroll at early stage.
- Cash collection is usually 25% in the billing month and 75% the month after.

Rules:
- Rates and the collection split are percentages (2 means 2%).
- Pre-revenue companies start at 0 ARR; use stated revenue figures when given.
- A fundraise is a one-off investment, typically in month 1-3; use month 0 and amount 0 when there is none.
- Team growth raises payroll: engineering about $12k, sales about $10k, marketing about $8k per head per month, plus 20% for tools and infrastructure.
- Keep the reasoning to two or three sentences.`

// Result is a validated generation.
type Result struct {
	Assumptions model.Assumptions
	Reasoning   string
	Cached      bool
}

// Generator drafts assumptions through a Provider.
type Generator struct {
	provider Provider
	cache    *ResponseCache
}

// New returns a Generator. provider may be nil, in which case Generate
// reports PROVIDER_UNAVAILABLE; cache may be nil.
func New(provider Provider, cache *ResponseCache) *Generator {
	return &Generator{provider: provider, cache: cache}
}

// Generate asks the provider for a draft and converts it to assumptions.
// Invalid drafts are rejected, never coerced.
func (g *Generator) Generate(ctx context.Context, prompt string) (*Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, &GenerationError{Code: CodeInvalidPrompt, Message: "prompt is required"}
	}
	if utf8.RuneCountInString(prompt) > MaxPromptLength {
		return nil, &GenerationError{Code: CodeInvalidPrompt, Message: "prompt is too long"}
	}
	if g.provider == nil {
		return nil, &GenerationError{Code: CodeProviderUnavailable, Message: "no generation provider configured"}
	}

	key := CacheKey(g.provider.Name(), prompt)
	if raw, ok := g.cache.Get(key); ok {
		if res, err := toResult(raw); err == nil {
			log.Printf("[Generator] Cache hit (provider=%s)", g.provider.Name())
			res.Cached = true
			return res, nil
		}
	}

	log.Printf("[Generator] Requesting draft (provider=%s, prompt_chars=%d)", g.provider.Name(), utf8.RuneCountInString(prompt))
	raw, err := g.provider.GenerateResponse(ctx, prompt, SystemPrompt, Options{JSON: true})
	if err != nil {
		var genErr *GenerationError
		if errors.As(err, &genErr) {
			return nil, genErr
		}
		return nil, &GenerationError{Code: CodeProviderFailed, Message: "provider request failed", Err: err}
	}

	res, err := toResult(raw)
	if err != nil {
		log.Printf("[Generator] Rejected draft (provider=%s): %v", g.provider.Name(), err)
		return nil, err
	}
	g.cache.Set(key, raw)
	return res, nil
}

func toResult(raw string) (*Result, error) {
	d, err := ParseDraft(raw)
	if err != nil {
		return nil, err
	}
	a, err := d.ToAssumptions()
	if err != nil {
		return nil, err
	}
	return &Result{Assumptions: a, Reasoning: strings.TrimSpace(*d.Reasoning)}, nil
}

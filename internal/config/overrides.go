package config

import (
	"fmt"

	"runway-forecast/internal/model"

	"github.com/goccy/go-json"
)

// ApplyOverrides deep-merges a partial camelCase JSON object (the wire shape
// of model.Assumptions) onto base. Objects merge key by key; any other value,
// including arrays and explicit zeros, replaces. The result is not validated.
func ApplyOverrides(base model.Assumptions, overrides map[string]any) (model.Assumptions, error) {
	if len(overrides) == 0 {
		return base, nil
	}
	raw, err := json.Marshal(base)
	if err != nil {
		return model.Assumptions{}, fmt.Errorf("encoding base assumptions: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.Assumptions{}, fmt.Errorf("decoding base assumptions: %w", err)
	}

	mergeInto(doc, overrides)

	merged, err := json.Marshal(doc)
	if err != nil {
		return model.Assumptions{}, fmt.Errorf("encoding merged assumptions: %w", err)
	}
	var out model.Assumptions
	if err := json.Unmarshal(merged, &out); err != nil {
		return model.Assumptions{}, fmt.Errorf("applying overrides: %w", err)
	}

	// Switching kind leaves the old variant in the merged document.
	switch out.Costs.Kind {
	case model.CostModelDetailed:
		out.Costs.Flat = nil
	case model.CostModelFlat:
		out.Costs.Detailed = nil
	}
	return out, nil
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				mergeInto(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
}

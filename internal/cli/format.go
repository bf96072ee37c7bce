// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"runway-forecast/internal/forecast"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatMoney formats whole dollars with separators, e.g. -32500 -> "-$32,500".
func FormatMoney(v float64) string {
	n := int64(math.Round(v))
	if n < 0 {
		return "-$" + FormatNumber(-n)
	}
	return "$" + FormatNumber(n)
}

// FormatCompactMoney abbreviates large amounts, e.g. 2400000 -> "$2.4M".
func FormatCompactMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("%s$%.1fB", sign, v/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("%s$%.1fM", sign, v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%s$%.1fK", sign, v/1_000)
	default:
		return fmt.Sprintf("%s$%.0f", sign, v)
	}
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatRunway renders "∞" or "N mo".
func FormatRunway(r forecast.Runway) string {
	if r.Infinite {
		return forecast.InfinitySymbol
	}
	return fmt.Sprintf("%d mo", r.Months)
}

func FormatLifetime(l forecast.Lifetime) string {
	if l.Unbounded {
		return forecast.InfinitySymbol
	}
	return FormatMoney(l.Value)
}

// FormatRatio renders an optional ratio with one decimal, "n/a" when absent.
func FormatRatio(r *forecast.Ratio) string {
	if r == nil {
		return "n/a"
	}
	if r.Unbounded {
		return forecast.InfinitySymbol
	}
	return fmt.Sprintf("%.1fx", r.Value)
}

// FormatOptionalMoney renders an optional amount, "n/a" when absent.
func FormatOptionalMoney(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return FormatMoney(*v)
}

// FormatDelta formats a change with an explicit sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatMoney(delta)
	}
	return FormatMoney(delta)
}

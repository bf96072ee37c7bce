package cli

import (
	"fmt"
	"strings"

	"runway-forecast/internal/analysis"
	"runway-forecast/internal/forecast"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	goodStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	badStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	tileStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			Width(16)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table. The first column is left aligned,
// the rest right aligned. A row of just "---" draws a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	rule := func(left, mid, right string) string {
		var b strings.Builder
		b.WriteString(left)
		for i, w := range widths {
			b.WriteString(strings.Repeat("─", w+2))
			if i < numCols-1 {
				b.WriteString(mid)
			}
		}
		b.WriteString(right)
		return dimStyle.Render(b.String()) + "\n"
	}
	pad := func(s string, w int, left bool) string {
		gap := strings.Repeat(" ", max(0, w-lipgloss.Width(s)))
		if left {
			return " " + s + gap + " "
		}
		return " " + gap + s + " "
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule("╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(pad(h, widths[i], i == 0)))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
		b.WriteString(rule("├", "┼", "┤"))
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(rule("├", "┼", "┤"))
			continue
		}
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(pad(cell, widths[i], i == 0)))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
	}
	b.WriteString(rule("╰", "┴", "╯"))

	return b.String()
}

// RenderSparkline generates a unicode block sparkline, scaled between the
// series minimum and maximum.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo

	var b strings.Builder
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(blocks)-1))
		}
		b.WriteRune(blocks[idx])
	}
	return b.String()
}

// PlanTable lays out the month-by-month ledger.
func PlanTable(rows []forecast.MonthRow) Table {
	t := Table{
		Title:   "Monthly plan",
		Headers: []string{"Month", "ARR", "New", "Churn", "Revenue", "Collections", "Payroll", "Opex", "Burn", "Cash", "HC"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("M%d", r.M),
			FormatMoney(r.ClosingArr),
			FormatMoney(r.NewArr),
			FormatMoney(-r.ChurnArr),
			FormatMoney(r.Revenue),
			FormatMoney(r.Collections),
			FormatMoney(r.Payroll),
			FormatMoney(r.Opex),
			FormatMoney(r.Burn),
			FormatMoney(r.CashEnd),
			fmt.Sprintf("%d", r.Headcount),
		})
	}
	return t
}

// SummaryTable lists the plan KPIs and the derived business metrics.
func SummaryTable(s forecast.PlanSummary, m analysis.BusinessMetrics) Table {
	payback := "n/a"
	if m.CACPaybackMonths != nil {
		payback = fmt.Sprintf("%.1f mo", *m.CACPaybackMonths)
	}
	return Table{
		Title:   "Summary",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"ARR (end)", FormatMoney(s.ArrEnd)},
			{"Revenue (next month)", FormatMoney(s.RevenueNext)},
			{"Burn (next month)", FormatMoney(s.BurnNext)},
			{"Cash (end)", FormatMoney(s.CashEnd)},
			{"Runway", FormatRunway(s.RunwayMonths)},
			{"---"},
			{"NRR", fmt.Sprintf("%.1f%%", s.NRRPct)},
			{"LTV", FormatLifetime(s.LTV)},
			{"CAC", FormatOptionalMoney(s.CAC)},
			{"LTV/CAC", FormatRatio(s.LTVCAC)},
			{"Burn multiple", FormatRatio(s.BurnMultiple)},
			{"---"},
			{"Customers", FormatNumber(int64(m.Subscriptions))},
			{"ARPU (monthly)", FormatMoney(m.MonthlyARPU)},
			{"Annual retention", FormatPercent(m.AnnualRetention)},
			{"CAC payback", payback},
			{"---"},
			{"Gross margin", fmt.Sprintf("%s (%.1f%%)", FormatMoney(m.GrossMargin), m.GrossMarginPct)},
			{"Operating cost", fmt.Sprintf("%s (%+.1f%%)", FormatMoney(m.OperatingCost), m.OperatingCostChangePct)},
			{"EBITDA", fmt.Sprintf("%s (%+.1f%%)", FormatMoney(m.EBITDA), m.EBITDAChangePct)},
			{"Operating margin", fmt.Sprintf("%.1f%%", m.OperatingMarginPct)},
			{"Rule of 40", fmt.Sprintf("%.1f", m.RuleOf40)},
			{"EBITDA burn multiple", FormatRatio(&m.EBITDABurnMultiple)},
			{"Cash trough", fmt.Sprintf("%s (M%d)", FormatMoney(m.CashTrough), m.CashTroughMonth)},
			{"Peak headcount", FormatNumber(int64(m.PeakHeadcount))},
		},
	}
}

// RenderKPITiles renders the headline figures side by side, coloring runway
// by how much time is left.
func RenderKPITiles(s forecast.PlanSummary) string {
	runwayStyle := goodStyle
	if !s.RunwayMonths.Infinite {
		switch {
		case s.RunwayMonths.Months < 6:
			runwayStyle = badStyle
		case s.RunwayMonths.Months < 18:
			runwayStyle = warnStyle
		}
	}
	tile := func(label, value string, style lipgloss.Style) string {
		return tileStyle.Render(mutedStyle.Render(label) + "\n" + style.Bold(true).Render(value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Runway", FormatRunway(s.RunwayMonths), runwayStyle),
		tile("ARR (end)", FormatCompactMoney(s.ArrEnd), valueStyle),
		tile("Burn (next)", FormatCompactMoney(s.BurnNext), valueStyle),
		tile("Cash (end)", FormatCompactMoney(s.CashEnd), valueStyle),
	)
}

// ComparisonTable lists ranked variations.
func ComparisonTable(ranked []analysis.RankedPlan) Table {
	t := Table{
		Title:   "Scenario comparison (ranked by runway)",
		Headers: []string{"#", "Scenario", "Runway", "ARR (end)", "Burn (next)", "Cash (end)"},
	}
	for _, r := range ranked {
		s := r.Plan.Summary
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", r.Rank),
			r.Name,
			FormatRunway(s.RunwayMonths),
			FormatMoney(s.ArrEnd),
			FormatMoney(s.BurnNext),
			FormatMoney(s.CashEnd),
		})
	}
	return t
}

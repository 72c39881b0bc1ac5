package commands

import (
	"fmt"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/wonny/macrodash/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// formatValue renders a nullable number, "-" for missing
func formatValue(v null.Float) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%.4f", v.Float64)
}

// formatDelta renders a delta with sign and unit suffix
func formatDelta(v null.Float, kind contracts.DeltaKind) string {
	if !v.Valid {
		return "-"
	}
	if kind == contracts.DeltaPercent {
		return fmt.Sprintf("%+.2f%%", v.Float64)
	}
	return fmt.Sprintf("%+.4f", v.Float64)
}

// PrintSummary prints the headline metrics block
func PrintSummary(s *contracts.Summary) {
	PrintDoubleSeparator()
	fmt.Printf("  As of %s (prev %s)\n", s.AsOf.Format(contracts.DateLayout), s.PreviousDate.Format(contracts.DateLayout))
	PrintSeparator()

	for _, m := range s.Metrics {
		value := formatValue(m.Latest)
		if m.Units != "" {
			value += " " + m.Units
		}
		PrintKeyValue(m.Column, fmt.Sprintf("%s (%s)", value, formatDelta(m.Delta, m.Kind)), 16)
	}

	PrintSeparator()
	PrintKeyValue("Funding", fmt.Sprintf("%s (spread %s, threshold %.2f)", s.Funding, formatValue(s.RateSpread), s.Threshold), 16)
	PrintDoubleSeparator()
}

// PrintRows prints the table rows, all columns
func PrintRows(t *contracts.Table) {
	widths := make([]int, len(t.Columns)+1)
	header := append([]string{"Date"}, t.Columns...)
	for i, h := range header {
		widths[i] = max(len(h), 12)
	}

	PrintTableHeader(header, widths)
	for _, row := range t.Rows {
		values := []string{row.Date.Format(contracts.DateLayout)}
		for _, col := range t.Columns {
			values = append(values, formatValue(row.Get(col)))
		}
		PrintTableRow(values, widths)
	}
}

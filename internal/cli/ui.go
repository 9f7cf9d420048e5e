package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/depsight/depsight/pkg/inventory"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success, current
	colorYellow = lipgloss.Color("220") // Amber - warnings, outdated
	colorRed    = lipgloss.Color("167") // Soft red - errors, missing data
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleOutdated = lipgloss.NewStyle().Foreground(colorYellow)
	styleMissing  = lipgloss.NewStyle().Foreground(colorRed)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}

// =============================================================================
// Package Status
// =============================================================================

// statusLabel is the plain text for a package's freshness.
func statusLabel(p inventory.Package) string {
	switch {
	case p.MetadataMissing:
		return "unknown"
	case p.Outdated:
		return "outdated"
	default:
		return "current"
	}
}

// statusColor maps a package's freshness to the palette.
func statusColor(p inventory.Package) lipgloss.Color {
	switch {
	case p.MetadataMissing:
		return colorRed
	case p.Outdated:
		return colorYellow
	default:
		return colorGreen
	}
}

// statusText renders a package's freshness as a colored label.
func statusText(p inventory.Package) string {
	return lipgloss.NewStyle().Foreground(statusColor(p)).Render(statusLabel(p))
}

// usedLabel is the plain text for the usage column.
func usedLabel(p inventory.Package) string {
	if p.Used {
		return "yes"
	}
	return "no"
}

// orDash substitutes a placeholder for empty values in table cells.
func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// =============================================================================
// Report Table
// =============================================================================

// packageTable renders packages as a bordered table.
func packageTable(packages []inventory.Package) string {
	rows := make([][]string, 0, len(packages))
	for _, p := range packages {
		rows = append(rows, []string{
			p.Name,
			orDash(p.CurrentVersion),
			orDash(p.LatestVersion),
			statusLabel(p),
			usedLabel(p),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Package", "Current", "Latest", "Status", "Used").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= len(packages) {
				return lipgloss.NewStyle()
			}
			p := packages[row]

			base := lipgloss.NewStyle()
			switch col {
			case 0:
				if !p.Used {
					return base.Foreground(colorDim)
				}
				return base.Foreground(colorWhite)
			case 3:
				return base.Foreground(statusColor(p))
			case 4:
				if p.Used {
					return base.Foreground(colorGreen)
				}
				return base.Foreground(colorDim)
			default:
				return base.Foreground(colorGray)
			}
		}).
		Render()
}

// printSummary prints report totals on a single line.
func printSummary(s inventory.Summary) {
	parts := []string{StyleDim.Render(fmt.Sprintf("%d packages", s.Total))}
	if s.Outdated > 0 {
		parts = append(parts, styleOutdated.Render(fmt.Sprintf("%d outdated", s.Outdated)))
	}
	if s.Unused > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d unused", s.Unused)))
	}
	if s.Missing > 0 {
		parts = append(parts, styleMissing.Render(fmt.Sprintf("%d without registry data", s.Missing)))
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += part
	}
	fmt.Println(line)
}

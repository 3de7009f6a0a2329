package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/depscan/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleEcosystem = lipgloss.NewStyle().Foreground(colorCyan).Width(10)
	styleKey       = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	separator   = " · "
)

// =============================================================================
// Status Output
// =============================================================================

// printer writes styled status lines. Data goes to stdout; printer output
// goes to stderr so "-o -" stays machine-readable.
type printer struct {
	w io.Writer
}

func (p printer) success(format string, args ...any) {
	fmt.Fprintln(p.w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func (p printer) warning(format string, args ...any) {
	fmt.Fprintln(p.w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	fmt.Fprintln(p.w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// detail prints an indented, dimmed line.
func (p printer) detail(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints an output location line.
func (p printer) file(path string) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func (p printer) keyValue(key, value string) {
	fmt.Fprintln(p.w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// joinParts joins non-empty parts with a dimmed separator.
func joinParts(parts []string) string {
	var kept []string
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, StyleDim.Render(separator))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// =============================================================================
// Scan Summary
// =============================================================================

// summary renders the end-of-scan report.
func (p printer) summary(s *pipeline.Summary, tally *strategyTally) {
	p.success("Scanned %s in %s", StyleValue.Render(s.Root), s.Duration.Round(time.Millisecond))
	p.detail("%s", joinParts([]string{
		plural(s.Files, "file", "files"),
		plural(s.Projects, "project", "projects"),
		plural(s.Dependencies, "dependency", "dependencies"),
		countPart(s.Count(pipeline.StatusCached), "cached"),
	}))

	for _, eco := range s.SortedEcosystems() {
		es := s.Ecosystems[eco]
		line := styleEcosystem.Render(eco.String()) +
			StyleNumber.Render(fmt.Sprintf("%4d", es.Projects)) + StyleDim.Render(" projects ") +
			StyleNumber.Render(fmt.Sprintf("%6d", es.Dependencies)) + StyleDim.Render(" deps")
		if wins := formatCounts(es.Strategies); wins != "" {
			line += "   " + StyleDim.Render(wins)
		}
		fmt.Fprintln(p.w, "  "+line)
	}

	degraded := joinParts([]string{
		countPart(s.Count(pipeline.StatusFailed), "failed"),
		countPart(s.Count(pipeline.StatusTimedOut), "timed out"),
		countPart(s.Count(pipeline.StatusWriteFailed), "not written"),
		countPart(s.Count(pipeline.StatusEmpty), "empty"),
		countPart(s.Count(pipeline.StatusSkipped), "vendored"),
		countPart(s.Count(pipeline.StatusNoManifest), "vanished"),
	})
	if degraded != "" {
		p.warning("%s", degraded)
	}
	if s.WalkErrors > 0 {
		p.warning("%s could not be read", plural(s.WalkErrors, "directory", "directories"))
	}
	if tally != nil {
		if fallbacks := tally.fallbacks(); fallbacks != "" {
			p.detail("fallbacks: %s", fallbacks)
		}
	}
	if s.Location != "" {
		p.file(s.Location)
	}
}

func countPart(n int, label string) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d %s", n, label)
}

// formatCounts renders "name n" pairs ordered by descending count, then name.
func formatCounts(m map[string]int) string {
	type kv struct {
		k string
		n int
	}
	list := make([]kv, 0, len(m))
	for k, n := range m {
		list = append(list, kv{k, n})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].n != list[j].n {
			return list[i].n > list[j].n
		}
		return list[i].k < list[j].k
	})
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = fmt.Sprintf("%s %d", e.k, e.n)
	}
	return strings.Join(parts, separator)
}

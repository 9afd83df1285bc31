package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/hal/testhound/internal/format"
	"github.com/hal/testhound/internal/pipeline"
)

// defaultTermWidth is used when stdout is not a terminal.
const defaultTermWidth = 120

// minTitleWidth keeps the title column readable on narrow terminals.
const minTitleWidth = 16

// TableWriter renders findings as a terminal table for interactive use.
type TableWriter struct {
	// Width overrides terminal width detection; zero means autodetect.
	Width int
}

// column names paired with their display widths. The title column is
// elastic and absorbs the remaining terminal width.
type column struct {
	name  string
	width int
}

// Write renders the finding list as a fixed-width table.
func (tw *TableWriter) Write(findings []pipeline.Finding, w io.Writer) error {
	if len(findings) == 0 {
		fmt.Fprintln(w, "No test-adding pull requests found.")
		return nil
	}

	width := tw.Width
	if width == 0 {
		width = terminalWidth()
	}

	cols := []column{
		{name: "REPOSITORY", width: 28},
		{name: "PR", width: 6},
		{name: "TITLE", width: 0}, // elastic
		{name: "MERGED", width: 7},
		{name: "LINES", width: 12},
		{name: "TESTS", width: 6},
		{name: "NEW", width: 4},
	}

	fixed := 0
	for _, c := range cols {
		fixed += c.width + 2
	}
	titleWidth := width - fixed
	if titleWidth < minTitleWidth {
		titleWidth = minTitleWidth
	}
	cols[2].width = titleWidth

	header := color.New(color.Bold)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = padToWidth(c.name, c.width)
	}
	header.Fprintln(w, strings.Join(names, "  "))

	for _, f := range findings {
		merged := ""
		if f.PR.MergedAt != nil {
			merged = format.Age(time.Since(*f.PR.MergedAt))
		}
		cells := []string{
			padToWidth(f.Repo.FullName, cols[0].width),
			padToWidth(fmt.Sprintf("#%d", f.PR.Number), cols[1].width),
			padToWidth(f.PR.Title, cols[2].width),
			padToWidth(merged, cols[3].width),
			padToWidth(fmt.Sprintf("+%d/-%d", f.Analysis.TotalAdditions, f.Analysis.TotalDeletions), cols[4].width),
			padToWidth(fmt.Sprintf("%d", len(f.Analysis.TestFiles)), cols[5].width),
			padToWidth(fmt.Sprintf("%d", f.Analysis.EstimatedNewTests), cols[6].width),
		}
		fmt.Fprintln(w, strings.Join(cells, "  "))
	}

	fmt.Fprintf(w, "\n%d qualifying PRs across %d repositories\n",
		len(findings), countUniqueRepos(findings))
	return nil
}

// terminalWidth returns the stdout width, or a sane default when stdout
// is not a terminal.
func terminalWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return defaultTermWidth
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultTermWidth
	}
	return w
}

// padToWidth truncates or pads a string to exactly width display
// columns, accounting for wide characters.
func padToWidth(s string, width int) string {
	current := runewidth.StringWidth(s)
	if current > width {
		return runewidth.Truncate(s, width, "…")
	}
	return s + strings.Repeat(" ", width-current)
}

// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"etarefas/internal/config"
	"etarefas/internal/service"
)

const (
	// descriptionIndent aligns descriptions under task titles.
	descriptionIndent = "          "
)

// Styles holds the styles used for task lines.
type Styles struct {
	Done    lipgloss.Style
	Pending lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles returns styles rendering for w. In auto mode colors are used only
// when w is a terminal.
func NewStyles(w io.Writer, mode string) Styles {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case config.ColorNever:
		r.SetColorProfile(termenv.Ascii)
	case config.ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	}
	return Styles{
		Done:    r.NewStyle().Foreground(lipgloss.Color("2")),
		Pending: r.NewStyle().Foreground(lipgloss.Color("3")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

// FormatTask formats a task entry.
// Format: "{N:>4}  [ ] {TITLE} (#{ID})[ [photo]]\n" followed by the description
// indented on its own line, if any.
func FormatTask(w io.Writer, st Styles, num int, task service.Task) {
	marker := st.Pending.Render("[ ]")
	if task.Completed() {
		marker = st.Done.Render("[x]")
	}

	line := fmt.Sprintf("%4d  %s %s %s", num, marker, normalizeText(task.Title), st.Muted.Render(fmt.Sprintf("(#%d)", task.ID)))
	switch {
	case task.HasPhoto() && task.PhotoPassword != "":
		line += " " + st.Muted.Render("[photo, locked]")
	case task.HasPhoto():
		line += " " + st.Muted.Render("[photo]")
	}
	fmt.Fprintln(w, line)

	if desc := strings.TrimSpace(task.Description); desc != "" {
		fmt.Fprintln(w, descriptionIndent+normalizeText(desc))
	}
}

// normalizeText normalizes a title or description for display.
// - Empty or whitespace-only text becomes "(untitled)"
// - Newlines are replaced with spaces
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")

	if strings.TrimSpace(s) == "" {
		return "(untitled)"
	}
	return s
}

// =============================================================================
// Funding Autofiller - Status Line
// =============================================================================
//
// A persistent, updated-in-place status line plus a final summary banner,
// so the operator always has a clear end state.
//
// =============================================================================

package prompt

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	summaryStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
)

// TerminalStatus renders progress on one line, rewriting it in place.
type TerminalStatus struct {
	out       io.Writer
	lastWidth int
}

// NewTerminalStatus creates a status line writer.
func NewTerminalStatus(out io.Writer) *TerminalStatus {
	return &TerminalStatus{out: out}
}

// Progress rewrites the status line. A zero total renders the message alone
// (used while waiting on the operator).
func (s *TerminalStatus) Progress(done, total int, message string) {
	line := message
	if total > 0 {
		line = fmt.Sprintf("[%d/%d] %s", done, total, message)
	}

	rendered := progressStyle.Render(line)
	padding := ""
	if width := lipgloss.Width(rendered); width < s.lastWidth {
		padding = strings.Repeat(" ", s.lastWidth-width)
	} else {
		s.lastWidth = lipgloss.Width(rendered)
	}
	fmt.Fprintf(s.out, "\r%s%s", rendered, padding)
}

// Final clears the status line and prints the summary banner.
func (s *TerminalStatus) Final(summary string) {
	if s.lastWidth > 0 {
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.lastWidth))
	}
	fmt.Fprintln(s.out, summaryStyle.Render(summary))
}

// =============================================================================
// Funding Autofiller - Operator Prompts
// =============================================================================
//
// The terminal chooser implements the disambiguation dialog: a numbered list
// of weekly-total candidates read from stdin, with 0 leaving the row
// unfilled. AutoChooser answers without an operator, for headless runs.
//
// =============================================================================

package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ginjaninja78/funding-autofiller/internal/engine"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	optionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	skipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// TerminalChooser prompts the operator on the terminal.
type TerminalChooser struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalChooser creates a chooser over the given streams, normally
// stdin and stdout.
func NewTerminalChooser(in io.Reader, out io.Writer) *TerminalChooser {
	return &TerminalChooser{in: bufio.NewReader(in), out: out}
}

// Choose renders the candidate list and blocks until the operator answers.
// The read runs on its own goroutine so a cancelled context aborts the
// prompt even while the terminal is idle.
func (c *TerminalChooser) Choose(ctx context.Context, choice engine.Choice) (engine.Decision, error) {
	fmt.Fprintln(c.out)
	who := choice.Identifier
	if choice.DisplayName != "" {
		who = fmt.Sprintf("%s (%s)", choice.DisplayName, choice.Identifier)
	}
	fmt.Fprintln(c.out, titleStyle.Render(
		fmt.Sprintf("Row %d - %s has multiple weekly totals:", choice.RowNumber, who)))
	for i, candidate := range choice.Candidates {
		fmt.Fprintln(c.out, optionStyle.Render(fmt.Sprintf("  %d) %s hours", i+1, candidate)))
	}
	fmt.Fprintln(c.out, skipStyle.Render("  0) skip this row"))

	for {
		fmt.Fprint(c.out, "Choose: ")

		line, err := c.readLine(ctx)
		if err != nil {
			return engine.Decision{Skipped: true}, err
		}

		selection, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || selection < 0 || selection > len(choice.Candidates) {
			fmt.Fprintln(c.out, errorStyle.Render(
				fmt.Sprintf("Enter a number between 0 and %d", len(choice.Candidates))))
			continue
		}
		if selection == 0 {
			return engine.Decision{Skipped: true}, nil
		}
		return engine.Decision{Value: choice.Candidates[selection-1]}, nil
	}
}

// readLine reads one line, racing the context.
func (c *TerminalChooser) readLine(ctx context.Context) (string, error) {
	type read struct {
		line string
		err  error
	}
	done := make(chan read, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		done <- read{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil && r.line == "" {
			return "", r.err
		}
		return r.line, nil
	}
}

// AutoChooser answers every prompt the same way. Headless runs use it so a
// fill never blocks on a terminal.
type AutoChooser struct {
	// PickFirst selects the first candidate; otherwise every ambiguous row
	// is skipped.
	PickFirst bool
}

// Choose implements engine.Chooser.
func (a AutoChooser) Choose(ctx context.Context, choice engine.Choice) (engine.Decision, error) {
	if a.PickFirst && len(choice.Candidates) > 0 {
		return engine.Decision{Value: choice.Candidates[0]}, nil
	}
	return engine.Decision{Skipped: true}, nil
}

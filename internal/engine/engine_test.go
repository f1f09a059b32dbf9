package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/funding-autofiller/internal/calendar"
	"github.com/ginjaninja78/funding-autofiller/internal/form"
	"github.com/ginjaninja78/funding-autofiller/internal/source"
)

func record(values map[string]string) *source.Record {
	return source.NewRecord(values, source.DefaultFieldNames())
}

func claimRecord(identifier, periodEnd, periodStart, weeklyTotal string) *source.Record {
	names := source.DefaultFieldNames()
	return record(map[string]string{
		names.Identifier:  identifier,
		names.PeriodEnd:   periodEnd,
		names.PeriodStart: periodStart,
		names.WeeklyTotal: weeklyTotal,
	})
}

func claimRow(identifier, periodEnd string) *form.MemRow {
	return form.NewMemRow(map[form.FieldName]string{
		form.FieldIdentifier: identifier,
		form.FieldPeriodEnd:  periodEnd,
	})
}

func testOptions() Options {
	options := DefaultOptions()
	options.RowDelay = 0
	return options
}

func newEngine(records []*source.Record, chooser Chooser, status StatusReporter) *Engine {
	index := source.Build(records, source.KeyIdentifierPeriodEnd)
	return New(index, calendar.Default(), testOptions(), chooser, status, zerolog.Nop())
}

// recordingChooser captures the choices it is asked to make.
type recordingChooser struct {
	choices   []Choice
	decisions []Decision
	errs      []error
	observe   func()
}

func (c *recordingChooser) Choose(ctx context.Context, choice Choice) (Decision, error) {
	if c.observe != nil {
		c.observe()
	}
	c.choices = append(c.choices, choice)
	i := len(c.choices) - 1
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	if i < len(c.decisions) {
		return c.decisions[i], err
	}
	return Decision{Skipped: true}, err
}

// recordingStatus captures progress and final messages.
type recordingStatus struct {
	progress []string
	final    string
}

func (s *recordingStatus) Progress(done, total int, message string) {
	s.progress = append(s.progress, message)
}

func (s *recordingStatus) Final(summary string) { s.final = summary }

func TestRunEmptyFormIsFatal(t *testing.T) {
	eng := newEngine(nil, nil, nil)

	_, err := eng.Run(context.Background(), form.NewMemForm())
	assert.ErrorIs(t, err, form.ErrNoRows)
}

func TestRunFillsMatchedRows(t *testing.T) {
	records := []*source.Record{
		claimRecord("A12", "31/12/2025", "01/10/2025", "20"),
		claimRecord("B34", "31/12/2025", "01/10/2025", "15"),
	}
	rowA := claimRow("A12", "31/12/2025")
	rowB := claimRow("B34", "31/12/2025")
	rowUnmatched := claimRow("C56", "31/12/2025")
	rowBlank := claimRow("", "")

	status := &recordingStatus{}
	eng := newEngine(records, nil, status)

	result, err := eng.Run(context.Background(), form.NewMemForm(rowA, rowB, rowUnmatched, rowBlank))
	require.NoError(t, err)

	assert.Equal(t, 4, result.RowsFound)
	assert.Equal(t, 2, result.Filled)
	assert.Equal(t, 1, result.Unmatched)
	assert.Equal(t, 1, result.BlankKey)
	assert.False(t, result.Cancelled)

	assert.Equal(t, "20", rowA.Values[form.FieldWeeklyTotal])
	assert.Equal(t, "15", rowB.Values[form.FieldWeeklyTotal])
	assert.Empty(t, rowUnmatched.Values[form.FieldWeeklyTotal])

	// B34 opens a new identifier group.
	assert.False(t, rowA.Separator)
	assert.True(t, rowB.Separator)

	assert.Equal(t, "Filled 2 of 4 rows (1 unmatched, 1 without key, 0 skipped, 0 errors)", result.Summary())
	assert.Equal(t, result.Summary(), status.final)
	assert.Len(t, status.progress, 4)
}

func TestRunPromptsOnAmbiguousWeeklyTotal(t *testing.T) {
	records := []*source.Record{claimRecord("A12", "31/12/2025", "01/10/2025", "20/25")}
	row := claimRow("A12", "31/12/2025")

	chooser := &recordingChooser{decisions: []Decision{{Value: "25"}}}
	eng := newEngine(records, chooser, nil)
	chooser.observe = func() {
		assert.Equal(t, DialogAwaitingChoice, eng.Dialog())
	}

	result, err := eng.Run(context.Background(), form.NewMemForm(row))
	require.NoError(t, err)

	require.Len(t, chooser.choices, 1)
	assert.Equal(t, 1, chooser.choices[0].RowNumber)
	assert.Equal(t, "A12", chooser.choices[0].Identifier)
	assert.Equal(t, []string{"20", "25"}, chooser.choices[0].Candidates)

	assert.Equal(t, 1, result.Filled)
	assert.Equal(t, "25", row.Values[form.FieldWeeklyTotal])
	assert.Equal(t, DialogIdle, eng.Dialog())
}

func TestRunOperatorSkipLeavesRowUnfilled(t *testing.T) {
	records := []*source.Record{claimRecord("A12", "31/12/2025", "01/10/2025", "20/25")}
	row := claimRow("A12", "31/12/2025")

	chooser := &recordingChooser{decisions: []Decision{{Skipped: true}}}
	eng := newEngine(records, chooser, nil)

	result, err := eng.Run(context.Background(), form.NewMemForm(row))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Filled)
	assert.Equal(t, 1, result.OperatorSkipped)
	assert.Empty(t, row.Values[form.FieldWeeklyTotal])
}

// A skipped ambiguous row has already consumed its record: the decision
// point was reached, so the record is spent either way.
func TestRunSkipStillConsumesRecord(t *testing.T) {
	records := []*source.Record{claimRecord("A12", "31/12/2025", "01/10/2025", "20/25")}
	first := claimRow("A12", "31/12/2025")
	second := claimRow("A12", "31/12/2025")

	chooser := &recordingChooser{decisions: []Decision{{Skipped: true}}}
	eng := newEngine(records, chooser, nil)

	result, err := eng.Run(context.Background(), form.NewMemForm(first, second))
	require.NoError(t, err)

	assert.Equal(t, 1, result.OperatorSkipped)
	assert.Equal(t, 1, result.Unmatched)
}

func TestRunUnambiguousRowNeverPrompts(t *testing.T) {
	records := []*source.Record{claimRecord("A12", "31/12/2025", "01/10/2025", "20")}
	chooser := &recordingChooser{}
	eng := newEngine(records, chooser, nil)

	_, err := eng.Run(context.Background(), form.NewMemForm(claimRow("A12", "31/12/2025")))
	require.NoError(t, err)
	assert.Empty(t, chooser.choices)
}

func TestRunNilChooserSkipsAmbiguousRows(t *testing.T) {
	records := []*source.Record{claimRecord("A12", "31/12/2025", "01/10/2025", "20/25")}
	eng := newEngine(records, nil, nil)

	result, err := eng.Run(context.Background(), form.NewMemForm(claimRow("A12", "31/12/2025")))
	require.NoError(t, err)
	assert.Equal(t, 1, result.OperatorSkipped)
}

func TestRunWriteFailureIsRowLocal(t *testing.T) {
	records := []*source.Record{
		claimRecord("A12", "31/12/2025", "01/10/2025", "20"),
		claimRecord("B34", "31/12/2025", "01/10/2025", "15"),
	}
	broken := claimRow("A12", "31/12/2025")
	broken.FailWrites = map[form.FieldName]bool{form.FieldWeeklyTotal: true}
	healthy := claimRow("B34", "31/12/2025")

	eng := newEngine(records, nil, nil)
	result, err := eng.Run(context.Background(), form.NewMemForm(broken, healthy))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Errored)
	assert.Equal(t, 1, result.Filled)
	assert.Len(t, broken.ErrorReasons, 1)
	assert.Equal(t, "15", healthy.Values[form.FieldWeeklyTotal])

	require.Len(t, result.Rows, 2)
	assert.Equal(t, OutcomeWriteError, result.Rows[0].Outcome)
	assert.NotEmpty(t, result.Rows[0].Detail)
}

func TestRunCancellationStopsLoop(t *testing.T) {
	records := []*source.Record{claimRecord("A12", "31/12/2025", "01/10/2025", "20/25")}
	rows := form.NewMemForm(
		claimRow("A12", "31/12/2025"),
		claimRow("B34", "31/12/2025"),
		claimRow("C56", "31/12/2025"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	chooser := &recordingChooser{errs: []error{context.Canceled}}
	chooser.observe = cancel

	eng := newEngine(records, chooser, nil)
	result, err := eng.Run(ctx, rows)
	require.NoError(t, err)

	assert.True(t, result.Cancelled)
	assert.Len(t, result.Rows, 1)
	assert.Contains(t, result.Summary(), "Cancelled after 1 of 3 rows")
}

func TestRunAlreadyCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := newEngine(nil, nil, nil)
	result, err := eng.Run(ctx, form.NewMemForm(claimRow("A12", "31/12/2025")))
	require.NoError(t, err)

	assert.True(t, result.Cancelled)
	assert.Empty(t, result.Rows)
}

func TestChooserErrorBecomesSkip(t *testing.T) {
	records := []*source.Record{claimRecord("A12", "31/12/2025", "01/10/2025", "20/25")}
	chooser := &recordingChooser{errs: []error{errors.New("prompt aborted")}}

	eng := newEngine(records, chooser, nil)
	result, err := eng.Run(context.Background(), form.NewMemForm(claimRow("A12", "31/12/2025")))
	require.NoError(t, err)

	assert.Equal(t, 1, result.OperatorSkipped)
	assert.False(t, result.Cancelled)
}

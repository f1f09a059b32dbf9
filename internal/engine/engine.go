// =============================================================================
// Funding Autofiller - Sequential Row Driver
// =============================================================================
//
// The engine owns one fill run: the source index, the resolver, the
// annotator, and the per-row outcome counters. There is no ambient state;
// everything lives on the Engine and dies with the run.
//
// Rows are processed strictly one at a time. A small inter-row delay gives
// the operator time to follow the highlighting; it is pure pacing and can be
// zero without changing outcomes. The one true suspension point is the
// weekly-total disambiguation: when a resolved record carries several
// candidate values, the loop hands them to the Chooser and does not proceed
// past the row until the operator picks a value or skips. Cancelling the
// context aborts the remaining loop gracefully after the current row.
//
// Failure policy (row-local, never fatal):
//   - blank key fields        -> skipped, logged
//   - no candidate            -> unmatched, logged
//   - write failure           -> row marked, errored, loop continues
// The only fatal conditions are the two preconditions checked up front:
// unreadable/empty input (caller side) and an empty destination table.
//
// =============================================================================

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/funding-autofiller/internal/annotator"
	"github.com/ginjaninja78/funding-autofiller/internal/calendar"
	"github.com/ginjaninja78/funding-autofiller/internal/form"
	"github.com/ginjaninja78/funding-autofiller/internal/resolver"
	"github.com/ginjaninja78/funding-autofiller/internal/source"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures one engine. The switches reproduce every behavior
// variant of the earlier fillers as configuration of a single engine.
type Options struct {
	// KeyMode selects the composite key fields.
	KeyMode source.KeyMode

	// EnableConsumption removes a record from its bucket once a row uses it.
	EnableConsumption bool

	// EnableHolidayBadge and EnableStalenessBadge toggle the annotations.
	EnableHolidayBadge   bool
	EnableStalenessBadge bool

	// StaleAfterDays is the staleness threshold in days.
	// Default: 90
	StaleAfterDays int

	// RowDelay is the pacing delay between rows.
	// Default: 40ms
	RowDelay time.Duration
}

// DefaultOptions is the behavior of the current production variant.
func DefaultOptions() Options {
	return Options{
		KeyMode:              source.KeyIdentifierPeriodEnd,
		EnableConsumption:    true,
		EnableHolidayBadge:   true,
		EnableStalenessBadge: true,
		StaleAfterDays:       annotator.DefaultStaleAfterDays,
		RowDelay:             40 * time.Millisecond,
	}
}

// =============================================================================
// DISAMBIGUATION PROTOCOL
// =============================================================================

// Choice describes one ambiguous weekly total awaiting an operator decision.
type Choice struct {
	// RowNumber is the 1-indexed position of the row in the destination table.
	RowNumber int

	// Identifier and DisplayName describe the matched record for the prompt.
	Identifier  string
	DisplayName string

	// Candidates are the scalar values packed into the weekly-total field,
	// in stored order.
	Candidates []string
}

// Decision is the operator's answer to a Choice.
type Decision struct {
	// Value is the chosen scalar. Ignored when Skipped is set.
	Value string

	// Skipped leaves the row unfilled and resumes at the next row.
	Skipped bool
}

// Chooser resolves an ambiguous weekly total. Implementations block until
// the operator answers; the engine's single-threaded loop is suspended for
// exactly as long. A cancelled context must abort with ctx.Err().
type Chooser interface {
	Choose(ctx context.Context, choice Choice) (Decision, error)
}

// DialogState tracks the suspension state machine for status reporting.
type DialogState int

const (
	// DialogIdle means no prompt is active.
	DialogIdle DialogState = iota

	// DialogAwaitingChoice means the loop is suspended on the operator.
	DialogAwaitingChoice

	// DialogResumed means a decision arrived and the row is being finished.
	DialogResumed
)

// =============================================================================
// OUTCOMES AND RESULT
// =============================================================================

// Outcome is the terminal state of one destination row.
type Outcome int

const (
	// OutcomeFilled means the row received its record's values.
	OutcomeFilled Outcome = iota

	// OutcomeBlankKey means the row had no usable key fields.
	OutcomeBlankKey

	// OutcomeNoMatch means no source record was available for the row's key.
	OutcomeNoMatch

	// OutcomeOperatorSkip means the operator skipped an ambiguous row.
	OutcomeOperatorSkip

	// OutcomeWriteError means a field write failed on the row.
	OutcomeWriteError
)

// String returns a short outcome label for reports.
func (o Outcome) String() string {
	switch o {
	case OutcomeFilled:
		return "filled"
	case OutcomeBlankKey:
		return "blank key"
	case OutcomeNoMatch:
		return "no match"
	case OutcomeOperatorSkip:
		return "skipped by operator"
	case OutcomeWriteError:
		return "write error"
	default:
		return "unknown"
	}
}

// RowResult records the outcome of one row.
type RowResult struct {
	// Number is the 1-indexed row position.
	Number int

	// Identifier is the row's own identifier, possibly blank.
	Identifier string

	// Outcome is the terminal state.
	Outcome Outcome

	// Detail carries the error message for OutcomeWriteError.
	Detail string
}

// Result is the outcome of a whole run.
type Result struct {
	// RowsFound is the number of destination rows located.
	RowsFound int

	// Filled counts rows that received values.
	Filled int

	// Unmatched counts rows with no candidate record.
	Unmatched int

	// BlankKey counts rows skipped for missing key fields.
	BlankKey int

	// OperatorSkipped counts ambiguous rows the operator skipped.
	OperatorSkipped int

	// Errored counts rows with a write failure.
	Errored int

	// Cancelled is set when the run was aborted before the last row.
	Cancelled bool

	// Rows holds the per-row outcomes in processing order.
	Rows []RowResult

	// Duration is the wall time of the run.
	Duration time.Duration
}

// Summary renders the terminal status message the operator always gets.
func (r *Result) Summary() string {
	if r.Cancelled {
		return fmt.Sprintf("Cancelled after %d of %d rows (%d filled)",
			len(r.Rows), r.RowsFound, r.Filled)
	}
	return fmt.Sprintf("Filled %d of %d rows (%d unmatched, %d without key, %d skipped, %d errors)",
		r.Filled, r.RowsFound, r.Unmatched, r.BlankKey, r.OperatorSkipped, r.Errored)
}

// =============================================================================
// STATUS REPORTING
// =============================================================================

// StatusReporter receives the persistent status line updates.
type StatusReporter interface {
	// Progress is called once per processed row and while waiting on the
	// operator.
	Progress(done, total int, message string)

	// Final is called exactly once with the terminal summary.
	Final(summary string)
}

// NopStatus discards all status updates.
type NopStatus struct{}

// Progress implements StatusReporter.
func (NopStatus) Progress(done, total int, message string) {}

// Final implements StatusReporter.
func (NopStatus) Final(summary string) {}

// =============================================================================
// ENGINE
// =============================================================================

// Engine drives one fill run.
type Engine struct {
	options   Options
	index     *source.Index
	resolver  *resolver.Resolver
	annotator *annotator.Annotator
	chooser   Chooser
	status    StatusReporter
	log       zerolog.Logger

	dialog DialogState
}

// New assembles an engine. The index must have been built with
// options.KeyMode. A nil chooser falls back to skipping every ambiguous row;
// a nil status discards updates.
func New(index *source.Index, cal *calendar.Calendar, options Options, chooser Chooser, status StatusReporter, logger zerolog.Logger) *Engine {
	if options.StaleAfterDays <= 0 {
		options.StaleAfterDays = annotator.DefaultStaleAfterDays
	}
	if chooser == nil {
		chooser = skipChooser{}
	}
	if status == nil {
		status = NopStatus{}
	}

	annotatorOptions := annotator.Options{
		EnableHolidayBadge:   options.EnableHolidayBadge,
		EnableStalenessBadge: options.EnableStalenessBadge,
		StaleAfterDays:       options.StaleAfterDays,
	}

	return &Engine{
		options:   options,
		index:     index,
		resolver:  resolver.New(index, options.EnableConsumption, logger),
		annotator: annotator.New(cal, annotatorOptions, logger),
		chooser:   chooser,
		status:    status,
		log:       logger.With().Str("component", "engine").Logger(),
	}
}

// WithClock pins the annotator's clock, for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.annotator.WithClock(now)
	return e
}

// Dialog returns the current suspension state.
func (e *Engine) Dialog() DialogState {
	return e.dialog
}

// Run processes every destination row in order. The returned error is
// non-nil only for the up-front precondition failures (form.ErrNoRows or a
// locator failure); all per-row failures land in the Result.
func (e *Engine) Run(ctx context.Context, locator form.Locator) (*Result, error) {
	started := time.Now()

	rows, err := locator.Rows()
	if err != nil {
		return nil, err
	}

	result := &Result{RowsFound: len(rows)}
	e.log.Info().Int("rows", len(rows)).Int("records", e.index.Remaining()).
		Msg("starting fill run")

	for i, row := range rows {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}

		number := i + 1
		rowResult := e.processRow(ctx, number, row)
		result.Rows = append(result.Rows, rowResult)
		e.count(result, rowResult)
		e.status.Progress(number, len(rows), rowStatus(rowResult))

		if ctx.Err() != nil && number < len(rows) {
			result.Cancelled = true
			break
		}
		e.pause(ctx, i, len(rows))
	}

	result.Duration = time.Since(started)
	e.status.Final(result.Summary())
	e.log.Info().Int("filled", result.Filled).Int("unmatched", result.Unmatched).
		Bool("cancelled", result.Cancelled).Dur("duration", result.Duration).
		Msg("fill run finished")
	return result, nil
}

// processRow resolves and fills a single row.
func (e *Engine) processRow(ctx context.Context, number int, row form.Row) RowResult {
	resolution := e.resolver.Resolve(number, row)
	if resolution.NewGroup {
		row.SetSeparator()
	}

	rowResult := RowResult{Number: number, Identifier: resolution.Identifier}

	switch resolution.Reason {
	case resolver.ReasonBlankKey:
		rowResult.Outcome = OutcomeBlankKey
		return rowResult
	case resolver.ReasonNoCandidates:
		rowResult.Outcome = OutcomeNoMatch
		return rowResult
	}

	record := resolution.Record
	weeklyTotal := record.WeeklyTotal()

	if annotator.IsAmbiguous(weeklyTotal) {
		decision, err := e.disambiguate(ctx, number, record)
		if err != nil {
			// Treat an aborted prompt as a skip; cancellation is picked up
			// by the loop.
			e.log.Warn().Err(err).Int("row", number).Msg("disambiguation aborted")
			rowResult.Outcome = OutcomeOperatorSkip
			return rowResult
		}
		if decision.Skipped {
			rowResult.Outcome = OutcomeOperatorSkip
			return rowResult
		}
		weeklyTotal = decision.Value
	}

	if err := e.annotator.Fill(row, record, weeklyTotal); err != nil {
		rowResult.Outcome = OutcomeWriteError
		rowResult.Detail = err.Error()
		e.log.Warn().Err(err).Int("row", number).Msg("row fill failed")
		return rowResult
	}

	rowResult.Outcome = OutcomeFilled
	return rowResult
}

// disambiguate suspends the loop on the chooser. Only one prompt is ever
// active because the loop itself is suspended.
func (e *Engine) disambiguate(ctx context.Context, number int, record *source.Record) (Decision, error) {
	choice := Choice{
		RowNumber:   number,
		Identifier:  record.Identifier(),
		DisplayName: record.DisplayName(),
		Candidates:  annotator.Candidates(record.WeeklyTotal()),
	}

	e.dialog = DialogAwaitingChoice
	e.status.Progress(number, 0, fmt.Sprintf("waiting for weekly total choice on row %d", number))
	decision, err := e.chooser.Choose(ctx, choice)
	e.dialog = DialogResumed
	defer func() { e.dialog = DialogIdle }()

	return decision, err
}

// count folds a row outcome into the run counters.
func (e *Engine) count(result *Result, rowResult RowResult) {
	switch rowResult.Outcome {
	case OutcomeFilled:
		result.Filled++
	case OutcomeBlankKey:
		result.BlankKey++
	case OutcomeNoMatch:
		result.Unmatched++
	case OutcomeOperatorSkip:
		result.OperatorSkipped++
	case OutcomeWriteError:
		result.Errored++
	}
}

// pause sleeps the pacing delay between rows, honoring cancellation.
func (e *Engine) pause(ctx context.Context, index, total int) {
	if e.options.RowDelay <= 0 || index >= total-1 {
		return
	}
	timer := time.NewTimer(e.options.RowDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// rowStatus renders the per-row status line message.
func rowStatus(rowResult RowResult) string {
	if rowResult.Identifier == "" {
		return fmt.Sprintf("row %d: %s", rowResult.Number, rowResult.Outcome)
	}
	return fmt.Sprintf("row %d (%s): %s", rowResult.Number, rowResult.Identifier, rowResult.Outcome)
}

// skipChooser is the fallback when no chooser is supplied: every ambiguous
// row is left unfilled.
type skipChooser struct{}

func (skipChooser) Choose(ctx context.Context, choice Choice) (Decision, error) {
	return Decision{Skipped: true}, nil
}

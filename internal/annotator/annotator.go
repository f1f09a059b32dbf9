// =============================================================================
// Funding Autofiller - Field Writer / Annotator
// =============================================================================
//
// Given a consumed source record and a destination row, the annotator writes
// the field values, raises a change notification per write, classifies the
// row, and appends contextual badges.
//
// Classification has a mutually exclusive visual priority:
//   1. base  - the record's note marks a base-period entry
//   2. stale - the parsed period-end lies more than the staleness threshold
//              (default 90 days) before now
//   3. fresh - everything else
//
// Two badges are independent of the classification:
//   - the secondary note segment after the note separator, when non-empty
//   - the holiday period name containing the parsed period-start, when any
//
// Unparseable dates never fail a row; they only disable the annotation that
// needed them. Write failures are row-local: the row is marked and the
// caller moves on.
//
// =============================================================================

package annotator

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/funding-autofiller/internal/calendar"
	"github.com/ginjaninja78/funding-autofiller/internal/form"
	"github.com/ginjaninja78/funding-autofiller/internal/source"
)

// DefaultStaleAfterDays is the staleness threshold. A record whose period
// end is more than this many days before now is classified stale; exactly
// this many days is not stale.
const DefaultStaleAfterDays = 90

// Options toggles the optional annotations. Earlier in-house variants of the
// filler differed only in these switches.
type Options struct {
	// EnableHolidayBadge appends a holiday period badge when the record's
	// period-start falls in a named range.
	EnableHolidayBadge bool

	// EnableStalenessBadge enables the stale classification.
	EnableStalenessBadge bool

	// StaleAfterDays overrides the staleness threshold.
	// Default: 90
	StaleAfterDays int
}

// DefaultOptions enables every annotation with the standard threshold.
func DefaultOptions() Options {
	return Options{
		EnableHolidayBadge:   true,
		EnableStalenessBadge: true,
		StaleAfterDays:       DefaultStaleAfterDays,
	}
}

// Annotator writes resolved records into destination rows.
type Annotator struct {
	calendar *calendar.Calendar
	options  Options
	now      func() time.Time
	log      zerolog.Logger
}

// New creates an annotator against the given holiday calendar.
func New(cal *calendar.Calendar, options Options, logger zerolog.Logger) *Annotator {
	if options.StaleAfterDays <= 0 {
		options.StaleAfterDays = DefaultStaleAfterDays
	}
	return &Annotator{
		calendar: cal,
		options:  options,
		now:      time.Now,
		log:      logger.With().Str("component", "annotator").Logger(),
	}
}

// WithClock replaces the current-time source; tests pin "now" with it.
func (a *Annotator) WithClock(now func() time.Time) *Annotator {
	a.now = now
	return a
}

// Fill writes the record into the row and annotates it. weeklyTotal is the
// value to write: the record's own weekly total, or the scalar the operator
// chose for an ambiguous record.
//
// A write failure marks the row and returns the error; the row traversal is
// expected to continue.
func (a *Annotator) Fill(row form.Row, record *source.Record, weeklyTotal string) error {
	writes := []struct {
		name  form.FieldName
		value string
	}{
		{form.FieldPeriodStart, record.PeriodStart()},
		{form.FieldWeeklyTotal, weeklyTotal},
		{form.FieldHourRate, NormalizeRate(record.HourRate())},
	}

	for _, write := range writes {
		if err := row.SetField(write.name, write.value); err != nil {
			row.MarkError(err.Error())
			return fmt.Errorf("write failed: %w", err)
		}
		row.NotifyChanged(write.name)
	}

	a.classify(row, record)
	a.badge(row, record)
	row.ScrollIntoView()
	return nil
}

// classify applies the base > stale > fresh priority.
func (a *Annotator) classify(row form.Row, record *source.Record) {
	if IsBasePeriod(record.Note()) {
		row.SetClass(form.ClassBase)
		return
	}

	if a.options.EnableStalenessBadge {
		if end, err := ParseDate(record.PeriodEnd()); err == nil {
			threshold := truncateToDay(a.now()).AddDate(0, 0, -a.options.StaleAfterDays)
			if end.Before(threshold) {
				row.SetClass(form.ClassStale)
				return
			}
		} else {
			a.log.Debug().Str("identifier", record.Identifier()).
				Str("period_end", record.PeriodEnd()).
				Msg("unparseable period end, staleness not checked")
		}
	}

	row.SetClass(form.ClassFresh)
}

// badge appends the note and holiday badges.
func (a *Annotator) badge(row form.Row, record *source.Record) {
	if _, extra := SplitNote(record.Note()); extra != "" {
		row.AppendBadge(form.Badge{Kind: form.BadgeNote, Label: extra})
	}

	if !a.options.EnableHolidayBadge {
		return
	}
	start, err := ParseDate(record.PeriodStart())
	if err != nil {
		if record.PeriodStart() != "" {
			a.log.Debug().Str("identifier", record.Identifier()).
				Str("period_start", record.PeriodStart()).
				Msg("unparseable period start, holiday not checked")
		}
		return
	}
	if name, ok := a.calendar.Lookup(start); ok {
		row.AppendBadge(form.Badge{Kind: form.BadgeHoliday, Label: name})
	}
}

// truncateToDay drops the time-of-day component so the staleness boundary is
// day-precise.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// Funding Autofiller - Row Resolver
// =============================================================================
//
// The resolver walks destination rows in order and binds each one to zero or
// one source record from the shared index.
//
// For each row it reads the row's own identifier and period-end fields. If
// either is blank the row is skipped (logged, never fatal). Otherwise the
// same composite key the index was built with selects a candidate bucket:
//
//   - zero candidates  -> row left unfilled, not a match
//   - one candidate    -> consumed
//   - many candidates  -> the record whose period-start equals the row's own
//                         period-start (exact trimmed string), else the first
//                         unconsumed candidate in input order
//
// Consumption removes the chosen record from its bucket so a later row with
// the same key cannot reuse it. Consumption can be disabled to reproduce the
// behavior of older in-house variants.
//
// The resolver also tracks group boundaries: a resolution carries NewGroup
// when the row's identifier differs from the previous row's identifier.
// Skipped rows still carry their identifier forward so boundaries stay
// correct across gaps.
//
// =============================================================================

package resolver

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/funding-autofiller/internal/form"
	"github.com/ginjaninja78/funding-autofiller/internal/source"
)

// Reason explains why a row was left unresolved.
type Reason int

const (
	// ReasonNone means the row resolved to a record.
	ReasonNone Reason = iota

	// ReasonBlankKey means the row's identifier or period-end field is blank.
	ReasonBlankKey

	// ReasonNoCandidates means the bucket for the row's key is empty or
	// already exhausted by earlier rows.
	ReasonNoCandidates
)

// String returns a short human-readable reason.
func (r Reason) String() string {
	switch r {
	case ReasonBlankKey:
		return "identifier or period end missing"
	case ReasonNoCandidates:
		return "no matching source record"
	default:
		return ""
	}
}

// Resolution pairs a destination row with its consumed record, if any.
// It exists only for the duration of the fill operation for that row.
type Resolution struct {
	// Row is the destination row the resolution applies to.
	Row form.Row

	// Record is the consumed source record, nil when unresolved.
	Record *source.Record

	// Reason explains an unresolved row.
	Reason Reason

	// Identifier is the row's own trimmed identifier (may be blank).
	Identifier string

	// NewGroup is set when the identifier differs from the previous row's,
	// so the caller can draw a group boundary.
	NewGroup bool
}

// Resolver resolves destination rows against a shared source index.
// It is stateful: group-boundary tracking depends on visit order.
type Resolver struct {
	index   *source.Index
	consume bool
	log     zerolog.Logger

	started        bool
	prevIdentifier string
}

// New creates a resolver over the index. When consume is false, records stay
// in their buckets and may be matched repeatedly.
func New(index *source.Index, consume bool, logger zerolog.Logger) *Resolver {
	return &Resolver{
		index:   index,
		consume: consume,
		log:     logger.With().Str("component", "resolver").Logger(),
	}
}

// Resolve binds one destination row. Rows must be passed in display order.
func (r *Resolver) Resolve(rowNumber int, row form.Row) Resolution {
	identifier := strings.TrimSpace(row.Field(form.FieldIdentifier))
	periodEnd := strings.TrimSpace(row.Field(form.FieldPeriodEnd))

	resolution := Resolution{
		Row:        row,
		Identifier: identifier,
		NewGroup:   r.boundary(identifier),
	}

	if identifier == "" || periodEnd == "" {
		resolution.Reason = ReasonBlankKey
		r.log.Debug().Int("row", rowNumber).Msg("skipping row with blank key fields")
		return resolution
	}

	key := source.Key(r.index.Mode(), identifier, periodEnd)
	candidates := r.index.Candidates(key)
	if len(candidates) == 0 {
		resolution.Reason = ReasonNoCandidates
		r.log.Debug().Int("row", rowNumber).Str("key", key).Msg("no candidates for row")
		return resolution
	}

	record := r.pick(row, candidates)
	if r.consume {
		r.index.Consume(key, record)
	}

	resolution.Record = record
	r.log.Debug().Int("row", rowNumber).Str("key", key).
		Int("candidates", len(candidates)).Msg("row resolved")
	return resolution
}

// pick applies the tie-break policy to a non-empty bucket.
func (r *Resolver) pick(row form.Row, candidates []*source.Record) *source.Record {
	if len(candidates) == 1 {
		return candidates[0]
	}

	rowStart := strings.TrimSpace(row.Field(form.FieldPeriodStart))
	if rowStart != "" {
		for _, candidate := range candidates {
			if candidate.PeriodStart() == rowStart {
				return candidate
			}
		}
	}

	// No start-date match: oldest unconsumed candidate, input order.
	return candidates[0]
}

// boundary updates the carried identifier state and reports whether the
// identifier changed since the previous row.
func (r *Resolver) boundary(identifier string) bool {
	if identifier == "" {
		return false
	}
	defer func() {
		r.prevIdentifier = identifier
		r.started = true
	}()
	return r.started && identifier != r.prevIdentifier
}

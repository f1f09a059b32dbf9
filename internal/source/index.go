// =============================================================================
// Funding Autofiller - Source Index
// =============================================================================
//
// The index groups source records into buckets keyed by a composite natural
// key. Buckets preserve input order (first seen, first listed). A record is
// removed from its bucket exactly once, when a destination row consumes it,
// so no two destination rows can be filled from the same record.
//
// The index is not safe for concurrent use. The row driver processes rows
// strictly one at a time, so all bucket mutation happens on one goroutine.
//
// =============================================================================

package source

import "strings"

// KeySeparator joins the composite key parts.
const KeySeparator = "|"

// KeyMode selects which fields make up the composite key. Earlier in-house
// variants keyed on the identifier alone; the current behavior keys on
// identifier plus period end.
type KeyMode int

const (
	// KeyIdentifierPeriodEnd keys records by (identifier, period-end).
	KeyIdentifierPeriodEnd KeyMode = iota

	// KeyIdentifierOnly keys records by identifier alone.
	KeyIdentifierOnly
)

// Key builds the composite key from already-extracted field values.
// Both parts are trimmed and compared as exact strings, never parsed
// as dates.
func Key(mode KeyMode, identifier, periodEnd string) string {
	identifier = strings.TrimSpace(identifier)
	if mode == KeyIdentifierOnly {
		return identifier
	}
	return identifier + KeySeparator + strings.TrimSpace(periodEnd)
}

// Key returns the record's composite key for the given mode.
func (r *Record) Key(mode KeyMode) string {
	return Key(mode, r.Identifier(), r.PeriodEnd())
}

// =============================================================================
// INDEX
// =============================================================================

// Index maps composite keys to ordered buckets of candidate records.
type Index struct {
	mode    KeyMode
	buckets map[string][]*Record
	total   int
}

// NewIndex creates an empty index for the given key mode.
func NewIndex(mode KeyMode) *Index {
	return &Index{
		mode:    mode,
		buckets: make(map[string][]*Record),
	}
}

// Build indexes a record sequence. No record is ever rejected; duplicate
// keys simply grow a list of candidates in input order.
func Build(records []*Record, mode KeyMode) *Index {
	index := NewIndex(mode)
	for _, record := range records {
		index.Add(record)
	}
	return index
}

// Mode returns the key mode the index was built with.
func (ix *Index) Mode() KeyMode {
	return ix.mode
}

// Add appends a record to the bucket for its key, creating the bucket if
// absent.
func (ix *Index) Add(record *Record) {
	key := record.Key(ix.mode)
	ix.buckets[key] = append(ix.buckets[key], record)
	ix.total++
}

// Candidates returns the remaining records for a key, in input order.
// The returned slice is the live bucket; callers must not mutate it.
func (ix *Index) Candidates(key string) []*Record {
	return ix.buckets[key]
}

// Consume removes one record from its bucket so it cannot be matched again.
// It reports whether the record was present.
func (ix *Index) Consume(key string, record *Record) bool {
	bucket := ix.buckets[key]
	for i, candidate := range bucket {
		if candidate == record {
			ix.buckets[key] = append(bucket[:i], bucket[i+1:]...)
			if len(ix.buckets[key]) == 0 {
				delete(ix.buckets, key)
			}
			ix.total--
			return true
		}
	}
	return false
}

// Remaining returns the number of unconsumed records across all buckets.
func (ix *Index) Remaining() int {
	return ix.total
}

// BucketCount returns the number of non-empty buckets.
func (ix *Index) BucketCount() int {
	return len(ix.buckets)
}

package identity

import (
	"github.com/traxovo/attendance-cli/internal/model"
)

// Ledger is the per-run driver accumulator, keyed by normalized name. Each
// pipeline run constructs a fresh Ledger and passes it to every extractor;
// there is no module-level state.
type Ledger struct {
	records map[string]*model.DriverRecord
	order   []string // first-seen order, for deterministic iteration
}

// NewLedger creates an empty accumulator.
func NewLedger() *Ledger {
	return &Ledger{records: make(map[string]*model.DriverRecord)}
}

// Upsert returns the record for the given raw driver name, creating it on
// first encounter. The display name is kept as first seen. Names that
// normalize to the empty key are rejected (ok=false).
func (l *Ledger) Upsert(rawName string) (rec *model.DriverRecord, ok bool) {
	key := Normalize(rawName)
	if key == "" {
		return nil, false
	}
	if existing, found := l.records[key]; found {
		return existing, true
	}
	rec = model.NewDriverRecord(rawName, key)
	l.records[key] = rec
	l.order = append(l.order, key)
	return rec, true
}

// Get looks up a record by its normalized key.
func (l *Ledger) Get(key string) *model.DriverRecord {
	return l.records[key]
}

// Len returns the number of distinct drivers seen so far.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns all records in first-seen order.
func (l *Ledger) Records() []*model.DriverRecord {
	out := make([]*model.DriverRecord, 0, len(l.order))
	for _, key := range l.order {
		out = append(out, l.records[key])
	}
	return out
}

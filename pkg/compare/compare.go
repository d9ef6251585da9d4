// Package compare matches two transaction sets by id and classifies every
// id as identical, differing, or present on one side only.
package compare

import (
	"fmt"
	"slices"

	"github.com/ssargent/ypbank/pkg/bptree"
	"github.com/ssargent/ypbank/pkg/txn"
)

// Class is the outcome for one transaction id.
type Class uint8

const (
	OnlyInA Class = iota + 1
	OnlyInB
	Identical
	Differing
)

// Classes lists every class in report order.
func Classes() []Class {
	return []Class{Identical, Differing, OnlyInA, OnlyInB}
}

func (c Class) String() string {
	switch c {
	case OnlyInA:
		return "only_in_a"
	case OnlyInB:
		return "only_in_b"
	case Identical:
		return "identical"
	case Differing:
		return "differing"
	default:
		return fmt.Sprintf("Class(%d)", uint8(c))
	}
}

func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Options control which fields take part in the comparison.
type Options struct {
	IgnoreDescription bool
	IgnoreStatus      bool
	// IgnoreFields excludes any further fields. FieldID is accepted and has
	// no effect since ids are the match key.
	IgnoreFields []txn.Field
	// Verbose fills Report.Entries.
	Verbose bool
}

func (o Options) ignored(f txn.Field) bool {
	switch {
	case f == txn.FieldDescription && o.IgnoreDescription:
		return true
	case f == txn.FieldStatus && o.IgnoreStatus:
		return true
	}
	return slices.Contains(o.IgnoreFields, f)
}

// FieldDiff is one field whose rendered values differ between the sides.
type FieldDiff struct {
	Field txn.Field `json:"field"`
	A     string    `json:"a"`
	B     string    `json:"b"`
}

// Entry describes one non-identical id.
type Entry struct {
	ID    uint64      `json:"id"`
	Class Class       `json:"class"`
	Diffs []FieldDiff `json:"diffs,omitempty"`
}

// Report summarises a comparison. Counts are always filled; Entries only
// when Options.Verbose is set.
type Report struct {
	Total     int `json:"total"`
	Matched   int `json:"matched"`
	Identical int `json:"identical"`
	Differing int `json:"differing"`
	OnlyInA   int `json:"only_in_a"`
	OnlyInB   int `json:"only_in_b"`

	// DuplicatesA and DuplicatesB hold ids seen more than once on a side.
	// Only the first occurrence is compared.
	DuplicatesA []uint64 `json:"duplicates_a,omitempty"`
	DuplicatesB []uint64 `json:"duplicates_b,omitempty"`

	Entries []Entry `json:"entries,omitempty"`
}

// Equal reports whether the two sides hold the same ids with no differing
// fields.
func (r *Report) Equal() bool {
	return r.Differing == 0 && r.OnlyInA == 0 && r.OnlyInB == 0
}

// Count returns the number of ids in class c.
func (r *Report) Count(c Class) int {
	switch c {
	case OnlyInA:
		return r.OnlyInA
	case OnlyInB:
		return r.OnlyInB
	case Identical:
		return r.Identical
	case Differing:
		return r.Differing
	}
	return 0
}

type pair struct {
	a, b *txn.Transaction
}

// Compare matches a and b by id. It never fails; malformed input is the
// codecs' concern.
func Compare(a, b []txn.Transaction, opts Options) *Report {
	report := &Report{}
	index := bptree.NewBPlusTree[uint64, pair](bptree.DefaultOrder)

	for i := range a {
		tx := &a[i]
		index.Upsert(tx.ID, func(p pair, _ bool) pair {
			if p.a != nil {
				report.DuplicatesA = append(report.DuplicatesA, tx.ID)
				return p
			}
			p.a = tx
			return p
		})
	}
	for i := range b {
		tx := &b[i]
		index.Upsert(tx.ID, func(p pair, _ bool) pair {
			if p.b != nil {
				report.DuplicatesB = append(report.DuplicatesB, tx.ID)
				return p
			}
			p.b = tx
			return p
		})
	}

	index.Ascend(func(id uint64, p pair) bool {
		report.Total++

		entry := Entry{ID: id}
		switch {
		case p.b == nil:
			entry.Class = OnlyInA
			report.OnlyInA++
		case p.a == nil:
			entry.Class = OnlyInB
			report.OnlyInB++
		default:
			report.Matched++
			entry.Diffs = Diff(*p.a, *p.b, opts)
			if len(entry.Diffs) == 0 {
				report.Identical++
				return true
			}
			entry.Class = Differing
			report.Differing++
		}

		if opts.Verbose {
			report.Entries = append(report.Entries, entry)
		}
		return true
	})

	return report
}

// Diff lists the fields of a and b that differ and are not ignored by
// opts, in txn.Fields order.
func Diff(a, b txn.Transaction, opts Options) []FieldDiff {
	var diffs []FieldDiff
	for _, f := range txn.Fields() {
		if opts.ignored(f) || fieldEqual(a, b, f) {
			continue
		}
		diffs = append(diffs, FieldDiff{Field: f, A: a.Value(f), B: b.Value(f)})
	}
	return diffs
}

func fieldEqual(a, b txn.Transaction, f txn.Field) bool {
	switch f {
	case txn.FieldID:
		return a.ID == b.ID
	case txn.FieldDate:
		return a.Date == b.Date
	case txn.FieldAmount:
		return a.Amount == b.Amount
	case txn.FieldCurrency:
		return a.Currency == b.Currency
	case txn.FieldDescription:
		return a.Description == b.Description
	case txn.FieldStatus:
		return a.Status == b.Status
	}
	return true
}

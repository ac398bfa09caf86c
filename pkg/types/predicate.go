package types

import (
	"bytes"
	"fmt"
	"sort"
)

// PredicateKind identifies the variant of a simplified column predicate.
type PredicateKind int

const (
	// PredicateNone is the unsatisfiable predicate; no row matches.
	PredicateNone PredicateKind = iota

	// PredicateEquality matches rows where the column equals a value.
	PredicateEquality

	// PredicateRange matches rows where the column falls in
	// [lower, upper), either bound optional.
	PredicateRange

	// PredicateInList matches rows where the column equals one of a
	// sorted set of values.
	PredicateInList

	// PredicateIsNotNull matches rows where the column is non-NULL.
	PredicateIsNotNull
)

// String returns a short name for the predicate kind.
func (k PredicateKind) String() string {
	switch k {
	case PredicateNone:
		return "NONE"
	case PredicateEquality:
		return "EQUALITY"
	case PredicateRange:
		return "RANGE"
	case PredicateInList:
		return "IN_LIST"
	case PredicateIsNotNull:
		return "IS_NOT_NULL"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(k))
	}
}

// Predicate is a simplified, already-normalized predicate on a single
// column. Values are held in the canonical row representation. Predicates
// arrive at the pruner pre-merged: at most one per column.
type Predicate struct {
	// Column is the name of the constrained column
	Column string

	// Kind is the predicate variant
	Kind PredicateKind

	// Lower holds the equality value for EQUALITY predicates, or the
	// inclusive lower bound for RANGE predicates (nil when unbounded)
	Lower []byte

	// Upper holds the exclusive upper bound for RANGE predicates
	// (nil when unbounded)
	Upper []byte

	// Values holds the sorted candidate values for IN_LIST predicates
	Values [][]byte
}

// NewEqualityPredicate builds an equality predicate on col.
func NewEqualityPredicate(col ColumnSchema, value interface{}) (*Predicate, error) {
	raw, err := canonicalValue(col.Type, value)
	if err != nil {
		return nil, fmt.Errorf("types: equality predicate on %q: %w", col.Name, err)
	}
	return &Predicate{Column: col.Name, Kind: PredicateEquality, Lower: raw}, nil
}

// NewRangePredicate builds a range predicate on col with an optional
// inclusive lower bound and optional exclusive upper bound. Pass nil for an
// unbounded side. A range with both bounds present and lower >= upper is
// unsatisfiable and collapses to NONE.
func NewRangePredicate(col ColumnSchema, lower, upper interface{}) (*Predicate, error) {
	p := &Predicate{Column: col.Name, Kind: PredicateRange}
	if lower != nil {
		raw, err := canonicalValue(col.Type, lower)
		if err != nil {
			return nil, fmt.Errorf("types: range predicate on %q: %w", col.Name, err)
		}
		p.Lower = raw
	}
	if upper != nil {
		raw, err := canonicalValue(col.Type, upper)
		if err != nil {
			return nil, fmt.Errorf("types: range predicate on %q: %w", col.Name, err)
		}
		p.Upper = raw
	}
	if p.Lower != nil && p.Upper != nil && compareCanonical(col.Type, p.Lower, p.Upper) >= 0 {
		return &Predicate{Column: col.Name, Kind: PredicateNone}, nil
	}
	return p, nil
}

// NewInListPredicate builds an IN-list predicate on col. The values are
// stored sorted and deduplicated. An empty list collapses to NONE; a single
// value collapses to EQUALITY.
func NewInListPredicate(col ColumnSchema, values []interface{}) (*Predicate, error) {
	raws := make([][]byte, 0, len(values))
	for _, v := range values {
		raw, err := canonicalValue(col.Type, v)
		if err != nil {
			return nil, fmt.Errorf("types: in-list predicate on %q: %w", col.Name, err)
		}
		raws = append(raws, raw)
	}
	sort.Slice(raws, func(i, j int) bool {
		return compareCanonical(col.Type, raws[i], raws[j]) < 0
	})
	deduped := raws[:0]
	for i, raw := range raws {
		if i == 0 || !bytes.Equal(raw, raws[i-1]) {
			deduped = append(deduped, raw)
		}
	}
	switch len(deduped) {
	case 0:
		return &Predicate{Column: col.Name, Kind: PredicateNone}, nil
	case 1:
		return &Predicate{Column: col.Name, Kind: PredicateEquality, Lower: deduped[0]}, nil
	}
	return &Predicate{Column: col.Name, Kind: PredicateInList, Values: deduped}, nil
}

// NewIsNotNullPredicate builds an IS NOT NULL predicate on col.
func NewIsNotNullPredicate(col ColumnSchema) *Predicate {
	return &Predicate{Column: col.Name, Kind: PredicateIsNotNull}
}

// NewNonePredicate builds the unsatisfiable predicate on col.
func NewNonePredicate(col ColumnSchema) *Predicate {
	return &Predicate{Column: col.Name, Kind: PredicateNone}
}

// compareCanonical orders two canonical values of the same column type by
// their logical value.
func compareCanonical(t ColumnType, a, b []byte) int {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		av, bv := decodeInt(t, a), decodeInt(t, b)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case TypeFloat32, TypeFloat64:
		av, bv := decodeFloat(t, a), decodeFloat(t, b)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	default:
		return bytes.Compare(a, b)
	}
}

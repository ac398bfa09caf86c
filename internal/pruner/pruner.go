package pruner

import (
	"bytes"

	kuduerrors "github.com/ramsamdam/kudu/internal/errors"
	"github.com/ramsamdam/kudu/internal/key"
	"github.com/ramsamdam/kudu/pkg/types"
)

// Config carries everything the pruner needs about a scan: the table
// schema, the partition schema, the simplified predicates keyed by column
// name, and the scan's explicit bounds. All bound fields are optional;
// empty means unbounded on that side.
type Config struct {
	// Schema is the table schema
	Schema *types.Schema

	// PartitionSchema is the table's partition schema
	PartitionSchema *types.PartitionSchema

	// Predicates maps column name to the scan's predicate on that
	// column, at most one per column
	Predicates map[string]*types.Predicate

	// LowerBoundPrimaryKey is the scan's inclusive encoded primary key
	// lower bound
	LowerBoundPrimaryKey []byte

	// UpperBoundPrimaryKey is the scan's exclusive encoded primary key
	// upper bound
	UpperBoundPrimaryKey []byte

	// LowerBoundPartitionKey is the scan's inclusive partition key lower
	// bound
	LowerBoundPartitionKey []byte

	// UpperBoundPartitionKey is the scan's exclusive partition key upper
	// bound
	UpperBoundPartitionKey []byte
}

// PartitionKeyRange is a half-open interval of the partition key space.
// An empty Upper means unbounded above; an empty Lower means the beginning
// of the key space.
type PartitionKeyRange struct {
	// Lower is the inclusive lower bound
	Lower []byte

	// Upper is the exclusive upper bound
	Upper []byte
}

// Pruner holds the partition key ranges a scan must still visit, in
// ascending lower bound order. It is a single-owner object: the scanner
// that created it drives it from one goroutine at a time.
type Pruner struct {
	ranges []PartitionKeyRange
}

// New creates a pruner for the described scan. Schema and predicate
// problems surface here; iteration never fails. An unsatisfiable scan
// yields an empty pruner, not an error.
func New(cfg Config) (*Pruner, error) {
	if cfg.Schema == nil || cfg.PartitionSchema == nil {
		return nil, kuduerrors.New(kuduerrors.ErrCategorySchema, kuduerrors.CodeSchemaMismatch,
			"pruner requires a schema and a partition schema")
	}
	if err := cfg.PartitionSchema.Validate(cfg.Schema); err != nil {
		return nil, kuduerrors.NewSchemaMismatchError("invalid partition schema", err)
	}

	// Check whether the scan can be short circuited entirely from the
	// primary key bounds and predicates. This also establishes invariants
	// for the rest of the construction: no NONE predicates, and
	// lower bound PK < upper bound PK.
	if len(cfg.UpperBoundPrimaryKey) > 0 &&
		bytes.Compare(cfg.LowerBoundPrimaryKey, cfg.UpperBoundPrimaryKey) >= 0 {
		return &Pruner{}, nil
	}
	for _, pred := range cfg.Predicates {
		if pred.Kind == types.PredicateNone {
			return &Pruner{}, nil
		}
	}

	// Step 1: the range portion of the partition key. Under simple range
	// partitioning the range columns are exactly the primary key columns,
	// so the scan's primary key bounds can tighten the pushed bounds.
	rangeLower, err := pushLowerBoundRangeKey(cfg.Schema, cfg.PartitionSchema.RangeSchema, cfg.Predicates)
	if err != nil {
		return nil, err
	}
	rangeUpper, err := pushUpperBoundRangeKey(cfg.Schema, cfg.PartitionSchema.RangeSchema, cfg.Predicates)
	if err != nil {
		return nil, err
	}
	if cfg.PartitionSchema.IsSimpleRangePartitioning(cfg.Schema) {
		if bytes.Compare(rangeLower, cfg.LowerBoundPrimaryKey) < 0 {
			rangeLower = cfg.LowerBoundPrimaryKey
		}
		if len(cfg.UpperBoundPrimaryKey) > 0 &&
			(len(rangeUpper) == 0 || bytes.Compare(rangeUpper, cfg.UpperBoundPrimaryKey) > 0) {
			rangeUpper = cfg.UpperBoundPrimaryKey
		}
	}

	// Step 2: the hash bucket portion. One entry per hash component;
	// nil marks an unconstrained component.
	hashBuckets := make([]*int32, 0, len(cfg.PartitionSchema.HashSchemas))
	for _, hashSchema := range cfg.PartitionSchema.HashSchemas {
		bucket, err := pushHashBucket(cfg.Schema, hashSchema, cfg.Predicates)
		if err != nil {
			return nil, err
		}
		hashBuckets = append(hashBuckets, bucket)
	}

	// The partition key is truncated after the final constrained
	// component: bytes past it would over-constrain the scan.
	constrainedIndex := 0
	if len(rangeLower) > 0 || len(rangeUpper) > 0 {
		constrainedIndex = len(hashBuckets)
	} else {
		for i := len(hashBuckets); i > 0; i-- {
			if hashBuckets[i-1] != nil {
				constrainedIndex = i
				break
			}
		}
	}

	// Step 3: build the set of partition key ranges out of the hash
	// components. A constrained component appends its bucket to every
	// range; an unconstrained component multiplies the set by its bucket
	// count. When no range upper bound follows, the final component's upper
	// bucket is bumped by one to turn the inclusive bucket into an
	// exclusive key.
	ranges := []PartitionKeyRange{{}}
	for hashIdx := 0; hashIdx < constrainedIndex; hashIdx++ {
		isLast := hashIdx+1 == constrainedIndex && len(rangeUpper) == 0

		if bucket := hashBuckets[hashIdx]; bucket != nil {
			bucketUpper := *bucket
			if isLast {
				bucketUpper++
			}
			for i := range ranges {
				ranges[i].Lower = key.EncodeHashBucket(ranges[i].Lower, *bucket)
				ranges[i].Upper = key.EncodeHashBucket(ranges[i].Upper, bucketUpper)
			}
			continue
		}

		hashSchema := cfg.PartitionSchema.HashSchemas[hashIdx]
		expanded := make([]PartitionKeyRange, 0, len(ranges)*int(hashSchema.NumBuckets))
		for _, r := range ranges {
			for bucket := int32(0); bucket < hashSchema.NumBuckets; bucket++ {
				bucketUpper := bucket
				if isLast {
					bucketUpper++
				}
				prefix := r.Lower
				lower := key.EncodeHashBucket(cloneKey(prefix), bucket)
				upper := key.EncodeHashBucket(cloneKey(prefix), bucketUpper)
				expanded = append(expanded, PartitionKeyRange{Lower: lower, Upper: upper})
			}
		}
		ranges = expanded
	}

	// Step 4: append the (possibly empty) range bounds.
	for i := range ranges {
		ranges[i].Lower = append(ranges[i].Lower, rangeLower...)
		ranges[i].Upper = append(ranges[i].Upper, rangeUpper...)
	}

	// Step 5: intersect with the scan's explicit partition key bounds and
	// drop ranges the intersection empties.
	final := make([]PartitionKeyRange, 0, len(ranges))
	for _, r := range ranges {
		lower, upper := r.Lower, r.Upper
		// An inverted constructed range means the predicate set admits no
		// key on the range component; the scan visits nothing there.
		if len(upper) > 0 && bytes.Compare(lower, upper) >= 0 {
			continue
		}
		if len(cfg.LowerBoundPartitionKey) > 0 &&
			bytes.Compare(lower, cfg.LowerBoundPartitionKey) < 0 {
			lower = cfg.LowerBoundPartitionKey
		}
		if len(cfg.UpperBoundPartitionKey) > 0 &&
			(len(upper) == 0 || bytes.Compare(upper, cfg.UpperBoundPartitionKey) > 0) {
			upper = cfg.UpperBoundPartitionKey
		}
		if len(upper) == 0 || bytes.Compare(lower, upper) < 0 {
			final = append(final, PartitionKeyRange{Lower: lower, Upper: upper})
		}
	}

	return &Pruner{ranges: final}, nil
}

// HasMorePartitionKeyRanges reports whether any partition key ranges remain
// to scan.
func (p *Pruner) HasMorePartitionKeyRanges() bool {
	return len(p.ranges) > 0
}

// NextPartitionKey returns the inclusive lower bound partition key of the
// next tablet to scan. Only valid while HasMorePartitionKeyRanges is true.
func (p *Pruner) NextPartitionKey() []byte {
	return p.ranges[0].Lower
}

// NextPartitionKeyRange returns the next partition key range to scan. Only
// valid while HasMorePartitionKeyRanges is true.
func (p *Pruner) NextPartitionKeyRange() PartitionKeyRange {
	return p.ranges[0]
}

// NumRanges returns the number of partition key ranges remaining.
func (p *Pruner) NumRanges() int {
	return len(p.ranges)
}

// RemovePartitionKeyRange removes all partition key ranges through the
// provided exclusive upper bound, which is the end key of the tablet just
// consumed. An empty upper bound means the scan reached the end of the key
// space and clears the queue. A bound that lands inside a range truncates
// that range instead of dropping it.
func (p *Pruner) RemovePartitionKeyRange(upperBound []byte) {
	if len(upperBound) == 0 {
		p.ranges = nil
		return
	}

	for len(p.ranges) > 0 {
		head := p.ranges[0]
		if bytes.Compare(upperBound, head.Lower) <= 0 {
			break
		}
		p.ranges = p.ranges[1:]
		if len(head.Upper) == 0 || bytes.Compare(upperBound, head.Upper) < 0 {
			// The upper bound falls in the middle of this range; put it
			// back with the restricted bounds.
			p.ranges = append([]PartitionKeyRange{{Lower: upperBound, Upper: head.Upper}}, p.ranges...)
			break
		}
	}
}

// ShouldPrune reports whether the partition can be skipped entirely: no
// remaining partition key range overlaps it. A binary search over the
// sorted queue would also work; the queue is short enough that a linear
// scan serves.
func (p *Pruner) ShouldPrune(partition types.Partition) bool {
	for _, r := range p.ranges {
		// Keep searching while the partition is entirely above the
		// current range.
		if len(r.Upper) > 0 && bytes.Compare(r.Upper, partition.PartitionKeyStart) <= 0 {
			continue
		}

		// The first range not below the partition decides: prune only if
		// the partition ends before the range begins.
		return len(partition.PartitionKeyEnd) > 0 &&
			bytes.Compare(partition.PartitionKeyEnd, r.Lower) <= 0
	}

	// The partition is above every remaining range.
	return true
}

// FilterPartitions returns the partitions the scan must visit, preserving
// input order.
func (p *Pruner) FilterPartitions(partitions []types.Partition) []types.Partition {
	kept := make([]types.Partition, 0, len(partitions))
	for _, part := range partitions {
		if !p.ShouldPrune(part) {
			kept = append(kept, part)
		}
	}
	return kept
}

func cloneKey(k []byte) []byte {
	cp := make([]byte, len(k), len(k)+4)
	copy(cp, k)
	return cp
}

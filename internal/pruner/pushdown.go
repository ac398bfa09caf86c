// Package pruner computes the minimal ordered set of partition key ranges a
// scan must visit, given a table's partition schema, the scan's column
// predicates, and optional explicit primary key and partition key bounds.
// It also drives iteration over those ranges as tablets are consumed.
package pruner

import (
	"fmt"

	kuduerrors "github.com/ramsamdam/kudu/internal/errors"
	"github.com/ramsamdam/kudu/internal/key"
	"github.com/ramsamdam/kudu/pkg/types"
)

// pushLowerBoundRangeKey translates column predicates into an inclusive
// lower bound range partition key. Predicates are copied into a scratch row
// in range column order, stopping at the first column without a usable
// bound; remaining range columns are filled with their type minimum. An
// empty result means no lower bound could be derived.
func pushLowerBoundRangeKey(schema *types.Schema, rangeSchema types.RangeSchema,
	predicates map[string]*types.Predicate) ([]byte, error) {
	row := schema.NewPartialRow()
	idxs, err := idsToIndexes(schema, rangeSchema.ColumnIDs)
	if err != nil {
		return nil, err
	}

	pushed := 0
	for _, idx := range idxs {
		col := schema.ColumnByIndex(idx)
		pred := predicates[col.Name]
		if pred == nil {
			break
		}
		if err := checkPushableKind(col, pred); err != nil {
			return nil, err
		}
		if pred.Kind != types.PredicateEquality && pred.Kind != types.PredicateRange {
			break
		}
		// Equality values are carried in Lower, so both kinds read the
		// same field. A range predicate without a lower bound stops the
		// walk without being pushed.
		if pred.Lower == nil {
			break
		}
		if err := row.SetRaw(idx, pred.Lower); err != nil {
			return nil, kuduerrors.NewKeyEncodingError(
				fmt.Sprintf("lower bound push on column %q", col.Name), err)
		}
		pushed++
	}

	if pushed == 0 {
		return nil, nil
	}

	for _, idx := range idxs[pushed:] {
		row.SetMin(idx)
	}
	return key.EncodeRangePartitionKey(row, rangeSchema)
}

// pushUpperBoundRangeKey translates column predicates into an exclusive
// upper bound range partition key. Equality predicates compose across
// columns; the first range predicate ends the walk because a later column
// cannot tighten an exclusive bound further. When the final pushed
// predicate is an equality, the pushed prefix is incremented to convert the
// inclusive value into an exclusive bound; if the increment overflows the
// whole prefix the upper bound is unbounded and the result is empty.
func pushUpperBoundRangeKey(schema *types.Schema, rangeSchema types.RangeSchema,
	predicates map[string]*types.Predicate) ([]byte, error) {
	row := schema.NewPartialRow()
	idxs, err := idsToIndexes(schema, rangeSchema.ColumnIDs)
	if err != nil {
		return nil, err
	}

	pushed := 0
	var finalPred *types.Predicate
	for _, idx := range idxs {
		col := schema.ColumnByIndex(idx)
		pred := predicates[col.Name]
		if pred == nil {
			break
		}
		if err := checkPushableKind(col, pred); err != nil {
			return nil, err
		}
		if pred.Kind == types.PredicateEquality {
			if err := row.SetRaw(idx, pred.Lower); err != nil {
				return nil, kuduerrors.NewKeyEncodingError(
					fmt.Sprintf("upper bound push on column %q", col.Name), err)
			}
			pushed++
			finalPred = pred
			continue
		}
		if pred.Kind == types.PredicateRange && pred.Upper != nil {
			if err := row.SetRaw(idx, pred.Upper); err != nil {
				return nil, kuduerrors.NewKeyEncodingError(
					fmt.Sprintf("upper bound push on column %q", col.Name), err)
			}
			pushed++
			finalPred = pred
		}
		break
	}

	if pushed == 0 {
		return nil, nil
	}

	if finalPred.Kind == types.PredicateEquality {
		if !incrementKey(row, idxs[:pushed]) {
			// The prefix held the maximum value of every pushed column;
			// there is no exclusive upper bound.
			return nil, nil
		}
	}

	for _, idx := range idxs[pushed:] {
		row.SetMin(idx)
	}
	return key.EncodeRangePartitionKey(row, rangeSchema)
}

// pushHashBucket determines whether the predicates constrain the hash
// component to exactly one bucket. Every column of the component must carry
// an equality predicate; otherwise the component is unconstrained and the
// result is nil.
func pushHashBucket(schema *types.Schema, hashSchema types.HashBucketSchema,
	predicates map[string]*types.Predicate) (*int32, error) {
	idxs, err := idsToIndexes(schema, hashSchema.ColumnIDs)
	if err != nil {
		return nil, err
	}

	row := schema.NewPartialRow()
	for _, idx := range idxs {
		col := schema.ColumnByIndex(idx)
		pred := predicates[col.Name]
		if pred == nil || pred.Kind != types.PredicateEquality {
			return nil, nil
		}
		if err := row.SetRaw(idx, pred.Lower); err != nil {
			return nil, kuduerrors.NewKeyEncodingError(
				fmt.Sprintf("hash bucket push on column %q", col.Name), err)
		}
	}

	bucket, err := key.HashBucket(row, hashSchema)
	if err != nil {
		return nil, err
	}
	return &bucket, nil
}

// incrementKey increments the composite key formed by the columns at idxs,
// carrying from the last column toward the first. Returns false when the
// increment overflowed out of the leftmost column, meaning the key had no
// successor.
func incrementKey(row *types.PartialRow, idxs []int) bool {
	for i := len(idxs) - 1; i >= 0; i-- {
		if row.IncrementColumn(idxs[i]) {
			return true
		}
	}
	return false
}

// checkPushableKind rejects predicate kinds the pruner does not know about
// when they land on a range partition column; the range bound walks call it,
// the hash bucket push does not. The known non-key-pushable kinds
// (IS NOT NULL, IN list) are merely unconstraining, not errors.
func checkPushableKind(col types.ColumnSchema, pred *types.Predicate) error {
	switch pred.Kind {
	case types.PredicateNone, types.PredicateEquality, types.PredicateRange,
		types.PredicateInList, types.PredicateIsNotNull:
		return nil
	default:
		return kuduerrors.NewUnsupportedPredicateError(
			fmt.Sprintf("predicate kind %s on column %q cannot be pushed into a partition key",
				pred.Kind, col.Name))
	}
}

// idsToIndexes maps stable column ids to positional indexes, surfacing
// unknown ids as schema mismatch errors.
func idsToIndexes(schema *types.Schema, ids []int32) ([]int, error) {
	idxs := make([]int, 0, len(ids))
	for _, id := range ids {
		idx, err := schema.ColumnIndexByID(id)
		if err != nil {
			return nil, kuduerrors.NewSchemaMismatchError(
				fmt.Sprintf("partition schema column id %d", id), err)
		}
		idxs = append(idxs, idx)
	}
	return idxs, nil
}

package key

import (
	"fmt"

	"github.com/spaolacci/murmur3"

	"github.com/ramsamdam/kudu/pkg/types"
)

// HashBucket computes the hash bucket of the row for one hash component of
// the partition schema. The hashed columns are encoded with the same
// order-preserving rules as a range key, then hashed with the seeded 64-bit
// murmur3 the server uses, and reduced modulo the bucket count.
func HashBucket(row *types.PartialRow, hashSchema types.HashBucketSchema) (int32, error) {
	idxs, err := idsToIndexes(row.Schema(), hashSchema.ColumnIDs)
	if err != nil {
		return 0, err
	}
	buf, err := EncodeColumns(nil, row, idxs)
	if err != nil {
		return 0, fmt.Errorf("key: hash bucket encoding: %w", err)
	}
	h := murmur3.Sum64WithSeed(buf, hashSchema.Seed)
	return int32(h % uint64(hashSchema.NumBuckets)), nil
}

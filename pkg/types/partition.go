package types

import "fmt"

// HashBucketSchema describes one hash component of a partition schema:
// a set of primary key columns hashed together into NumBuckets buckets.
type HashBucketSchema struct {
	// ColumnIDs are the stable ids of the hashed columns, in schema order
	ColumnIDs []int32 `json:"column_ids"`

	// NumBuckets is the bucket count; at least 2
	NumBuckets int32 `json:"num_buckets"`

	// Seed perturbs the hash so tables with identical hash columns
	// distribute rows differently
	Seed uint32 `json:"seed"`
}

// RangeSchema describes the range component of a partition schema: an
// ordered list of primary key column ids, possibly empty.
type RangeSchema struct {
	// ColumnIDs are the stable ids of the range columns, in significance order
	ColumnIDs []int32 `json:"column_ids"`
}

// PartitionSchema describes how a table's rows map onto tablets: an ordered
// list of hash components followed by a range component. The column sets of
// all components are pairwise disjoint subsets of the primary key.
type PartitionSchema struct {
	// HashSchemas are the hash components, in partition key order
	HashSchemas []HashBucketSchema `json:"hash_schemas"`

	// RangeSchema is the range component
	RangeSchema RangeSchema `json:"range_schema"`
}

// IsSimpleRangePartitioning reports whether the partition schema consists of
// a single range component over exactly the primary key columns, in order,
// with no hash components. In that case primary key bounds and range
// partition bounds are interchangeable.
func (p *PartitionSchema) IsSimpleRangePartitioning(schema *Schema) bool {
	if len(p.HashSchemas) > 0 {
		return false
	}
	if len(p.RangeSchema.ColumnIDs) != schema.KeyColumnCount() {
		return false
	}
	for i, id := range p.RangeSchema.ColumnIDs {
		idx, err := schema.ColumnIndexByID(id)
		if err != nil || idx != i {
			return false
		}
	}
	return true
}

// Validate checks the partition schema against the table schema: every
// referenced column must exist, be part of the primary key, and belong to
// at most one component.
func (p *PartitionSchema) Validate(schema *Schema) error {
	seen := make(map[int32]bool)
	claim := func(id int32) error {
		idx, err := schema.ColumnIndexByID(id)
		if err != nil {
			return fmt.Errorf("types: partition schema references unknown column id %d", id)
		}
		if idx >= schema.KeyColumnCount() {
			return fmt.Errorf("types: partition column %q is not part of the primary key",
				schema.ColumnByIndex(idx).Name)
		}
		if seen[id] {
			return fmt.Errorf("types: column id %d appears in multiple partition components", id)
		}
		seen[id] = true
		return nil
	}

	for i, hs := range p.HashSchemas {
		if len(hs.ColumnIDs) == 0 {
			return fmt.Errorf("types: hash schema %d has no columns", i)
		}
		if hs.NumBuckets < 2 {
			return fmt.Errorf("types: hash schema %d has %d buckets; at least 2 required",
				i, hs.NumBuckets)
		}
		for _, id := range hs.ColumnIDs {
			if err := claim(id); err != nil {
				return err
			}
		}
	}
	for _, id := range p.RangeSchema.ColumnIDs {
		if err := claim(id); err != nil {
			return err
		}
	}
	return nil
}

// Partition describes one tablet's slice of the partition key space.
type Partition struct {
	// PartitionKeyStart is the inclusive start key; empty means the
	// beginning of the key space
	PartitionKeyStart []byte `json:"partition_key_start"`

	// PartitionKeyEnd is the exclusive end key; empty means the end of
	// the key space
	PartitionKeyEnd []byte `json:"partition_key_end"`

	// HashBuckets are the decoded hash bucket indexes of the partition,
	// one per hash component
	HashBuckets []int32 `json:"hash_buckets,omitempty"`
}

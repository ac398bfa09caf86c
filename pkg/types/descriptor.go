package types

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// TableDescriptor is the YAML-loadable description of a table: its identity,
// schema, and partition schema. Column and partition references use names;
// Resolve turns them into a Schema and PartitionSchema with stable ids
// assigned in declaration order.
type TableDescriptor struct {
	// Name is the table name
	Name string `yaml:"table"`

	// ID is the table's unique identifier; generated when absent
	ID string `yaml:"id,omitempty"`

	// Columns are the table columns in declaration order. Key columns
	// must come first.
	Columns []ColumnDescriptor `yaml:"columns"`

	// HashPartitions are the hash components, in partition key order
	HashPartitions []HashPartitionDescriptor `yaml:"hash_partitions,omitempty"`

	// RangePartitionColumns are the range component columns, in order
	RangePartitionColumns []string `yaml:"range_partition_columns,omitempty"`
}

// ColumnDescriptor describes one column of a table descriptor.
type ColumnDescriptor struct {
	// Name is the column name
	Name string `yaml:"name"`

	// Type is the descriptor type name, e.g. "int32" or "string"
	Type string `yaml:"type"`

	// Key marks primary key columns
	Key bool `yaml:"key,omitempty"`

	// Nullable marks columns that admit NULL values
	Nullable bool `yaml:"nullable,omitempty"`
}

// HashPartitionDescriptor describes one hash component of a table
// descriptor.
type HashPartitionDescriptor struct {
	// Columns are the hashed column names
	Columns []string `yaml:"columns"`

	// Buckets is the bucket count
	Buckets int32 `yaml:"buckets"`

	// Seed is the hash seed
	Seed uint32 `yaml:"seed,omitempty"`
}

// LoadTableDescriptor reads and parses a YAML table descriptor file.
func LoadTableDescriptor(path string) (*TableDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("types: failed to read descriptor %s: %w", path, err)
	}
	var desc TableDescriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("types: failed to parse descriptor %s: %w", path, err)
	}
	return &desc, nil
}

// TableID returns the descriptor's table id, generating one when absent.
func (d *TableDescriptor) TableID() (uuid.UUID, error) {
	if d.ID == "" {
		return uuid.New(), nil
	}
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("types: invalid table id %q: %w", d.ID, err)
	}
	return id, nil
}

// Resolve builds the Schema and PartitionSchema described by the
// descriptor. Column ids are assigned in declaration order.
func (d *TableDescriptor) Resolve() (*Schema, *PartitionSchema, error) {
	if len(d.Columns) == 0 {
		return nil, nil, fmt.Errorf("types: descriptor %q has no columns", d.Name)
	}

	keyCount := 0
	columns := make([]ColumnSchema, len(d.Columns))
	idByName := make(map[string]int32, len(d.Columns))
	for i, cd := range d.Columns {
		t, err := ParseColumnType(cd.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("types: descriptor %q column %q: %w", d.Name, cd.Name, err)
		}
		if cd.Key {
			if i != keyCount {
				return nil, nil, fmt.Errorf("types: descriptor %q: key columns must precede non-key columns", d.Name)
			}
			keyCount++
		}
		columns[i] = ColumnSchema{Name: cd.Name, Type: t, Nullable: cd.Nullable, ID: int32(i)}
		idByName[cd.Name] = int32(i)
	}

	schema, err := NewSchema(columns, keyCount)
	if err != nil {
		return nil, nil, fmt.Errorf("types: descriptor %q: %w", d.Name, err)
	}

	resolveIDs := func(names []string) ([]int32, error) {
		ids := make([]int32, 0, len(names))
		for _, name := range names {
			id, ok := idByName[name]
			if !ok {
				return nil, fmt.Errorf("types: descriptor %q references unknown column %q", d.Name, name)
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	partSchema := &PartitionSchema{}
	for _, hd := range d.HashPartitions {
		ids, err := resolveIDs(hd.Columns)
		if err != nil {
			return nil, nil, err
		}
		partSchema.HashSchemas = append(partSchema.HashSchemas, HashBucketSchema{
			ColumnIDs:  ids,
			NumBuckets: hd.Buckets,
			Seed:       hd.Seed,
		})
	}
	rangeIDs, err := resolveIDs(d.RangePartitionColumns)
	if err != nil {
		return nil, nil, err
	}
	partSchema.RangeSchema = RangeSchema{ColumnIDs: rangeIDs}

	if err := partSchema.Validate(schema); err != nil {
		return nil, nil, fmt.Errorf("types: descriptor %q: %w", d.Name, err)
	}
	return schema, partSchema, nil
}

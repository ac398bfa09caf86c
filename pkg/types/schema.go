package types

import "fmt"

// Schema is an ordered list of columns. The first KeyColumnCount columns
// form the primary key. Columns are addressable by position, by stable id,
// and by name.
type Schema struct {
	columns        []ColumnSchema
	keyColumnCount int
	indexByID      map[int32]int
	indexByName    map[string]int
}

// NewSchema builds a schema from an ordered column list. The first
// keyColumnCount columns form the primary key.
func NewSchema(columns []ColumnSchema, keyColumnCount int) (*Schema, error) {
	if keyColumnCount <= 0 || keyColumnCount > len(columns) {
		return nil, fmt.Errorf("types: key column count %d out of range for %d columns",
			keyColumnCount, len(columns))
	}

	indexByID := make(map[int32]int, len(columns))
	indexByName := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, ok := indexByID[col.ID]; ok {
			return nil, fmt.Errorf("types: duplicate column id %d", col.ID)
		}
		if _, ok := indexByName[col.Name]; ok {
			return nil, fmt.Errorf("types: duplicate column name %q", col.Name)
		}
		if i < keyColumnCount && col.Nullable {
			return nil, fmt.Errorf("types: primary key column %q must not be nullable", col.Name)
		}
		indexByID[col.ID] = i
		indexByName[col.Name] = i
	}

	cols := make([]ColumnSchema, len(columns))
	copy(cols, columns)

	return &Schema{
		columns:        cols,
		keyColumnCount: keyColumnCount,
		indexByID:      indexByID,
		indexByName:    indexByName,
	}, nil
}

// ColumnCount returns the number of columns in the schema.
func (s *Schema) ColumnCount() int {
	return len(s.columns)
}

// KeyColumnCount returns the number of primary key columns.
func (s *Schema) KeyColumnCount() int {
	return s.keyColumnCount
}

// ColumnByIndex returns the column at the given position.
func (s *Schema) ColumnByIndex(idx int) ColumnSchema {
	return s.columns[idx]
}

// ColumnByID returns the column with the given stable id.
func (s *Schema) ColumnByID(id int32) (ColumnSchema, error) {
	idx, ok := s.indexByID[id]
	if !ok {
		return ColumnSchema{}, fmt.Errorf("types: no column with id %d", id)
	}
	return s.columns[idx], nil
}

// ColumnIndexByID returns the position of the column with the given id.
func (s *Schema) ColumnIndexByID(id int32) (int, error) {
	idx, ok := s.indexByID[id]
	if !ok {
		return 0, fmt.Errorf("types: no column with id %d", id)
	}
	return idx, nil
}

// ColumnIndexByName returns the position of the named column.
func (s *Schema) ColumnIndexByName(name string) (int, error) {
	idx, ok := s.indexByName[name]
	if !ok {
		return 0, fmt.Errorf("types: no column named %q", name)
	}
	return idx, nil
}

// NewPartialRow returns an empty partial row over this schema.
func (s *Schema) NewPartialRow() *PartialRow {
	return &PartialRow{
		schema: s,
		values: make([][]byte, len(s.columns)),
		isSet:  make([]bool, len(s.columns)),
	}
}

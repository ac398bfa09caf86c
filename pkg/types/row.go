package types

import (
	"encoding/binary"
	"fmt"
	"math"
)

// PartialRow holds values for a subset of a schema's columns in their
// canonical representation. The pruner uses partial rows as scratch space
// when translating predicates into partition keys; only the columns named
// by a hash or range schema are ever set.
type PartialRow struct {
	schema *Schema
	values [][]byte
	isSet  []bool
}

// Schema returns the schema this row belongs to.
func (r *PartialRow) Schema() *Schema {
	return r.schema
}

// IsSet reports whether the column at idx has a value.
func (r *PartialRow) IsSet(idx int) bool {
	return r.isSet[idx]
}

// Raw returns the canonical bytes of the column at idx, or nil when unset.
func (r *PartialRow) Raw(idx int) []byte {
	return r.values[idx]
}

// SetRaw sets the column at idx from canonical bytes. Fixed-width columns
// must receive exactly their width.
func (r *PartialRow) SetRaw(idx int, raw []byte) error {
	col := r.schema.ColumnByIndex(idx)
	if size := col.Type.Size(); size != 0 && len(raw) != size {
		return fmt.Errorf("types: column %q expects %d bytes, got %d", col.Name, size, len(raw))
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	r.values[idx] = cp
	r.isSet[idx] = true
	return nil
}

// Set assigns a typed Go value to the column at idx.
func (r *PartialRow) Set(idx int, v interface{}) error {
	col := r.schema.ColumnByIndex(idx)
	raw, err := canonicalValue(col.Type, v)
	if err != nil {
		return fmt.Errorf("types: column %q: %w", col.Name, err)
	}
	r.values[idx] = raw
	r.isSet[idx] = true
	return nil
}

// SetByName assigns a typed Go value to the named column.
func (r *PartialRow) SetByName(name string, v interface{}) error {
	idx, err := r.schema.ColumnIndexByName(name)
	if err != nil {
		return err
	}
	return r.Set(idx, v)
}

// SetMin sets the column at idx to the minimum value of its type: the most
// negative integer, false, negative infinity, or the empty string.
func (r *PartialRow) SetMin(idx int) {
	col := r.schema.ColumnByIndex(idx)
	switch col.Type {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		min, _ := intTypeRange(col.Type)
		r.values[idx] = encodeInt(col.Type, min)
	case TypeBool:
		r.values[idx] = []byte{0}
	case TypeFloat32:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(math.Inf(-1))))
		r.values[idx] = buf
	case TypeFloat64:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(math.Inf(-1)))
		r.values[idx] = buf
	default:
		r.values[idx] = []byte{}
	}
	r.isSet[idx] = true
}

// IncrementColumn replaces the column's value with its immediate successor.
// Integers and booleans wrap to the type minimum on overflow, floats step to
// the next representable value toward positive infinity, and variable-length
// values append a 0x00 byte (the smallest strictly greater value).
//
// Returns true when the new value is strictly greater than the old one, and
// false when the old value was the type maximum: integers and booleans then
// wrap, while a float at positive infinity is left unchanged.
func (r *PartialRow) IncrementColumn(idx int) bool {
	col := r.schema.ColumnByIndex(idx)
	raw := r.values[idx]

	switch col.Type {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		v := decodeInt(col.Type, raw)
		min, max := intTypeRange(col.Type)
		if v == max {
			r.values[idx] = encodeInt(col.Type, min)
			return false
		}
		r.values[idx] = encodeInt(col.Type, v+1)
		return true
	case TypeBool:
		if raw[0] != 0 {
			r.values[idx] = []byte{0}
			return false
		}
		r.values[idx] = []byte{1}
		return true
	case TypeFloat32:
		v := math.Float32frombits(binary.LittleEndian.Uint32(raw))
		next := math.Nextafter32(v, float32(math.Inf(1)))
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(next))
		r.values[idx] = buf
		return next > v
	case TypeFloat64:
		v := math.Float64frombits(binary.LittleEndian.Uint64(raw))
		next := math.Nextafter(v, math.Inf(1))
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(next))
		r.values[idx] = buf
		return next > v
	default:
		r.values[idx] = append(raw, 0x00)
		return true
	}
}

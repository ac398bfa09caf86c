// Package types provides the core data model shared by the client:
// column types, schemas, partial rows, partition schemas, and the
// simplified predicates consumed by the partition pruner.
package types

import "fmt"

// ColumnType identifies the physical type of a column.
type ColumnType int

const (
	// TypeInt8 is a signed 8-bit integer.
	TypeInt8 ColumnType = iota

	// TypeInt16 is a signed 16-bit integer.
	TypeInt16

	// TypeInt32 is a signed 32-bit integer.
	TypeInt32

	// TypeInt64 is a signed 64-bit integer.
	TypeInt64

	// TypeBool is a boolean, stored as a single byte.
	TypeBool

	// TypeFloat32 is an IEEE-754 single-precision float.
	TypeFloat32

	// TypeFloat64 is an IEEE-754 double-precision float.
	TypeFloat64

	// TypeString is a variable-length UTF-8 string.
	TypeString

	// TypeBinary is a variable-length byte string.
	TypeBinary
)

// String returns the descriptor name of the type.
func (t ColumnType) String() string {
	switch t {
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeBool:
		return "bool"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeString:
		return "string"
	case TypeBinary:
		return "binary"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// ParseColumnType parses a descriptor type name into a ColumnType.
func ParseColumnType(name string) (ColumnType, error) {
	switch name {
	case "int8":
		return TypeInt8, nil
	case "int16":
		return TypeInt16, nil
	case "int32":
		return TypeInt32, nil
	case "int64":
		return TypeInt64, nil
	case "bool":
		return TypeBool, nil
	case "float32", "float":
		return TypeFloat32, nil
	case "float64", "double":
		return TypeFloat64, nil
	case "string":
		return TypeString, nil
	case "binary":
		return TypeBinary, nil
	default:
		return 0, fmt.Errorf("types: unknown column type %q", name)
	}
}

// Size returns the canonical width in bytes of a fixed-width type,
// or 0 for variable-length types.
func (t ColumnType) Size() int {
	switch t {
	case TypeInt8, TypeBool:
		return 1
	case TypeInt16:
		return 2
	case TypeInt32, TypeFloat32:
		return 4
	case TypeInt64, TypeFloat64:
		return 8
	default:
		return 0
	}
}

// IsVarLen reports whether values of the type are variable-length.
func (t ColumnType) IsVarLen() bool {
	return t == TypeString || t == TypeBinary
}

// ColumnSchema describes a single column of a table schema.
type ColumnSchema struct {
	// Name is the column name, unique within the schema
	Name string `json:"name"`

	// Type is the physical column type
	Type ColumnType `json:"type"`

	// Nullable indicates whether the column admits NULL values.
	// Primary key columns are never nullable.
	Nullable bool `json:"nullable"`

	// ID is the stable numeric id of the column. IDs survive schema
	// changes; positional indexes do not.
	ID int32 `json:"id"`
}

package types

import (
	"encoding/binary"
	"fmt"
	"math"
)

// canonicalValue converts a typed Go value into the canonical row
// representation for the given column type: little-endian two's complement
// for integers, a single 0/1 byte for booleans, little-endian IEEE-754 bits
// for floats, and raw bytes for variable-length types.
//
// Integer columns accept any signed Go integer kind (int, int8, int16,
// int32, int64) as long as the value fits the column width; unsigned kinds
// are rejected.
func canonicalValue(t ColumnType, v interface{}) ([]byte, error) {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		i, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		if err := checkIntRange(t, i); err != nil {
			return nil, err
		}
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(i))
		return buf[:t.Size()], nil
	case TypeBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("types: expected bool, got %T", v)
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case TypeFloat32:
		f, err := toFloat64(v)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(f)))
		return buf, nil
	case TypeFloat64:
		f, err := toFloat64(v)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(f))
		return buf, nil
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("types: expected string, got %T", v)
		}
		return []byte(s), nil
	case TypeBinary:
		b, ok := v.([]byte)
		if !ok {
			return nil, fmt.Errorf("types: expected []byte, got %T", v)
		}
		cp := make([]byte, len(b))
		copy(cp, b)
		return cp, nil
	default:
		return nil, fmt.Errorf("types: unsupported column type %s", t)
	}
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("types: expected integer, got %T", v)
	}
}

func toFloat64(v interface{}) (float64, error) {
	switch f := v.(type) {
	case float32:
		return float64(f), nil
	case float64:
		return f, nil
	default:
		return 0, fmt.Errorf("types: expected float, got %T", v)
	}
}

func checkIntRange(t ColumnType, v int64) error {
	min, max := intTypeRange(t)
	if v < min || v > max {
		return fmt.Errorf("types: value %d out of range for %s", v, t)
	}
	return nil
}

// intTypeRange returns the inclusive value range of a signed integer type.
func intTypeRange(t ColumnType) (min, max int64) {
	switch t {
	case TypeInt8:
		return math.MinInt8, math.MaxInt8
	case TypeInt16:
		return math.MinInt16, math.MaxInt16
	case TypeInt32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

// decodeInt reads a canonical little-endian integer value, sign-extending
// to int64.
func decodeInt(t ColumnType, raw []byte) int64 {
	switch t {
	case TypeInt8:
		return int64(int8(raw[0]))
	case TypeInt16:
		return int64(int16(binary.LittleEndian.Uint16(raw)))
	case TypeInt32:
		return int64(int32(binary.LittleEndian.Uint32(raw)))
	default:
		return int64(binary.LittleEndian.Uint64(raw))
	}
}

// decodeFloat reads a canonical little-endian float value as float64.
func decodeFloat(t ColumnType, raw []byte) float64 {
	if t == TypeFloat32 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(raw)))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(raw))
}

// encodeInt writes v back into canonical form for the given width.
func encodeInt(t ColumnType, v int64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	return buf[:t.Size()]
}

// Package key implements the order-preserving partition key encoding and
// the hash bucketing used to locate tablets. The byte layout is
// wire-visible: the server addresses tablets with the same bytes, so the
// encoding here must reproduce it exactly.
package key

import (
	"encoding/binary"
	"fmt"

	"github.com/ramsamdam/kudu/pkg/types"
)

// EncodeColumn appends the order-preserving encoding of the column at idx
// to buf and returns the extended buffer.
//
// Signed integers are written big-endian with the sign bit flipped, so the
// byte order matches the numeric order. Booleans are a single byte. Floats
// are IEEE-754 big-endian with a sign-magnitude adjustment: non-negative
// values get the sign bit set, negative values are fully complemented.
// Variable-length values are written raw when the column is the last one in
// the key; otherwise 0x00 bytes are escaped as 0x00 0x01 and the value is
// terminated with 0x00 0x00.
func EncodeColumn(buf []byte, row *types.PartialRow, idx int, isLast bool) ([]byte, error) {
	col := row.Schema().ColumnByIndex(idx)
	if !row.IsSet(idx) {
		return nil, fmt.Errorf("key: column %q has no value to encode", col.Name)
	}
	raw := row.Raw(idx)

	switch col.Type {
	case types.TypeInt8:
		return append(buf, raw[0]^0x80), nil
	case types.TypeInt16:
		v := binary.LittleEndian.Uint16(raw)
		return binary.BigEndian.AppendUint16(buf, v^0x8000), nil
	case types.TypeInt32:
		v := binary.LittleEndian.Uint32(raw)
		return binary.BigEndian.AppendUint32(buf, v^0x80000000), nil
	case types.TypeInt64:
		v := binary.LittleEndian.Uint64(raw)
		return binary.BigEndian.AppendUint64(buf, v^0x8000000000000000), nil
	case types.TypeBool:
		return append(buf, raw[0]), nil
	case types.TypeFloat32:
		bits := binary.LittleEndian.Uint32(raw)
		if bits&0x80000000 != 0 {
			bits = ^bits
		} else {
			bits |= 0x80000000
		}
		return binary.BigEndian.AppendUint32(buf, bits), nil
	case types.TypeFloat64:
		bits := binary.LittleEndian.Uint64(raw)
		if bits&0x8000000000000000 != 0 {
			bits = ^bits
		} else {
			bits |= 0x8000000000000000
		}
		return binary.BigEndian.AppendUint64(buf, bits), nil
	case types.TypeString, types.TypeBinary:
		if isLast {
			return append(buf, raw...), nil
		}
		for _, b := range raw {
			if b == 0x00 {
				buf = append(buf, 0x00, 0x01)
			} else {
				buf = append(buf, b)
			}
		}
		return append(buf, 0x00, 0x00), nil
	default:
		return nil, fmt.Errorf("key: column %q has unencodable type %s", col.Name, col.Type)
	}
}

// EncodeColumns appends the encodings of the columns at the given indexes,
// in order. The final column is encoded unterminated.
func EncodeColumns(buf []byte, row *types.PartialRow, idxs []int) ([]byte, error) {
	var err error
	for i, idx := range idxs {
		buf, err = EncodeColumn(buf, row, idx, i+1 == len(idxs))
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// EncodeRangePartitionKey encodes the range portion of a partition key:
// the columns named by the range schema, in order.
func EncodeRangePartitionKey(row *types.PartialRow, rangeSchema types.RangeSchema) ([]byte, error) {
	idxs, err := idsToIndexes(row.Schema(), rangeSchema.ColumnIDs)
	if err != nil {
		return nil, err
	}
	return EncodeColumns(nil, row, idxs)
}

// EncodePrimaryKey encodes the full primary key of the row.
func EncodePrimaryKey(row *types.PartialRow) ([]byte, error) {
	idxs := make([]int, row.Schema().KeyColumnCount())
	for i := range idxs {
		idxs[i] = i
	}
	return EncodeColumns(nil, row, idxs)
}

// EncodeHashBucket appends a hash bucket index to buf as 4 bytes
// big-endian.
func EncodeHashBucket(buf []byte, bucket int32) []byte {
	return binary.BigEndian.AppendUint32(buf, uint32(bucket))
}

// idsToIndexes maps stable column ids to positional indexes.
func idsToIndexes(schema *types.Schema, ids []int32) ([]int, error) {
	idxs := make([]int, 0, len(ids))
	for _, id := range ids {
		idx, err := schema.ColumnIndexByID(id)
		if err != nil {
			return nil, fmt.Errorf("key: %w", err)
		}
		idxs = append(idxs, idx)
	}
	return idxs, nil
}

package types

import (
	"bytes"
	"math"
	"testing"
)

func oneColumnSchema(t *testing.T, colType ColumnType) *Schema {
	t.Helper()
	schema, err := NewSchema([]ColumnSchema{{Name: "k", Type: colType, ID: 0}}, 1)
	if err != nil {
		t.Fatalf("failed to build schema: %v", err)
	}
	return schema
}

func TestPartialRow_SetMin(t *testing.T) {
	tests := []struct {
		name    string
		colType ColumnType
		want    []byte
	}{
		{"int8", TypeInt8, []byte{0x80}},
		{"int16", TypeInt16, []byte{0x00, 0x80}},
		{"int32", TypeInt32, []byte{0x00, 0x00, 0x00, 0x80}},
		{"int64", TypeInt64, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80}},
		{"bool", TypeBool, []byte{0x00}},
		{"string", TypeString, []byte{}},
		{"binary", TypeBinary, []byte{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row := oneColumnSchema(t, tc.colType).NewPartialRow()
			row.SetMin(0)
			if !row.IsSet(0) {
				t.Fatal("SetMin left the column unset")
			}
			if !bytes.Equal(row.Raw(0), tc.want) {
				t.Errorf("got %x, want %x", row.Raw(0), tc.want)
			}
		})
	}
}

func TestPartialRow_SetMinFloat(t *testing.T) {
	row := oneColumnSchema(t, TypeFloat64).NewPartialRow()
	row.SetMin(0)
	if got := decodeFloat(TypeFloat64, row.Raw(0)); !math.IsInf(got, -1) {
		t.Errorf("got %g, want -Inf", got)
	}
}

func TestPartialRow_IncrementInteger(t *testing.T) {
	row := oneColumnSchema(t, TypeInt32).NewPartialRow()
	if err := row.Set(0, int32(41)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !row.IncrementColumn(0) {
		t.Fatal("increment of a non-maximal value reported overflow")
	}
	if got := decodeInt(TypeInt32, row.Raw(0)); got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestPartialRow_IncrementMaxWrapsToMin(t *testing.T) {
	tests := []struct {
		name    string
		colType ColumnType
		max     interface{}
		min     int64
	}{
		{"int8", TypeInt8, int8(math.MaxInt8), math.MinInt8},
		{"int16", TypeInt16, int16(math.MaxInt16), math.MinInt16},
		{"int32", TypeInt32, int32(math.MaxInt32), math.MinInt32},
		{"int64", TypeInt64, int64(math.MaxInt64), math.MinInt64},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row := oneColumnSchema(t, tc.colType).NewPartialRow()
			if err := row.Set(0, tc.max); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if row.IncrementColumn(0) {
				t.Error("increment of the maximum value did not report overflow")
			}
			if got := decodeInt(tc.colType, row.Raw(0)); got != tc.min {
				t.Errorf("wrapped to %d, want %d", got, tc.min)
			}
		})
	}
}

func TestPartialRow_IncrementBool(t *testing.T) {
	row := oneColumnSchema(t, TypeBool).NewPartialRow()
	if err := row.Set(0, false); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !row.IncrementColumn(0) {
		t.Error("false -> true reported overflow")
	}
	if row.IncrementColumn(0) {
		t.Error("true had a successor")
	}
	if row.Raw(0)[0] != 0 {
		t.Error("true did not wrap to false")
	}
}

func TestPartialRow_IncrementFloat(t *testing.T) {
	row := oneColumnSchema(t, TypeFloat64).NewPartialRow()
	if err := row.Set(0, 1.0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !row.IncrementColumn(0) {
		t.Error("increment of a finite float reported overflow")
	}
	if got := decodeFloat(TypeFloat64, row.Raw(0)); got <= 1.0 {
		t.Errorf("got %g, want the next value above 1.0", got)
	}

	if err := row.Set(0, math.Inf(1)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if row.IncrementColumn(0) {
		t.Error("positive infinity had a successor")
	}
}

func TestPartialRow_IncrementString(t *testing.T) {
	row := oneColumnSchema(t, TypeString).NewPartialRow()
	if err := row.Set(0, "abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !row.IncrementColumn(0) {
		t.Error("string increment reported overflow")
	}
	if want := []byte("abc\x00"); !bytes.Equal(row.Raw(0), want) {
		t.Errorf("got %x, want %x", row.Raw(0), want)
	}
}

func TestPartialRow_SetRawValidatesWidth(t *testing.T) {
	row := oneColumnSchema(t, TypeInt32).NewPartialRow()
	if err := row.SetRaw(0, []byte{0x01, 0x02}); err == nil {
		t.Error("expected an error for a short fixed-width value")
	}
	if err := row.SetRaw(0, []byte{0x01, 0x02, 0x03, 0x04}); err != nil {
		t.Errorf("SetRaw rejected a correctly sized value: %v", err)
	}
}

func TestPartialRow_SetOutOfRange(t *testing.T) {
	row := oneColumnSchema(t, TypeInt8).NewPartialRow()
	if err := row.Set(0, int64(1000)); err == nil {
		t.Error("expected an error setting 1000 into an int8 column")
	}
}

func TestPartialRow_SetTypeMismatch(t *testing.T) {
	row := oneColumnSchema(t, TypeString).NewPartialRow()
	if err := row.Set(0, int64(5)); err == nil {
		t.Error("expected an error setting an integer into a string column")
	}
}

package oratype

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/oraq/pkg/dpi"
)

func TestVarParamsBufferShapes(t *testing.T) {
	tests := []struct {
		name        string
		typ         OracleType
		wantWire    dpi.OracleTypeNum
		wantNative  dpi.NativeTypeNum
		wantSize    uint32
		sizeIsBytes bool
	}{
		{"varchar2", Varchar2(200), dpi.TypeVarchar, dpi.NativeBytes, 200, true},
		{"nvarchar2 counts chars", Nvarchar2(50), dpi.TypeNvarchar, dpi.NativeBytes, 50, false},
		{"raw", Raw(16), dpi.TypeRaw, dpi.NativeBytes, 16, true},
		{"number is decimal text", Number(38, 10), dpi.TypeNumber, dpi.NativeBytes, numberTextBufferBytes, true},
		{"binary double", OracleType{Kind: KindBinaryDouble}, dpi.TypeNativeDouble, dpi.NativeDouble, 0, false},
		{"date", Date(), dpi.TypeDate, dpi.NativeTimestamp, 0, false},
		{"timestamp tz", TimestampTZ(9), dpi.TypeTimestampTZ, dpi.NativeTimestamp, 0, false},
		{"interval ds", IntervalDSType(9, 9), dpi.TypeIntervalDS, dpi.NativeIntervalDS, 0, false},
		{"clob", OracleType{Kind: KindCLOB}, dpi.TypeCLOB, dpi.NativeLOB, 0, false},
		{"boolean", OracleType{Kind: KindBoolean}, dpi.TypeBoolean, dpi.NativeBoolean, 0, false},
		{"int64", Int64Type(), dpi.TypeNativeInt, dpi.NativeInt64, 0, false},
		{"uint64", UInt64Type(), dpi.TypeNativeUint, dpi.NativeUint64, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire, native, size, sizeIsBytes, err := tt.typ.VarParams()
			require.NoError(t, err)
			assert.Equal(t, tt.wantWire, wire)
			assert.Equal(t, tt.wantNative, native)
			assert.Equal(t, tt.wantSize, size)
			assert.Equal(t, tt.sizeIsBytes, sizeIsBytes)
		})
	}
}

func TestVarParamsRejectsUnbufferableType(t *testing.T) {
	_, _, _, _, err := OracleType{Kind: KindNone}.VarParams()
	require.Error(t, err)
}

func TestFetchTypeIntegerFastPath(t *testing.T) {
	// Scale-zero NUMBER up to 18 digits fetches as int64.
	assert.Equal(t, Int64Type(), Number(5, 0).FetchType())
	assert.Equal(t, Int64Type(), Number(18, 0).FetchType())

	// Everything else stays decimal text.
	assert.Equal(t, Number(19, 0), Number(19, 0).FetchType())
	assert.Equal(t, Number(38, 0), Number(38, 0).FetchType())
	assert.Equal(t, Number(10, 2), Number(10, 2).FetchType())
	assert.Equal(t, Number(0, 0), Number(0, 0).FetchType())
	assert.Equal(t, Number(0, -127), Number(0, -127).FetchType())
}

func TestFetchTypeNonNumberUnchanged(t *testing.T) {
	assert.Equal(t, Varchar2(10), Varchar2(10).FetchType())
	assert.Equal(t, Date(), Date().FetchType())
}

func TestInferFromGoValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  OracleType
	}{
		{"string", "hello", Varchar2(5)},
		{"empty string gets a one byte buffer", "", Varchar2(1)},
		{"int", 42, Int64Type()},
		{"int64", int64(-1), Int64Type()},
		{"uint64", uint64(1), UInt64Type()},
		{"float32", float32(1.5), OracleType{Kind: KindBinaryFloat}},
		{"float64", 1.5, OracleType{Kind: KindBinaryDouble}},
		{"bytes", []byte{1, 2, 3}, Raw(3)},
		{"bool", true, OracleType{Kind: KindBoolean}},
		{"time", time.Now(), TimestampTZ(9)},
		{"timestamp", NewTimestamp(2024, 1, 1, 0, 0, 0, 0), TimestampTZ(9)},
		{"interval ds", NewIntervalDS(1, 0, 0, 0, 0), IntervalDSType(9, 9)},
		{"duration", time.Minute, IntervalDSType(9, 9)},
		{"interval ym", NewIntervalYM(1, 2), IntervalYMType(9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InferFromGoValue(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInferFromGoValueOversizedStringBecomesLong(t *testing.T) {
	got, err := InferFromGoValue(strings.Repeat("x", MaxVarcharBytes+1))
	require.NoError(t, err)
	assert.Equal(t, KindLong, got.Kind)
}

func TestInferFromGoValueRejectsNilAndUnknown(t *testing.T) {
	_, err := InferFromGoValue(nil)
	require.Error(t, err)

	_, err = InferFromGoValue(struct{}{})
	require.Error(t, err)
}

package oratype

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/oraq/pkg/dpi"
)

// numberTextBufferBytes holds the longest decimal text a NUMBER can
// produce: 38 significant digits, sign, decimal point and exponent.
const numberTextBufferBytes = 48

// VarParams reports how to create a variable buffer for this type: the
// wire type number, the native in-memory representation, and the buffer
// size per element. NUMBER deliberately uses decimal text, never a binary
// double, so values round-trip without precision loss; callers convert
// from that text on demand.
func (t OracleType) VarParams() (dpi.OracleTypeNum, dpi.NativeTypeNum, uint32, bool, error) {
	switch t.Kind {
	case KindVarchar2:
		return dpi.TypeVarchar, dpi.NativeBytes, t.Size, true, nil
	case KindNvarchar2:
		return dpi.TypeNvarchar, dpi.NativeBytes, t.Size, false, nil
	case KindChar:
		return dpi.TypeChar, dpi.NativeBytes, t.Size, true, nil
	case KindNChar:
		return dpi.TypeNchar, dpi.NativeBytes, t.Size, false, nil
	case KindRowid:
		return dpi.TypeRowid, dpi.NativeRowid, 0, false, nil
	case KindRaw:
		return dpi.TypeRaw, dpi.NativeBytes, t.Size, true, nil
	case KindBinaryFloat:
		return dpi.TypeNativeFloat, dpi.NativeFloat, 0, false, nil
	case KindBinaryDouble:
		return dpi.TypeNativeDouble, dpi.NativeDouble, 0, false, nil
	case KindNumber:
		return dpi.TypeNumber, dpi.NativeBytes, numberTextBufferBytes, true, nil
	case KindDate:
		return dpi.TypeDate, dpi.NativeTimestamp, 0, false, nil
	case KindTimestamp:
		return dpi.TypeTimestamp, dpi.NativeTimestamp, 0, false, nil
	case KindTimestampTZ:
		return dpi.TypeTimestampTZ, dpi.NativeTimestamp, 0, false, nil
	case KindTimestampLTZ:
		return dpi.TypeTimestampLTZ, dpi.NativeTimestamp, 0, false, nil
	case KindIntervalDS:
		return dpi.TypeIntervalDS, dpi.NativeIntervalDS, 0, false, nil
	case KindIntervalYM:
		return dpi.TypeIntervalYM, dpi.NativeIntervalYM, 0, false, nil
	case KindCLOB:
		return dpi.TypeCLOB, dpi.NativeLOB, 0, false, nil
	case KindNCLOB:
		return dpi.TypeNCLOB, dpi.NativeLOB, 0, false, nil
	case KindBLOB:
		return dpi.TypeBLOB, dpi.NativeLOB, 0, false, nil
	case KindBFILE:
		return dpi.TypeBFILE, dpi.NativeLOB, 0, false, nil
	case KindRefCursor:
		return dpi.TypeStmt, dpi.NativeStmt, 0, false, nil
	case KindBoolean:
		return dpi.TypeBoolean, dpi.NativeBoolean, 0, false, nil
	case KindObject, KindCollection:
		return dpi.TypeObject, dpi.NativeObject, 0, false, nil
	case KindLong:
		return dpi.TypeLongVarchar, dpi.NativeBytes, 0, false, nil
	case KindLongRaw:
		return dpi.TypeLongRaw, dpi.NativeBytes, 0, false, nil
	case KindJSON:
		return dpi.TypeJSON, dpi.NativeJSON, 0, false, nil
	case KindVector:
		return dpi.TypeVector, dpi.NativeVector, 0, false, nil
	case KindInt64:
		return dpi.TypeNativeInt, dpi.NativeInt64, 0, false, nil
	case KindUInt64:
		return dpi.TypeNativeUint, dpi.NativeUint64, 0, false, nil
	default:
		return 0, 0, 0, false, fmt.Errorf("cannot create a variable buffer for %s", t)
	}
}

// NativeType reports the in-memory representation a buffer for this type
// uses.
func (t OracleType) NativeType() (dpi.NativeTypeNum, error) {
	_, native, _, _, err := t.VarParams()
	return native, err
}

// FetchType reports the type a result column of this shape is defined as
// when the caller does not define it explicitly. Scale-zero NUMBER
// columns whose precision fits an int64 take the integer fast path;
// every other NUMBER shape stays decimal text.
func (t OracleType) FetchType() OracleType {
	if t.Kind == KindNumber && t.Scale == 0 && t.Precision > 0 && t.Precision <= MaxInt64Precision {
		return Int64Type()
	}
	return t
}

// InferFromGoValue selects the OracleType for an ad hoc bind where no
// column metadata exists: the host value's own type decides. A nil value
// carries no type and must be bound with an explicit OracleType instead.
func InferFromGoValue(v any) (OracleType, error) {
	switch val := v.(type) {
	case string:
		size := uint32(len(val))
		if size == 0 {
			size = 1
		}
		if size > MaxVarcharBytes {
			return OracleType{Kind: KindLong}, nil
		}
		return Varchar2(size), nil
	case int, int8, int16, int32, int64:
		return Int64Type(), nil
	case uint, uint8, uint16, uint32, uint64:
		return UInt64Type(), nil
	case float32:
		return OracleType{Kind: KindBinaryFloat}, nil
	case float64:
		return OracleType{Kind: KindBinaryDouble}, nil
	case []byte:
		size := uint32(len(val))
		if size == 0 {
			size = 1
		}
		return Raw(size), nil
	case bool:
		return OracleType{Kind: KindBoolean}, nil
	case time.Time:
		return TimestampTZ(9), nil
	case Timestamp:
		return TimestampTZ(9), nil
	case IntervalDS:
		return IntervalDSType(9, 9), nil
	case IntervalYM:
		return IntervalYMType(9), nil
	case time.Duration:
		return IntervalDSType(9, 9), nil
	case nil:
		return OracleType{}, fmt.Errorf("cannot infer an oracle type from nil; bind null with an explicit type")
	default:
		return OracleType{}, fmt.Errorf("cannot infer an oracle type from %T", v)
	}
}

// Package oratype defines the closed set of Oracle wire types the driver
// understands, the rules that select a native buffer shape for each of
// them, and the Oracle-specific value types (Timestamp, IntervalDS,
// IntervalYM) that have no exact Go counterpart.
package oratype

import (
	"fmt"

	"github.com/leapstack-labs/oraq/pkg/dpi"
)

// MaxVarcharBytes is the driver-imposed cap on variable character
// buffers. Larger values must go through a LOB.
const MaxVarcharBytes = 32767

// MaxInt64Precision is the largest NUMBER precision that is guaranteed to
// fit a 64-bit integer. Scale-zero NUMBER columns at or below it are
// fetched as int64; everything else is fetched as decimal text so no
// precision is lost.
const MaxInt64Precision = 18

// TypeKind enumerates the Oracle type variants.
type TypeKind uint32

// Oracle type kinds.
const (
	KindNone TypeKind = iota
	KindVarchar2
	KindNvarchar2
	KindChar
	KindNChar
	KindRowid
	KindRaw
	KindBinaryFloat
	KindBinaryDouble
	KindNumber
	KindDate
	KindTimestamp
	KindTimestampTZ
	KindTimestampLTZ
	KindIntervalDS
	KindIntervalYM
	KindCLOB
	KindNCLOB
	KindBLOB
	KindBFILE
	KindRefCursor
	KindBoolean
	KindObject
	KindCollection
	KindLong
	KindLongRaw
	KindXMLType
	KindJSON
	KindVector

	// Internal kinds used to bind and define values as native integers.
	// They are never reported by the engine.
	KindInt64
	KindUInt64
)

// VectorFormat is the element representation of a VECTOR column.
type VectorFormat uint8

// Vector element formats.
const (
	VectorFormatFloat32 VectorFormat = iota + 1
	VectorFormatFloat64
	VectorFormatInt8
	VectorFormatBinary
)

// OracleType describes one wire type variant together with the parameters
// that shape its buffer: length for character and raw data, precision and
// scale for NUMBER, fractional-second precision for the timestamp family,
// lead-field precision for intervals.
//
// Once an OracleType has been used to create a variable buffer, that
// buffer's shape is fixed; binding a value that needs a different shape
// allocates a new buffer.
type OracleType struct {
	Kind TypeKind

	// Size is the length in bytes (or characters for the N* types) for
	// character and raw variants.
	Size uint32
	// Precision and Scale apply to NUMBER; Precision also carries the
	// interval lead-field precision.
	Precision int16
	Scale     int8
	// FsPrecision is the fractional-second precision of the timestamp
	// and day-to-second interval variants.
	FsPrecision uint8

	// ObjectTypeName qualifies Object and Collection variants.
	ObjectTypeName string
	// VectorDimension and VectorFormat qualify the Vector variant.
	VectorDimension uint32
	VectorFormat    VectorFormat
}

// Varchar2 returns a VARCHAR2(size) type.
func Varchar2(size uint32) OracleType { return OracleType{Kind: KindVarchar2, Size: size} }

// Nvarchar2 returns an NVARCHAR2(size) type.
func Nvarchar2(size uint32) OracleType { return OracleType{Kind: KindNvarchar2, Size: size} }

// Char returns a CHAR(size) type.
func Char(size uint32) OracleType { return OracleType{Kind: KindChar, Size: size} }

// NChar returns an NCHAR(size) type.
func NChar(size uint32) OracleType { return OracleType{Kind: KindNChar, Size: size} }

// Raw returns a RAW(size) type.
func Raw(size uint32) OracleType { return OracleType{Kind: KindRaw, Size: size} }

// Number returns a NUMBER(precision, scale) type.
func Number(precision int16, scale int8) OracleType {
	return OracleType{Kind: KindNumber, Precision: precision, Scale: scale}
}

// Date returns a DATE type.
func Date() OracleType { return OracleType{Kind: KindDate} }

// TimestampType returns a TIMESTAMP(fsprec) type.
func TimestampType(fsprec uint8) OracleType {
	return OracleType{Kind: KindTimestamp, FsPrecision: fsprec}
}

// TimestampTZ returns a TIMESTAMP(fsprec) WITH TIME ZONE type.
func TimestampTZ(fsprec uint8) OracleType {
	return OracleType{Kind: KindTimestampTZ, FsPrecision: fsprec}
}

// TimestampLTZ returns a TIMESTAMP(fsprec) WITH LOCAL TIME ZONE type.
func TimestampLTZ(fsprec uint8) OracleType {
	return OracleType{Kind: KindTimestampLTZ, FsPrecision: fsprec}
}

// IntervalDSType returns an INTERVAL DAY(lfprec) TO SECOND(fsprec) type.
func IntervalDSType(lfprec int16, fsprec uint8) OracleType {
	return OracleType{Kind: KindIntervalDS, Precision: lfprec, FsPrecision: fsprec}
}

// IntervalYMType returns an INTERVAL YEAR(lfprec) TO MONTH type.
func IntervalYMType(lfprec int16) OracleType {
	return OracleType{Kind: KindIntervalYM, Precision: lfprec}
}

// Vector returns a VECTOR(dimension, format) type.
func Vector(dimension uint32, format VectorFormat) OracleType {
	return OracleType{Kind: KindVector, VectorDimension: dimension, VectorFormat: format}
}

// Int64Type returns the internal type used to bind and define 64-bit
// integers.
func Int64Type() OracleType { return OracleType{Kind: KindInt64} }

// UInt64Type returns the internal type used to bind and define unsigned
// 64-bit integers.
func UInt64Type() OracleType { return OracleType{Kind: KindUInt64} }

// String renders the type in Oracle DDL spelling.
func (t OracleType) String() string {
	switch t.Kind {
	case KindNone:
		return "?"
	case KindVarchar2:
		return fmt.Sprintf("VARCHAR2(%d)", t.Size)
	case KindNvarchar2:
		return fmt.Sprintf("NVARCHAR2(%d)", t.Size)
	case KindChar:
		return fmt.Sprintf("CHAR(%d)", t.Size)
	case KindNChar:
		return fmt.Sprintf("NCHAR(%d)", t.Size)
	case KindRowid:
		return "ROWID"
	case KindRaw:
		return fmt.Sprintf("RAW(%d)", t.Size)
	case KindBinaryFloat:
		return "BINARY_FLOAT"
	case KindBinaryDouble:
		return "BINARY_DOUBLE"
	case KindNumber:
		switch {
		case t.Scale == -127 && t.Precision == 0:
			return "NUMBER"
		case t.Scale == -127 && t.Precision == 126:
			return "FLOAT"
		case t.Scale == -127:
			return fmt.Sprintf("FLOAT(%d)", t.Precision)
		case t.Scale == 0 && t.Precision == 0:
			return "NUMBER"
		case t.Scale == 0:
			return fmt.Sprintf("NUMBER(%d)", t.Precision)
		default:
			return fmt.Sprintf("NUMBER(%d,%d)", t.Precision, t.Scale)
		}
	case KindDate:
		return "DATE"
	case KindTimestamp:
		if t.FsPrecision == 6 {
			return "TIMESTAMP"
		}
		return fmt.Sprintf("TIMESTAMP(%d)", t.FsPrecision)
	case KindTimestampTZ:
		if t.FsPrecision == 6 {
			return "TIMESTAMP WITH TIME ZONE"
		}
		return fmt.Sprintf("TIMESTAMP(%d) WITH TIME ZONE", t.FsPrecision)
	case KindTimestampLTZ:
		if t.FsPrecision == 6 {
			return "TIMESTAMP WITH LOCAL TIME ZONE"
		}
		return fmt.Sprintf("TIMESTAMP(%d) WITH LOCAL TIME ZONE", t.FsPrecision)
	case KindIntervalDS:
		if t.Precision == 2 && t.FsPrecision == 6 {
			return "INTERVAL DAY TO SECOND"
		}
		return fmt.Sprintf("INTERVAL DAY(%d) TO SECOND(%d)", t.Precision, t.FsPrecision)
	case KindIntervalYM:
		if t.Precision == 2 {
			return "INTERVAL YEAR TO MONTH"
		}
		return fmt.Sprintf("INTERVAL YEAR(%d) TO MONTH", t.Precision)
	case KindCLOB:
		return "CLOB"
	case KindNCLOB:
		return "NCLOB"
	case KindBLOB:
		return "BLOB"
	case KindBFILE:
		return "BFILE"
	case KindRefCursor:
		return "REF CURSOR"
	case KindBoolean:
		return "BOOLEAN"
	case KindObject:
		if t.ObjectTypeName != "" {
			return t.ObjectTypeName
		}
		return "OBJECT"
	case KindCollection:
		if t.ObjectTypeName != "" {
			return t.ObjectTypeName
		}
		return "COLLECTION"
	case KindLong:
		return "LONG"
	case KindLongRaw:
		return "LONG RAW"
	case KindXMLType:
		return "XMLTYPE"
	case KindJSON:
		return "JSON"
	case KindVector:
		return fmt.Sprintf("VECTOR(%d, %s)", t.VectorDimension, t.VectorFormat)
	case KindInt64:
		return "INT64"
	case KindUInt64:
		return "UINT64"
	default:
		return fmt.Sprintf("TYPE(%d)", uint32(t.Kind))
	}
}

// String implements fmt.Stringer.
func (f VectorFormat) String() string {
	switch f {
	case VectorFormatFloat32:
		return "FLOAT32"
	case VectorFormatFloat64:
		return "FLOAT64"
	case VectorFormatInt8:
		return "INT8"
	case VectorFormatBinary:
		return "BINARY"
	default:
		return fmt.Sprintf("FORMAT(%d)", uint8(f))
	}
}

// FromColumnInfo maps engine-reported column metadata to an OracleType.
// Unrecognized wire types are an error, never a silent coercion.
func FromColumnInfo(info dpi.ColumnTypeInfo) (OracleType, error) {
	switch info.OracleType {
	case dpi.TypeVarchar:
		return Varchar2(info.DBSizeInBytes), nil
	case dpi.TypeNvarchar:
		return Nvarchar2(info.SizeInChars), nil
	case dpi.TypeChar:
		return Char(info.DBSizeInBytes), nil
	case dpi.TypeNchar:
		return NChar(info.SizeInChars), nil
	case dpi.TypeRowid:
		return OracleType{Kind: KindRowid}, nil
	case dpi.TypeRaw:
		return Raw(info.DBSizeInBytes), nil
	case dpi.TypeNativeFloat:
		return OracleType{Kind: KindBinaryFloat}, nil
	case dpi.TypeNativeDouble:
		return OracleType{Kind: KindBinaryDouble}, nil
	case dpi.TypeNativeInt:
		return Int64Type(), nil
	case dpi.TypeNativeUint:
		return UInt64Type(), nil
	case dpi.TypeNumber:
		return Number(info.Precision, info.Scale), nil
	case dpi.TypeDate:
		return Date(), nil
	case dpi.TypeTimestamp:
		return TimestampType(info.FsPrecision), nil
	case dpi.TypeTimestampTZ:
		return TimestampTZ(info.FsPrecision), nil
	case dpi.TypeTimestampLTZ:
		return TimestampLTZ(info.FsPrecision), nil
	case dpi.TypeIntervalDS:
		return IntervalDSType(info.Precision, info.FsPrecision), nil
	case dpi.TypeIntervalYM:
		return IntervalYMType(info.Precision), nil
	case dpi.TypeCLOB:
		return OracleType{Kind: KindCLOB}, nil
	case dpi.TypeNCLOB:
		return OracleType{Kind: KindNCLOB}, nil
	case dpi.TypeBLOB:
		return OracleType{Kind: KindBLOB}, nil
	case dpi.TypeBFILE:
		return OracleType{Kind: KindBFILE}, nil
	case dpi.TypeStmt:
		return OracleType{Kind: KindRefCursor}, nil
	case dpi.TypeBoolean:
		return OracleType{Kind: KindBoolean}, nil
	case dpi.TypeObject:
		return OracleType{Kind: KindObject, ObjectTypeName: info.ObjectTypeName}, nil
	case dpi.TypeLongVarchar:
		return OracleType{Kind: KindLong}, nil
	case dpi.TypeLongRaw:
		return OracleType{Kind: KindLongRaw}, nil
	case dpi.TypeXMLType:
		return OracleType{Kind: KindXMLType}, nil
	case dpi.TypeJSON:
		return OracleType{Kind: KindJSON}, nil
	case dpi.TypeVector:
		return Vector(info.VectorDimension, VectorFormat(info.VectorFormat)), nil
	default:
		return OracleType{}, fmt.Errorf("unsupported oracle type number %d for column %q", info.OracleType, info.Name)
	}
}

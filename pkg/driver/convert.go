package driver

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/oraq/pkg/dpi"
	"github.com/leapstack-labs/oraq/pkg/oratype"
)

// The conversion matrix is a dispatch on (native tag, requested Go type).
// Decimal text is parsed locale-independently: the period is always the
// decimal separator, whatever the session locale says.

// text returns the cell's byte payload decoded as a string, caching the
// decode for repeated reads.
func (v *Value) text() (string, error) {
	if v.data.NativeType != dpi.NativeBytes {
		return "", v.tagErr("bytes")
	}
	if v.strCache == nil {
		s := string(v.data.Bytes)
		v.strCache = &s
	}
	return *v.strCache, nil
}

func parseIntText(s string, column string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, &Error{Kind: ErrKindOutOfRange,
				Message: fmt.Sprintf("number %q does not fit int64", s), Column: column}
		}
		return 0, &Error{Kind: ErrKindOutOfRange,
			Message: fmt.Sprintf("number %q cannot be read as int64 without losing precision", s), Column: column}
	}
	return n, nil
}

func parseUintText(s string, column string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, &Error{Kind: ErrKindOutOfRange,
				Message: fmt.Sprintf("number %q does not fit uint64", s), Column: column}
		}
		return 0, &Error{Kind: ErrKindOutOfRange,
			Message: fmt.Sprintf("number %q cannot be read as uint64 without losing precision", s), Column: column}
	}
	return n, nil
}

// Int64 converts the cell to int64. Integer-shaped representations
// convert exactly or fail with an out-of-range error; floating
// representations truncate toward zero when they fit.
func (v *Value) Int64() (int64, error) {
	if v.IsNull() {
		return 0, v.nullErr()
	}
	switch v.data.NativeType {
	case dpi.NativeInt64:
		return v.data.Int64, nil
	case dpi.NativeUint64:
		if v.data.Uint64 > math.MaxInt64 {
			return 0, newError(ErrKindOutOfRange, "value %d does not fit int64", v.data.Uint64)
		}
		return int64(v.data.Uint64), nil
	case dpi.NativeFloat:
		return floatToInt64(float64(v.data.Float))
	case dpi.NativeDouble:
		return floatToInt64(v.data.Double)
	case dpi.NativeBytes:
		s, err := v.text()
		if err != nil {
			return 0, err
		}
		return parseIntText(s, "")
	default:
		return 0, v.convErr("int64")
	}
}

// Uint64 converts the cell to uint64.
func (v *Value) Uint64() (uint64, error) {
	if v.IsNull() {
		return 0, v.nullErr()
	}
	switch v.data.NativeType {
	case dpi.NativeInt64:
		if v.data.Int64 < 0 {
			return 0, newError(ErrKindOutOfRange, "value %d does not fit uint64", v.data.Int64)
		}
		return uint64(v.data.Int64), nil
	case dpi.NativeUint64:
		return v.data.Uint64, nil
	case dpi.NativeFloat:
		n, err := floatToInt64(float64(v.data.Float))
		if err != nil || n < 0 {
			return 0, newError(ErrKindOutOfRange, "value %v does not fit uint64", v.data.Float)
		}
		return uint64(n), nil
	case dpi.NativeDouble:
		n, err := floatToInt64(v.data.Double)
		if err != nil || n < 0 {
			return 0, newError(ErrKindOutOfRange, "value %v does not fit uint64", v.data.Double)
		}
		return uint64(n), nil
	case dpi.NativeBytes:
		s, err := v.text()
		if err != nil {
			return 0, err
		}
		return parseUintText(s, "")
	default:
		return 0, v.convErr("uint64")
	}
}

// Float64 converts the cell to float64. Decimal text converts lossily;
// this is the documented exception to the round-trip law.
func (v *Value) Float64() (float64, error) {
	if v.IsNull() {
		return 0, v.nullErr()
	}
	switch v.data.NativeType {
	case dpi.NativeInt64:
		return float64(v.data.Int64), nil
	case dpi.NativeUint64:
		return float64(v.data.Uint64), nil
	case dpi.NativeFloat:
		return float64(v.data.Float), nil
	case dpi.NativeDouble:
		return v.data.Double, nil
	case dpi.NativeBytes:
		s, err := v.text()
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, newError(ErrKindOutOfRange, "number %q cannot be read as float64", s)
		}
		return f, nil
	default:
		return 0, v.convErr("float64")
	}
}

// Float32 converts the cell to float32.
func (v *Value) Float32() (float32, error) {
	f, err := v.Float64()
	if err != nil {
		return 0, err
	}
	if f > math.MaxFloat32 || f < -math.MaxFloat32 {
		return 0, newError(ErrKindOutOfRange, "value %v does not fit float32", f)
	}
	return float32(f), nil
}

// String converts the cell to its text form. Numbers render as exact
// decimal text, raw bytes as upper-case hex, temporal types as Oracle
// literals.
func (v *Value) String() (string, error) {
	if v.IsNull() {
		return "", v.nullErr()
	}
	switch v.data.NativeType {
	case dpi.NativeInt64:
		return strconv.FormatInt(v.data.Int64, 10), nil
	case dpi.NativeUint64:
		return strconv.FormatUint(v.data.Uint64, 10), nil
	case dpi.NativeFloat:
		return strconv.FormatFloat(float64(v.data.Float), 'g', -1, 32), nil
	case dpi.NativeDouble:
		return strconv.FormatFloat(v.data.Double, 'g', -1, 64), nil
	case dpi.NativeBytes:
		if v.oraType.Kind == oratype.KindRaw || v.oraType.Kind == oratype.KindLongRaw {
			return strings.ToUpper(hex.EncodeToString(v.data.Bytes)), nil
		}
		return v.text()
	case dpi.NativeTimestamp:
		return oratype.TimestampFromData(v.data.Timestamp).String(), nil
	case dpi.NativeIntervalDS:
		return oratype.IntervalDSFromData(v.data.IntervalDS).String(), nil
	case dpi.NativeIntervalYM:
		return oratype.IntervalYMFromData(v.data.IntervalYM).String(), nil
	case dpi.NativeBoolean:
		if v.data.Bool {
			return "TRUE", nil
		}
		return "FALSE", nil
	case dpi.NativeLOB:
		b, err := v.lobContents()
		if err != nil {
			return "", err
		}
		if v.oraType.Kind == oratype.KindBLOB || v.oraType.Kind == oratype.KindBFILE {
			return strings.ToUpper(hex.EncodeToString(b)), nil
		}
		return string(b), nil
	default:
		return "", v.convErr("string")
	}
}

// Bytes converts the cell to a byte slice. The result is a copy for
// buffer-backed cells.
func (v *Value) Bytes() ([]byte, error) {
	if v.IsNull() {
		return nil, v.nullErr()
	}
	switch v.data.NativeType {
	case dpi.NativeBytes:
		return append([]byte(nil), v.data.Bytes...), nil
	case dpi.NativeLOB:
		return v.lobContents()
	default:
		return nil, v.convErr("[]byte")
	}
}

// Bool converts the cell to bool. Only the PL/SQL BOOLEAN representation
// converts.
func (v *Value) Bool() (bool, error) {
	if v.IsNull() {
		return false, v.nullErr()
	}
	if v.data.NativeType != dpi.NativeBoolean {
		return false, v.convErr("bool")
	}
	return v.data.Bool, nil
}

// Timestamp converts the cell to an Oracle timestamp value.
func (v *Value) Timestamp() (oratype.Timestamp, error) {
	if v.IsNull() {
		return oratype.Timestamp{}, v.nullErr()
	}
	if v.data.NativeType != dpi.NativeTimestamp {
		return oratype.Timestamp{}, v.convErr("oratype.Timestamp")
	}
	return oratype.TimestampFromData(v.data.Timestamp), nil
}

// Time converts the cell to time.Time.
func (v *Value) Time() (time.Time, error) {
	ts, err := v.Timestamp()
	if err != nil {
		return time.Time{}, err
	}
	return ts.ToTime(), nil
}

// IntervalDS converts the cell to a day-to-second interval.
func (v *Value) IntervalDS() (oratype.IntervalDS, error) {
	if v.IsNull() {
		return oratype.IntervalDS{}, v.nullErr()
	}
	if v.data.NativeType != dpi.NativeIntervalDS {
		return oratype.IntervalDS{}, v.convErr("oratype.IntervalDS")
	}
	return oratype.IntervalDSFromData(v.data.IntervalDS), nil
}

// IntervalYM converts the cell to a year-to-month interval.
func (v *Value) IntervalYM() (oratype.IntervalYM, error) {
	if v.IsNull() {
		return oratype.IntervalYM{}, v.nullErr()
	}
	if v.data.NativeType != dpi.NativeIntervalYM {
		return oratype.IntervalYM{}, v.convErr("oratype.IntervalYM")
	}
	return oratype.IntervalYMFromData(v.data.IntervalYM), nil
}

// Duration converts a day-to-second interval cell to time.Duration.
func (v *Value) Duration() (time.Duration, error) {
	iv, err := v.IntervalDS()
	if err != nil {
		return 0, err
	}
	return iv.ToDuration(), nil
}

// lobContents eagerly materializes a LOB through its locator.
func (v *Value) lobContents() ([]byte, error) {
	if v.data.Locator == nil {
		return nil, v.tagErr("locator")
	}
	size, err := v.api.LobSize(v.data.Locator)
	if err != nil {
		return nil, wrapNative(err, "lob size")
	}
	if size == 0 {
		return []byte{}, nil
	}
	b, err := v.api.LobRead(context.Background(), v.data.Locator, 1, size)
	if err != nil {
		return nil, wrapNative(err, "lob read")
	}
	return b, nil
}

// Scan converts the cell into dest, which must be a pointer. A pointer
// to pointer (or *any) accepts NULL as nil; every other dest fails on a
// null cell.
func (v *Value) Scan(dest any) error {
	switch d := dest.(type) {
	case *int64:
		n, err := v.Int64()
		if err != nil {
			return err
		}
		*d = n
	case *int:
		n, err := v.Int64()
		if err != nil {
			return err
		}
		if n > math.MaxInt || n < math.MinInt {
			return newError(ErrKindOutOfRange, "value %d does not fit int", n)
		}
		*d = int(n)
	case *int32:
		n, err := v.Int64()
		if err != nil {
			return err
		}
		if n > math.MaxInt32 || n < math.MinInt32 {
			return newError(ErrKindOutOfRange, "value %d does not fit int32", n)
		}
		*d = int32(n)
	case *uint64:
		n, err := v.Uint64()
		if err != nil {
			return err
		}
		*d = n
	case *float64:
		f, err := v.Float64()
		if err != nil {
			return err
		}
		*d = f
	case *float32:
		f, err := v.Float32()
		if err != nil {
			return err
		}
		*d = f
	case *string:
		s, err := v.String()
		if err != nil {
			return err
		}
		*d = s
	case *[]byte:
		b, err := v.Bytes()
		if err != nil {
			return err
		}
		*d = b
	case *bool:
		b, err := v.Bool()
		if err != nil {
			return err
		}
		*d = b
	case *time.Time:
		t, err := v.Time()
		if err != nil {
			return err
		}
		*d = t
	case *time.Duration:
		dur, err := v.Duration()
		if err != nil {
			return err
		}
		*d = dur
	case *oratype.Timestamp:
		ts, err := v.Timestamp()
		if err != nil {
			return err
		}
		*d = ts
	case *oratype.IntervalDS:
		iv, err := v.IntervalDS()
		if err != nil {
			return err
		}
		*d = iv
	case *oratype.IntervalYM:
		iv, err := v.IntervalYM()
		if err != nil {
			return err
		}
		*d = iv
	case **int64:
		return scanNullable(v, d, (*Value).Int64)
	case **string:
		return scanNullable(v, d, (*Value).String)
	case **float64:
		return scanNullable(v, d, (*Value).Float64)
	case **time.Time:
		return scanNullable(v, d, (*Value).Time)
	case **[]byte:
		return scanNullable(v, d, (*Value).Bytes)
	case *any:
		if v.IsNull() {
			*d = nil
			return nil
		}
		got, err := v.generic()
		if err != nil {
			return err
		}
		*d = got
	default:
		return newError(ErrKindDataTypeNotSupported, "unsupported scan destination %T", dest)
	}
	return nil
}

func scanNullable[T any](v *Value, d **T, get func(*Value) (T, error)) error {
	if v.IsNull() {
		*d = nil
		return nil
	}
	got, err := get(v)
	if err != nil {
		return err
	}
	*d = &got
	return nil
}

// generic picks the natural Go type for the cell's representation.
func (v *Value) generic() (any, error) {
	switch v.data.NativeType {
	case dpi.NativeInt64:
		return v.data.Int64, nil
	case dpi.NativeUint64:
		return v.data.Uint64, nil
	case dpi.NativeFloat:
		return v.data.Float, nil
	case dpi.NativeDouble:
		return v.data.Double, nil
	case dpi.NativeBytes:
		if v.oraType.Kind == oratype.KindRaw || v.oraType.Kind == oratype.KindLongRaw {
			return append([]byte(nil), v.data.Bytes...), nil
		}
		return v.text()
	case dpi.NativeTimestamp:
		return oratype.TimestampFromData(v.data.Timestamp), nil
	case dpi.NativeIntervalDS:
		return oratype.IntervalDSFromData(v.data.IntervalDS), nil
	case dpi.NativeIntervalYM:
		return oratype.IntervalYMFromData(v.data.IntervalYM), nil
	case dpi.NativeBoolean:
		return v.data.Bool, nil
	case dpi.NativeLOB:
		return v.lobContents()
	default:
		return nil, v.convErr("any")
	}
}

func floatToInt64(f float64) (int64, error) {
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, newError(ErrKindOutOfRange, "value %v does not fit int64", f)
	}
	return int64(f), nil
}

// setData stores a Go value into one buffer element under the given
// native tag. The tag comes from the bind slot's OracleType; a value the
// tag cannot represent is a conversion error, never a silent coercion.
func setData(data *dpi.Data, native dpi.NativeTypeNum, oraType oratype.OracleType, val any) error {
	if val == nil {
		data.NativeType = native
		data.SetNull()
		return nil
	}
	switch native {
	case dpi.NativeInt64:
		n, ok := toInt64(val)
		if !ok {
			return newError(ErrKindDataTypeNotSupported, "cannot bind %T as %s", val, oraType)
		}
		data.SetInt64(n)
	case dpi.NativeUint64:
		n, ok := toUint64(val)
		if !ok {
			return newError(ErrKindDataTypeNotSupported, "cannot bind %T as %s", val, oraType)
		}
		data.SetUint64(n)
	case dpi.NativeFloat:
		switch x := val.(type) {
		case float32:
			data.SetFloat(x)
		case float64:
			data.SetFloat(float32(x))
		default:
			return newError(ErrKindDataTypeNotSupported, "cannot bind %T as %s", val, oraType)
		}
	case dpi.NativeDouble:
		switch x := val.(type) {
		case float64:
			data.SetDouble(x)
		case float32:
			data.SetDouble(float64(x))
		default:
			if n, ok := toInt64(val); ok {
				data.SetDouble(float64(n))
			} else {
				return newError(ErrKindDataTypeNotSupported, "cannot bind %T as %s", val, oraType)
			}
		}
	case dpi.NativeBytes:
		switch x := val.(type) {
		case string:
			data.SetBytes([]byte(x))
		case []byte:
			data.SetBytes(append([]byte(nil), x...))
		default:
			// NUMBER buffers carry decimal text.
			if oraType.Kind == oratype.KindNumber {
				if n, ok := toInt64(val); ok {
					data.SetBytes([]byte(strconv.FormatInt(n, 10)))
					return nil
				}
				if f, ok := val.(float64); ok {
					data.SetBytes([]byte(strconv.FormatFloat(f, 'g', -1, 64)))
					return nil
				}
			}
			return newError(ErrKindDataTypeNotSupported, "cannot bind %T as %s", val, oraType)
		}
	case dpi.NativeTimestamp:
		switch x := val.(type) {
		case time.Time:
			data.SetTimestamp(oratype.TimestampFromTime(x).ToData())
		case oratype.Timestamp:
			data.SetTimestamp(x.ToData())
		default:
			return newError(ErrKindDataTypeNotSupported, "cannot bind %T as %s", val, oraType)
		}
	case dpi.NativeIntervalDS:
		switch x := val.(type) {
		case oratype.IntervalDS:
			data.SetIntervalDS(x.ToData())
		case time.Duration:
			data.SetIntervalDS(oratype.IntervalDSFromDuration(x).ToData())
		default:
			return newError(ErrKindDataTypeNotSupported, "cannot bind %T as %s", val, oraType)
		}
	case dpi.NativeIntervalYM:
		switch x := val.(type) {
		case oratype.IntervalYM:
			data.SetIntervalYM(x.ToData())
		default:
			return newError(ErrKindDataTypeNotSupported, "cannot bind %T as %s", val, oraType)
		}
	case dpi.NativeBoolean:
		switch x := val.(type) {
		case bool:
			data.SetBool(x)
		default:
			return newError(ErrKindDataTypeNotSupported, "cannot bind %T as %s", val, oraType)
		}
	default:
		return newError(ErrKindDataTypeNotSupported, "cannot bind %T as %s", val, oraType)
	}
	return nil
}

func toInt64(val any) (int64, bool) {
	switch x := val.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	default:
		return 0, false
	}
}

func toUint64(val any) (uint64, bool) {
	switch x := val.(type) {
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	case int, int8, int16, int32, int64:
		n, _ := toInt64(x)
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	default:
		return 0, false
	}
}

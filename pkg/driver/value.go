package driver

import (
	"github.com/leapstack-labs/oraq/pkg/dpi"
	"github.com/leapstack-labs/oraq/pkg/oratype"
)

// Value is one fetched or bound cell: an Oracle type tag, a null
// indicator, and the native in-memory payload. A Value produced during
// fetching points into the statement's reused fetch buffer and is
// invalidated by the next refill; Row detaches deep copies that outlive
// the buffer. Locator payloads (LOB, cursor, object) reference native
// resources owned by the statement either way.
type Value struct {
	api      dpi.API
	oraType  oratype.OracleType
	data     *dpi.Data
	detached bool

	// Decoded-text cache so repeated reads of one cell parse once.
	strCache *string
}

// OracleType reports the cell's wire type.
func (v *Value) OracleType() oratype.OracleType {
	return v.oraType
}

// IsNull reports whether the cell holds SQL NULL. Getters for
// non-nullable Go types fail on a null cell; check this first or scan
// into a pointer.
func (v *Value) IsNull() bool {
	return v.data == nil || v.data.IsNull
}

// detach deep-copies the cell out of the fetch buffer. Variable-length
// payloads are copied; locator payloads keep their reference, which
// stays tied to the statement's lifetime.
func (v *Value) detach() *Value {
	d := *v.data
	if d.Bytes != nil {
		d.Bytes = append([]byte(nil), d.Bytes...)
	}
	return &Value{
		api:      v.api,
		oraType:  v.oraType,
		data:     &d,
		detached: true,
	}
}

// tagErr reports a disagreement between the native tag and the payload a
// conversion expected. This is an internal invariant violation.
func (v *Value) tagErr(want string) error {
	return newError(ErrKindBufferShapeMismatch,
		"internal: native tag %d does not match expected %s payload for %s",
		v.data.NativeType, want, v.oraType)
}

// convErr reports a conversion with no rule.
func (v *Value) convErr(to string) error {
	return newError(ErrKindDataTypeNotSupported,
		"unsupported conversion from %s to %s", v.oraType, to)
}

func (v *Value) nullErr() error {
	return newError(ErrKindNullValue, "NULL value found; scan into a pointer to accept NULL")
}

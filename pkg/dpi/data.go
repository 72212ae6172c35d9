package dpi

// TimestampData is the raw date/time datum exchanged with the native
// layer. Offsets are meaningful only for zoned timestamp types.
type TimestampData struct {
	Year           int16
	Month          uint8
	Day            uint8
	Hour           uint8
	Minute         uint8
	Second         uint8
	FSecond        uint32 // nanoseconds
	TZHourOffset   int8
	TZMinuteOffset int8
}

// IntervalDSData is the raw day-to-second interval datum.
type IntervalDSData struct {
	Days     int32
	Hours    int32
	Minutes  int32
	Seconds  int32
	FSeconds int32 // nanoseconds
}

// IntervalYMData is the raw year-to-month interval datum.
type IntervalYMData struct {
	Years  int32
	Months int32
}

// Data is one element of a variable buffer: a tagged union of the native
// in-memory representations plus a null indicator. NativeType is the tag;
// only the payload field matching the tag is meaningful. Readers must
// check the tag before touching a payload field; the driver core turns a
// tag mismatch into a buffer-shape error rather than reading a stale
// field.
type Data struct {
	NativeType NativeTypeNum
	IsNull     bool

	Int64      int64
	Uint64     uint64
	Float      float32
	Double     float64
	Bytes      []byte
	Timestamp  TimestampData
	IntervalDS IntervalDSData
	IntervalYM IntervalYMData
	Bool       bool

	// LOB, object, cursor and similar locator payloads. The referenced
	// resource stays valid only while the owning variable buffer lives,
	// unless the reader detaches a deep copy.
	Locator *Handle
}

// SetNull clears the datum, keeping its tag.
func (d *Data) SetNull() {
	*d = Data{NativeType: d.NativeType, IsNull: true}
}

// SetInt64 stores v under the NativeInt64 tag.
func (d *Data) SetInt64(v int64) {
	*d = Data{NativeType: NativeInt64, Int64: v}
}

// SetUint64 stores v under the NativeUint64 tag.
func (d *Data) SetUint64(v uint64) {
	*d = Data{NativeType: NativeUint64, Uint64: v}
}

// SetFloat stores v under the NativeFloat tag.
func (d *Data) SetFloat(v float32) {
	*d = Data{NativeType: NativeFloat, Float: v}
}

// SetDouble stores v under the NativeDouble tag.
func (d *Data) SetDouble(v float64) {
	*d = Data{NativeType: NativeDouble, Double: v}
}

// SetBytes stores v under the NativeBytes tag. The datum keeps the slice;
// callers that reuse v must copy first.
func (d *Data) SetBytes(v []byte) {
	*d = Data{NativeType: NativeBytes, Bytes: v}
}

// SetTimestamp stores v under the NativeTimestamp tag.
func (d *Data) SetTimestamp(v TimestampData) {
	*d = Data{NativeType: NativeTimestamp, Timestamp: v}
}

// SetIntervalDS stores v under the NativeIntervalDS tag.
func (d *Data) SetIntervalDS(v IntervalDSData) {
	*d = Data{NativeType: NativeIntervalDS, IntervalDS: v}
}

// SetIntervalYM stores v under the NativeIntervalYM tag.
func (d *Data) SetIntervalYM(v IntervalYMData) {
	*d = Data{NativeType: NativeIntervalYM, IntervalYM: v}
}

// SetBool stores v under the NativeBoolean tag.
func (d *Data) SetBool(v bool) {
	*d = Data{NativeType: NativeBoolean, Bool: v}
}

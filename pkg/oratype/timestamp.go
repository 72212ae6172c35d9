package oratype

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/oraq/pkg/dpi"
)

// Timestamp is an Oracle date/time value. Unlike time.Time it preserves
// the exact field values the engine reported, including a time zone
// expressed as an hour/minute offset pair, without normalizing them
// through a calendar.
type Timestamp struct {
	Year       int
	Month      int
	Day        int
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
	// Zone offset, meaningful for the zoned timestamp types.
	TZHourOffset   int
	TZMinuteOffset int
}

// NewTimestamp returns a Timestamp with a zero zone offset.
func NewTimestamp(year, month, day, hour, minute, second, nanosecond int) Timestamp {
	return Timestamp{
		Year:       year,
		Month:      month,
		Day:        day,
		Hour:       hour,
		Minute:     minute,
		Second:     second,
		Nanosecond: nanosecond,
	}
}

// WithTZOffset returns a copy with the given hour/minute zone offset.
func (t Timestamp) WithTZOffset(hours, minutes int) Timestamp {
	t.TZHourOffset = hours
	t.TZMinuteOffset = minutes
	return t
}

// WithTZOffsetSeconds returns a copy with the zone offset given in
// seconds east of UTC.
func (t Timestamp) WithTZOffsetSeconds(sec int) Timestamp {
	minutes := sec / 60
	if minutes >= 0 {
		t.TZHourOffset = minutes / 60
		t.TZMinuteOffset = minutes % 60
	} else {
		t.TZHourOffset = -(-minutes / 60)
		t.TZMinuteOffset = -(-minutes % 60)
	}
	return t
}

// TZOffsetSeconds reports the zone offset in seconds east of UTC.
func (t Timestamp) TZOffsetSeconds() int {
	return t.TZHourOffset*3600 + t.TZMinuteOffset*60
}

// TimestampFromTime converts a time.Time, preserving its zone offset.
func TimestampFromTime(tm time.Time) Timestamp {
	_, offset := tm.Zone()
	return NewTimestamp(tm.Year(), int(tm.Month()), tm.Day(),
		tm.Hour(), tm.Minute(), tm.Second(), tm.Nanosecond()).
		WithTZOffsetSeconds(offset)
}

// ToTime converts to a time.Time in a fixed zone matching the offset.
func (t Timestamp) ToTime() time.Time {
	loc := time.UTC
	if sec := t.TZOffsetSeconds(); sec != 0 {
		loc = time.FixedZone("", sec)
	}
	return time.Date(t.Year, time.Month(t.Month), t.Day,
		t.Hour, t.Minute, t.Second, t.Nanosecond, loc)
}

// String renders the value as an Oracle timestamp literal. The zone
// sign comes from the combined offset, so sub-hour western offsets
// keep their minus even with a zero hour component.
func (t Timestamp) String() string {
	sign := "+"
	if t.TZOffsetSeconds() < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%d-%02d-%02d %02d:%02d:%02d.%09d %s%02d:%02d",
		t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second, t.Nanosecond,
		sign, abs(t.TZHourOffset), abs(t.TZMinuteOffset))
}

// TimestampFromData converts the native layer's raw datum.
func TimestampFromData(d dpi.TimestampData) Timestamp {
	return Timestamp{
		Year:           int(d.Year),
		Month:          int(d.Month),
		Day:            int(d.Day),
		Hour:           int(d.Hour),
		Minute:         int(d.Minute),
		Second:         int(d.Second),
		Nanosecond:     int(d.FSecond),
		TZHourOffset:   int(d.TZHourOffset),
		TZMinuteOffset: int(d.TZMinuteOffset),
	}
}

// ToData converts to the native layer's raw datum.
func (t Timestamp) ToData() dpi.TimestampData {
	return dpi.TimestampData{
		Year:           int16(t.Year),
		Month:          uint8(t.Month),
		Day:            uint8(t.Day),
		Hour:           uint8(t.Hour),
		Minute:         uint8(t.Minute),
		Second:         uint8(t.Second),
		FSecond:        uint32(t.Nanosecond),
		TZHourOffset:   int8(t.TZHourOffset),
		TZMinuteOffset: int8(t.TZMinuteOffset),
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

package oratype

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestampFromTimeRoundTrip(t *testing.T) {
	loc := time.FixedZone("", 5*3600+30*60)
	in := time.Date(2024, 3, 15, 10, 30, 45, 123456789, loc)

	ts := TimestampFromTime(in)
	assert.Equal(t, 2024, ts.Year)
	assert.Equal(t, 3, ts.Month)
	assert.Equal(t, 15, ts.Day)
	assert.Equal(t, 123456789, ts.Nanosecond)
	assert.Equal(t, 5, ts.TZHourOffset)
	assert.Equal(t, 30, ts.TZMinuteOffset)

	assert.True(t, ts.ToTime().Equal(in))
}

func TestTimestampNegativeOffset(t *testing.T) {
	ts := NewTimestamp(2024, 1, 1, 0, 0, 0, 0).WithTZOffsetSeconds(-(5*3600 + 30*60))
	assert.Equal(t, -5, ts.TZHourOffset)
	assert.Equal(t, -30, ts.TZMinuteOffset)
	assert.Equal(t, -(5*3600 + 30*60), ts.TZOffsetSeconds())
}

func TestTimestampString(t *testing.T) {
	ts := NewTimestamp(2024, 3, 5, 9, 8, 7, 600000000).WithTZOffset(5, 30)
	assert.Equal(t, "2024-03-05 09:08:07.600000000 +05:30", ts.String())

	neg := ts.WithTZOffset(-5, -30)
	assert.Equal(t, "2024-03-05 09:08:07.600000000 -05:30", neg.String())
}

func TestTimestampStringSubHourWesternOffset(t *testing.T) {
	// Offsets west of UTC by less than an hour have a zero hour
	// component; the sign must still render as minus.
	ts := NewTimestamp(2024, 3, 5, 9, 8, 7, 0).WithTZOffset(0, -30)
	assert.Equal(t, "2024-03-05 09:08:07.000000000 -00:30", ts.String())

	fromSeconds := NewTimestamp(2024, 3, 5, 9, 8, 7, 0).WithTZOffsetSeconds(-30 * 60)
	assert.Equal(t, "2024-03-05 09:08:07.000000000 -00:30", fromSeconds.String())
}

func TestTimestampDataRoundTrip(t *testing.T) {
	ts := NewTimestamp(1999, 12, 31, 23, 59, 59, 999999999).WithTZOffset(-8, 0)
	assert.Equal(t, ts, TimestampFromData(ts.ToData()))
}

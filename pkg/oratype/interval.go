package oratype

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/oraq/pkg/dpi"
)

// IntervalDS is an Oracle INTERVAL DAY TO SECOND value. All fields carry
// the same sign.
type IntervalDS struct {
	Days        int
	Hours       int
	Minutes     int
	Seconds     int
	Nanoseconds int
}

// NewIntervalDS returns a day-to-second interval.
func NewIntervalDS(days, hours, minutes, seconds, nanoseconds int) IntervalDS {
	return IntervalDS{
		Days:        days,
		Hours:       hours,
		Minutes:     minutes,
		Seconds:     seconds,
		Nanoseconds: nanoseconds,
	}
}

// IntervalDSFromDuration converts a time.Duration.
func IntervalDSFromDuration(d time.Duration) IntervalDS {
	ns := d.Nanoseconds()
	neg := ns < 0
	if neg {
		ns = -ns
	}
	iv := IntervalDS{
		Days:        int(ns / int64(24*time.Hour)),
		Hours:       int(ns / int64(time.Hour) % 24),
		Minutes:     int(ns / int64(time.Minute) % 60),
		Seconds:     int(ns / int64(time.Second) % 60),
		Nanoseconds: int(ns % int64(time.Second)),
	}
	if neg {
		iv.Days, iv.Hours, iv.Minutes = -iv.Days, -iv.Hours, -iv.Minutes
		iv.Seconds, iv.Nanoseconds = -iv.Seconds, -iv.Nanoseconds
	}
	return iv
}

// ToDuration converts to a time.Duration.
func (iv IntervalDS) ToDuration() time.Duration {
	return time.Duration(iv.Days)*24*time.Hour +
		time.Duration(iv.Hours)*time.Hour +
		time.Duration(iv.Minutes)*time.Minute +
		time.Duration(iv.Seconds)*time.Second +
		time.Duration(iv.Nanoseconds)
}

// String renders the value as an Oracle interval literal.
func (iv IntervalDS) String() string {
	if iv.Days < 0 || iv.Hours < 0 || iv.Minutes < 0 || iv.Seconds < 0 || iv.Nanoseconds < 0 {
		return fmt.Sprintf("INTERVAL '-%d %02d:%02d:%02d.%09d' DAY TO SECOND",
			-iv.Days, -iv.Hours, -iv.Minutes, -iv.Seconds, -iv.Nanoseconds)
	}
	return fmt.Sprintf("INTERVAL '+%d %02d:%02d:%02d.%09d' DAY TO SECOND",
		iv.Days, iv.Hours, iv.Minutes, iv.Seconds, iv.Nanoseconds)
}

// IntervalDSFromData converts the native layer's raw datum.
func IntervalDSFromData(d dpi.IntervalDSData) IntervalDS {
	return IntervalDS{
		Days:        int(d.Days),
		Hours:       int(d.Hours),
		Minutes:     int(d.Minutes),
		Seconds:     int(d.Seconds),
		Nanoseconds: int(d.FSeconds),
	}
}

// ToData converts to the native layer's raw datum.
func (iv IntervalDS) ToData() dpi.IntervalDSData {
	return dpi.IntervalDSData{
		Days:     int32(iv.Days),
		Hours:    int32(iv.Hours),
		Minutes:  int32(iv.Minutes),
		Seconds:  int32(iv.Seconds),
		FSeconds: int32(iv.Nanoseconds),
	}
}

// IntervalYM is an Oracle INTERVAL YEAR TO MONTH value. Both fields carry
// the same sign.
type IntervalYM struct {
	Years  int
	Months int
}

// NewIntervalYM returns a year-to-month interval.
func NewIntervalYM(years, months int) IntervalYM {
	return IntervalYM{Years: years, Months: months}
}

// String renders the value as an Oracle interval literal.
func (iv IntervalYM) String() string {
	if iv.Years < 0 || iv.Months < 0 {
		return fmt.Sprintf("INTERVAL '-%d-%d' YEAR TO MONTH", -iv.Years, -iv.Months)
	}
	return fmt.Sprintf("INTERVAL '%d-%d' YEAR TO MONTH", iv.Years, iv.Months)
}

// IntervalYMFromData converts the native layer's raw datum.
func IntervalYMFromData(d dpi.IntervalYMData) IntervalYM {
	return IntervalYM{Years: int(d.Years), Months: int(d.Months)}
}

// ToData converts to the native layer's raw datum.
func (iv IntervalYM) ToData() dpi.IntervalYMData {
	return dpi.IntervalYMData{Years: int32(iv.Years), Months: int32(iv.Months)}
}

package internal

import "time"

// CurrentTimestamp is *the* way to get a current timestamp in the console and
// time.Now() should be avoided.
//
// Timestamps are rounded to the nearest millisecond so that they survive a
// round trip through postgres, and are always in UTC.
func CurrentTimestamp() time.Time {
	return time.Now().Round(time.Millisecond).UTC()
}

package kdb

import (
	"math"
	"time"
)

// Epoch is the q epoch. Timestamps, months, dates and datetimes count
// from it.
var Epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	epochUnix   = 946684800
	nanosPerDay = 24 * int64(time.Hour)
	msPerDay    = 86400000

	// beyond this many days a datetime has no meaningful time.Time
	maxDatetimeDays = 1 << 31
)

// TimestampToTime converts nanoseconds since the epoch. Every int64 is
// in range, 0Wp included.
func TimestampToTime(ns int64) time.Time {
	return Epoch.Add(time.Duration(ns))
}

// TimeToTimestamp is the inverse of TimestampToTime. Times outside the
// timestamp range saturate to the infinities.
func TimeToTimestamp(t time.Time) int64 {
	return int64(t.Sub(Epoch))
}

// MonthToTime converts months since January 2000 to the first of that
// month.
func MonthToTime(m int32) time.Time {
	return Epoch.AddDate(0, int(m), 0)
}

// TimeToMonth is the inverse of MonthToTime; the day is dropped.
func TimeToMonth(t time.Time) int32 {
	t = t.UTC()
	return int32((t.Year()-2000)*12 + int(t.Month()) - 1)
}

// DateToTime converts days since the epoch.
func DateToTime(d int32) time.Time {
	return Epoch.AddDate(0, 0, int(d))
}

// TimeToDate is the inverse of DateToTime; the time of day is dropped.
func TimeToDate(t time.Time) int32 {
	y, m, d := t.UTC().Date()
	mid := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int32((mid.Unix() - epochUnix) / 86400)
}

// DatetimeToTime converts fractional days since the epoch, rounded to
// the millisecond as q does. NaN, the infinities and other values more
// than 2^31 days from the epoch return the zero Time.
func DatetimeToTime(f float64) time.Time {
	if math.IsNaN(f) || math.Abs(f) >= maxDatetimeDays {
		return time.Time{}
	}
	days := math.Floor(f)
	ms := math.Round((f - days) * msPerDay)
	return Epoch.AddDate(0, 0, int(days)).Add(time.Duration(ms) * time.Millisecond)
}

// TimeToDatetime is the inverse of DatetimeToTime.
func TimeToDatetime(t time.Time) float64 {
	t = t.UTC()
	return float64(t.Unix()-epochUnix)/86400 + float64(t.Nanosecond())/float64(nanosPerDay)
}

// TimespanToDuration converts a timespan, which is nanoseconds.
func TimespanToDuration(n int64) time.Duration {
	return time.Duration(n)
}

// MinuteToDuration converts minutes since midnight. 0Wu and -0Wu do not
// fit a Duration and saturate.
func MinuteToDuration(m int32) time.Duration {
	const limit = math.MaxInt64 / int64(time.Minute)
	switch {
	case int64(m) > limit:
		return math.MaxInt64
	case int64(m) < -limit:
		return math.MinInt64
	}
	return time.Duration(m) * time.Minute
}

// SecondToDuration converts seconds since midnight.
func SecondToDuration(s int32) time.Duration {
	return time.Duration(s) * time.Second
}

// TimeToDuration converts a q time, milliseconds since midnight.
func TimeToDuration(ms int32) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

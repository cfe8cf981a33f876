package kdb

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTemporalConversions(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 13, 14, 15, 123456789, time.UTC)
	n := TimeToTimestamp(ts)
	require.True(t, TimestampToTime(n).Equal(ts))
	require.Equal(t, int64(0), TimeToTimestamp(Epoch))
	require.Equal(t, Epoch, TimestampToTime(0))

	require.Equal(t, int32(0), TimeToMonth(Epoch))
	require.Equal(t, int32(290), TimeToMonth(ts))
	require.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), MonthToTime(290))
	require.Equal(t, time.Date(1999, time.December, 1, 0, 0, 0, 0, time.UTC), MonthToTime(-1))

	require.Equal(t, int32(-1), TimeToDate(time.Date(1999, time.December, 31, 23, 0, 0, 0, time.UTC)))
	require.Equal(t, int32(366), TimeToDate(time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC), DateToTime(366))

	require.Equal(t, time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC), DatetimeToTime(0.5))
	require.InDelta(t, 1.25, TimeToDatetime(time.Date(2000, time.January, 2, 6, 0, 0, 0, time.UTC)), 1e-12)

	require.Equal(t, 90*time.Minute, MinuteToDuration(90))
	require.Equal(t, 61*time.Second, SecondToDuration(61))
	require.Equal(t, 1500*time.Millisecond, TimeToDuration(1500))
	require.Equal(t, time.Duration(7), TimespanToDuration(7))
}

func TestTemporalRange(t *testing.T) {
	late := time.Date(2280, time.January, 1, 0, 0, 0, 0, time.UTC)
	n := TimeToTimestamp(late)
	require.Positive(t, n)
	require.Equal(t, late, TimestampToTime(n))

	require.Equal(t, time.Date(2292, time.April, 10, 23, 47, 16, 854775807, time.UTC), TimestampToTime(InfLong))
	require.Equal(t, time.Date(1707, time.September, 22, 0, 12, 43, 145224193, time.UTC), TimestampToTime(-InfLong))
	require.Equal(t, InfLong, TimeToTimestamp(time.Date(3000, time.January, 1, 0, 0, 0, 0, time.UTC)))

	require.True(t, DatetimeToTime(math.Inf(1)).IsZero())
	require.True(t, DatetimeToTime(math.Inf(-1)).IsZero())
	require.True(t, DatetimeToTime(math.NaN()).IsZero())
	require.Equal(t, time.Date(1999, time.December, 31, 12, 0, 0, 0, time.UTC), DatetimeToTime(-0.5))
	require.InDelta(t, 102268.0, TimeToDatetime(time.Date(2280, time.January, 1, 0, 0, 0, 0, time.UTC)), 1e-9)

	require.Equal(t, time.Duration(math.MaxInt64), MinuteToDuration(InfInt))
	require.Equal(t, time.Duration(math.MinInt64), MinuteToDuration(-InfInt))
}

func TestFormatTimespan(t *testing.T) {
	require.Equal(t, "0D00:00:00.000000000", FormatTimespan(0))
	require.Equal(t, "1D02:03:04.000000005", FormatTimespan(26*time.Hour+3*time.Minute+4*time.Second+5))
	require.Equal(t, "-0D00:00:01.000000000", FormatTimespan(-time.Second))
	require.Equal(t, "01:30", formatClock(90*time.Minute, 2, 0))
	require.Equal(t, "00:01:01", formatClock(61*time.Second, 3, 0))
	require.Equal(t, "00:00:01.500", formatClock(1500*time.Millisecond, 3, 3))
}

func TestNulls(t *testing.T) {
	b := NewBuilder()
	must := mustOff(t)
	nulls := []uint32{
		must(AppendAtom(b, TagShort, NullShort)),
		must(AppendAtom(b, TagInt, NullInt)),
		must(AppendAtom(b, TagLong, NullLong)),
		must(AppendAtom(b, TagReal, NullReal())),
		must(AppendAtom(b, TagFloat, NullFloat())),
		must(AppendAtom(b, TagTimestamp, NullLong)),
		must(AppendAtom(b, TagDate, NullInt)),
		must(AppendAtom(b, TagChar, NullChar)),
		b.AppendSymbol(""),
		b.AppendGUID(NullGUID),
	}
	for _, off := range nulls {
		k := mustValue(t, b, off)
		require.True(t, IsNull(k), k.String())
		require.False(t, IsInf(k), k.String())
	}

	infs := []uint32{
		must(AppendAtom(b, TagShort, InfShort)),
		must(AppendAtom(b, TagInt, -InfInt)),
		must(AppendAtom(b, TagLong, InfLong)),
		must(AppendAtom(b, TagFloat, math.Inf(-1))),
	}
	for _, off := range infs {
		k := mustValue(t, b, off)
		require.True(t, IsInf(k), k.String())
		require.False(t, IsNull(k), k.String())
	}

	require.False(t, IsNull(mustValue(t, b, b.AppendBool(false))))
	require.False(t, IsNull(mustValue(t, b, must(AppendAtom(b, TagByte, 0)))))
	require.False(t, IsNull(mustValue(t, b, b.AppendChars(" "))))
}

func TestNullAt(t *testing.T) {
	b := NewBuilder()
	longs := mustValue(t, b, mustOff(t)(AppendVector(b, TagLong, []int64{1, NullLong, 3})))
	require.False(t, NullAt(longs, 0))
	require.True(t, NullAt(longs, 1))
	require.False(t, NullAt(longs, 3))
	require.False(t, NullAt(longs, -1))

	syms := mustValue(t, b, b.AppendSymbols([]string{"a", ""}))
	require.False(t, NullAt(syms, 0))
	require.True(t, NullAt(syms, 1))

	require.False(t, NullAt(mustValue(t, b, b.AppendMixed()), 0))

	infs := mustValue(t, b, mustOff(t)(AppendVector(b, TagLong, []int64{1, InfLong, -InfLong, NullLong})))
	require.False(t, InfAt(infs, 0))
	require.True(t, InfAt(infs, 1))
	require.True(t, InfAt(infs, 2))
	require.False(t, InfAt(infs, 3))
	require.False(t, InfAt(infs, 4))
	floats := mustValue(t, b, mustOff(t)(AppendVector(b, TagFloat, []float64{math.Inf(-1)})))
	require.True(t, InfAt(floats, 0))
	require.False(t, InfAt(syms, 0))
}

func TestGUIDWords(t *testing.T) {
	g := NewGUID()
	require.Equal(t, g, GUIDFromWords(g.Words()))
	require.True(t, NullGUID.IsNull())
	require.False(t, g.IsNull())

	text, err := g.MarshalText()
	require.NoError(t, err)
	var back GUID
	require.NoError(t, back.UnmarshalText(text))
	require.Equal(t, g, back)

	_, err = ParseGUID("not-a-guid")
	require.Error(t, err)
}

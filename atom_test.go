package kdb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTryGetAtomNumeric(t *testing.T) {
	b := NewBuilder()
	must := mustOff(t)
	tests := []struct {
		name string
		off  uint32
		want float64
	}{
		{"byte", must(AppendAtom(b, -TagByte, -5)), -5},
		{"short", must(AppendAtom(b, -TagShort, 1234)), 1234},
		{"int", must(AppendAtom(b, -TagInt, -70000)), -70000},
		{"long", must(AppendAtom(b, -TagLong, int64(1)<<40)), 1 << 40},
		{"real", must(AppendAtom(b, -TagReal, 1.5)), 1.5},
		{"float", must(AppendAtom(b, -TagFloat, -2.25)), -2.25},
		{"char", must(AppendAtom(b, -TagChar, 'a')), 'a'},
		{"timestamp", must(AppendAtom(b, -TagTimestamp, 86400000000000)), 86400000000000},
		{"month", must(AppendAtom(b, -TagMonth, 13)), 13},
		{"date", must(AppendAtom(b, -TagDate, -1)), -1},
		{"datetime", must(AppendAtom(b, -TagDatetime, 0.5)), 0.5},
		{"timespan", must(AppendAtom(b, -TagTimespan, 1000)), 1000},
		{"minute", must(AppendAtom(b, -TagMinute, 61)), 61},
		{"second", must(AppendAtom(b, -TagSecond, 3601)), 3601},
		{"time", must(AppendAtom(b, -TagTime, 1001)), 1001},
		{"vector tag appends atom", must(AppendAtom(b, TagLong, 7)), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := mustValue(t, b, tt.off)
			require.True(t, k.IsAtomic())
			var got float64
			require.True(t, TryGetAtom(k, &got))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTryGetAtomConversions(t *testing.T) {
	b := NewBuilder()
	must := mustOff(t)
	real := mustValue(t, b, must(AppendAtom(b, TagReal, float32(3.1))))
	f, ok := Atom[float64](real)
	require.True(t, ok)
	require.Equal(t, float64(float32(3.1)), f)

	long := mustValue(t, b, must(AppendAtom(b, TagLong, 300)))
	i8, ok := Atom[int8](long)
	require.True(t, ok)
	require.Equal(t, int8(44), i8)

	neg := mustValue(t, b, must(AppendAtom(b, TagFloat, -2.9)))
	i32, ok := Atom[int32](neg)
	require.True(t, ok)
	require.Equal(t, int32(-2), i32)

	bl := mustValue(t, b, b.AppendBool(true))
	n, ok := Atom[int](bl)
	require.True(t, ok)
	require.Equal(t, 1, n)
}

func TestTryGetAtomRejects(t *testing.T) {
	b := NewBuilder()
	sym := mustValue(t, b, b.AppendSymbol("beeblebrox"))
	guid := mustValue(t, b, b.AppendGUID(NewGUID()))
	vec := mustValue(t, b, b.AppendChars("abc"))
	errv := mustValue(t, b, b.AppendError("type"))

	for _, k := range []K{{}, sym, guid, vec, errv} {
		v := 99
		require.False(t, TryGetAtom(k, &v), k.String())
		require.Equal(t, 99, v)
	}
}

func TestTryGetAtomBool(t *testing.T) {
	b := NewBuilder()
	must := mustOff(t)
	tests := []struct {
		off  uint32
		want bool
	}{
		{b.AppendBool(true), true},
		{b.AppendBool(false), false},
		{must(AppendAtom(b, TagLong, 2)), true},
		{must(AppendAtom(b, TagShort, 0)), false},
		{must(AppendAtom(b, TagFloat, math.NaN())), true},
	}
	for _, tt := range tests {
		var got bool
		require.True(t, TryGetAtomBool(mustValue(t, b, tt.off), &got))
		require.Equal(t, tt.want, got)
	}
	var got bool
	require.False(t, TryGetAtomBool(mustValue(t, b, b.AppendSymbol("x")), &got))
	require.False(t, TryGetAtomBool(K{}, &got))
}

func TestTryGetAtomString(t *testing.T) {
	b := NewBuilder()
	var s string
	require.True(t, TryGetAtomString(mustValue(t, b, b.AppendSymbol("Arthur")), &s))
	require.Equal(t, "Arthur", s)
	require.True(t, TryGetAtomString(mustValue(t, b, b.AppendSymbol("")), &s))
	require.Equal(t, "", s)

	s = "unchanged"
	require.False(t, TryGetAtomString(mustValue(t, b, b.AppendChars("Ford")), &s))
	require.False(t, TryGetAtomString(mustValue(t, b, mustOff(t)(AppendAtom(b, TagChar, 'F'))), &s))
	require.False(t, TryGetAtomString(K{}, &s))
	require.Equal(t, "unchanged", s)
}

func TestTryGetAtomGUID(t *testing.T) {
	b := NewBuilder()
	g, err := ParseGUID("8c680a01-5a49-5aab-5a65-d4bfddb6a661")
	require.NoError(t, err)
	atom := mustValue(t, b, b.AppendGUID(g))
	require.Equal(t, -TagGUID, atom.Tag())
	require.Equal(t, byte(0xfe), atom.Heap()[atom.Offset()])
	var got GUID
	require.True(t, TryGetAtomGUID(atom, &got))
	require.Equal(t, g, got)
	require.Equal(t, "8c680a01-5a49-5aab-5a65-d4bfddb6a661", got.String())
	require.False(t, TryGetAtomGUID(mustValue(t, b, b.AppendGUIDs([]GUID{g})), &got))
}

func TestTryGetNested(t *testing.T) {
	b := NewBuilder()
	table := mustValue(t, b, hitchhikers(t, b))
	var d K
	require.True(t, TryGetNested(table, &d))
	require.Equal(t, TagDict, d.Tag())
	require.Equal(t, int64(2), d.Len())

	require.False(t, TryGetNested(d, &d))
	require.False(t, TryGetNested(K{}, &d))
}

func TestErrorText(t *testing.T) {
	b := NewBuilder()
	msg, ok := ErrorText(mustValue(t, b, b.AppendError("rank")))
	require.True(t, ok)
	require.Equal(t, "rank", msg)
	_, ok = ErrorText(mustValue(t, b, b.AppendSymbol("rank")))
	require.False(t, ok)
}

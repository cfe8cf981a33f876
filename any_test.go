package kdb

import (
	"math"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
)

func TestToAnyTable(t *testing.T) {
	b := NewBuilder()
	v, err := ToAny(mustValue(t, b, hitchhikers(t, b)))
	require.NoError(t, err)
	require.Equal(t, []map[string]any{
		{"name": "Arthur", "iq": int64(42)},
		{"name": "Zaphod", "iq": int64(120)},
		{"name": "Ford", "iq": int64(98)},
	}, v)

	keyed, err := ToAny(mustValue(t, b, keyedHitchhikers(t, b)))
	require.NoError(t, err)
	require.Equal(t, v, keyed)
}

func TestToAnyValues(t *testing.T) {
	b := NewBuilder()
	must := mustOff(t)
	g := NewGUID()
	tests := []struct {
		name string
		off  uint32
		want any
	}{
		{"bool", b.AppendBool(true), true},
		{"guid", b.AppendGUID(g), g},
		{"null guid", b.AppendGUID(NullGUID), nil},
		{"byte", must(AppendAtom(b, TagByte, 5)), int8(5)},
		{"short", must(AppendAtom(b, TagShort, 5)), int16(5)},
		{"null int", must(AppendAtom(b, TagInt, NullInt)), nil},
		{"real", must(AppendAtom(b, TagReal, 0.25)), float32(0.25)},
		{"char", must(AppendAtom(b, TagChar, ' ')), " "},
		{"symbol", b.AppendSymbol("x"), "x"},
		{"date", must(AppendAtom(b, TagDate, 1)), time.Date(2000, time.January, 2, 0, 0, 0, 0, time.UTC)},
		{"time", must(AppendAtom(b, TagTime, 10)), 10 * time.Millisecond},
		{"late timestamp", must(AppendAtom(b, TagTimestamp, TimeToTimestamp(time.Date(2280, time.January, 1, 0, 0, 0, 0, time.UTC)))),
			time.Date(2280, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"0Wp", must(AppendAtom(b, TagTimestamp, InfLong)), nil},
		{"-0Wp", must(AppendAtom(b, TagTimestamp, -InfLong)), nil},
		{"0wz", must(AppendAtom(b, TagDatetime, math.Inf(1))), nil},
		{"0Wn", must(AppendAtom(b, TagTimespan, InfLong)), nil},
		{"inf long", must(AppendAtom(b, TagLong, InfLong)), InfLong},
		{"timestamps", must(AppendVector(b, TagTimestamp, []int64{0, InfLong})), []any{Epoch, nil}},
		{"chars", b.AppendChars("abc"), "abc"},
		{"longs", must(AppendVector(b, TagLong, []int64{1, NullLong})), []any{int64(1), nil}},
		{"symbols", b.AppendSymbols([]string{"a"}), []any{"a"}},
		{"mixed", b.AppendMixed(b.AppendChars("a"), b.AppendBool(false)), []any{"a", false}},
		{"dict", b.AppendDict(b.AppendSymbols([]string{"a", "b"}), must(AppendVector(b, TagShort, []int16{1, 2}))),
			map[string]any{"a": int16(1), "b": int16(2)}},
		{"long keys", b.AppendDict(must(AppendVector(b, TagLong, []int64{1})), b.AppendSymbols([]string{"x"})),
			Dict{Keys: []any{int64(1)}, Values: []any{"x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToAny(mustValue(t, b, tt.off))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestToAnyErrors(t *testing.T) {
	b := NewBuilder()
	_, err := ToAny(K{})
	require.ErrorIs(t, err, ErrNullInput)
	_, err = ToAny(mustValue(t, b, b.AppendError("length")))
	require.ErrorIs(t, err, ErrValueError)
	require.ErrorContains(t, err, "length")

	bad := b.AppendDict(b.AppendSymbols([]string{"a", "b"}), b.AppendChars("x"))
	_, err = ToAny(mustValue(t, b, bad))
	require.ErrorIs(t, err, ErrMalformedPayload)
}

func TestToAnyCBOR(t *testing.T) {
	b := NewBuilder()
	v, err := ToAny(mustValue(t, b, hitchhikers(t, b)))
	require.NoError(t, err)
	enc, err := cbor.Marshal(v)
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, cbor.Unmarshal(enc, &rows))
	require.Len(t, rows, 3)
	require.Equal(t, "Zaphod", rows[1]["name"])
	require.EqualValues(t, 120, rows[1]["iq"])
}

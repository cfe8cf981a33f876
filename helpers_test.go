package kdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustValue(t testing.TB, b *Builder, off uint32) K {
	t.Helper()
	k, err := b.Value(off)
	require.NoError(t, err)
	return k
}

func mustOff(t testing.TB) func(uint32, error) uint32 {
	return func(off uint32, err error) uint32 {
		t.Helper()
		require.NoError(t, err)
		return off
	}
}

// hitchhikers builds the table ([] name:`Arthur`Zaphod`Ford; iq:42 120 98).
func hitchhikers(t testing.TB, b *Builder) uint32 {
	t.Helper()
	must := mustOff(t)
	name := b.AppendSymbols([]string{"Arthur", "Zaphod", "Ford"})
	iq := must(AppendVector(b, TagLong, []int64{42, 120, 98}))
	return must(b.AppendSimpleTable([]string{"name", "iq"}, name, iq))
}

// keyedHitchhikers builds ([name:`Arthur`Zaphod`Ford] iq:42 120 98).
func keyedHitchhikers(t testing.TB, b *Builder) uint32 {
	t.Helper()
	must := mustOff(t)
	name := b.AppendSymbols([]string{"Arthur", "Zaphod", "Ford"})
	iq := must(AppendVector(b, TagLong, []int64{42, 120, 98}))
	keys := must(b.AppendSimpleTable([]string{"name"}, name))
	values := must(b.AppendSimpleTable([]string{"iq"}, iq))
	return b.AppendDict(keys, values)
}

package kdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderInternsSymbols(t *testing.T) {
	b := NewBuilder()
	s1 := b.AppendSymbols([]string{"Ford", "Ford", "Arthur"})
	k := mustValue(t, b, s1)
	require.Equal(t, k.offsetAt(0), k.offsetAt(1))
	require.NotEqual(t, k.offsetAt(0), k.offsetAt(2))

	atom := mustValue(t, b, b.AppendSymbol("Arthur"))
	require.Equal(t, k.offsetAt(2), atom.fieldOffset())

	b.Reset()
	require.Zero(t, b.Len())
	again := mustValue(t, b, b.AppendSymbols([]string{"Ford"}))
	got, r := Strings(again)
	require.Equal(t, Ok, r)
	require.Equal(t, []string{"Ford"}, got)
}

func TestAppendRejectsTags(t *testing.T) {
	b := NewBuilder()
	for _, tag := range []Tag{TagSymbol, TagGUID, TagMixed, TagDict, TagTable, TagError, 3} {
		_, err := AppendAtom(b, tag, 1)
		require.ErrorIs(t, err, ErrAppendTag, "tag %d", tag)
		_, err = AppendVector(b, tag, []int{1})
		require.ErrorIs(t, err, ErrAppendTag, "tag %d", tag)
	}
	require.Zero(t, b.Len())

	_, err := b.AppendSimpleTable([]string{"a"})
	require.ErrorIs(t, err, ErrShape)
}

func TestAppendRawVector(t *testing.T) {
	b := NewBuilder()
	off, err := b.AppendRawVector(TagShort, 1, []byte{1, 0, 0xff, 0xff})
	require.NoError(t, err)
	k := mustValue(t, b, off)
	require.Equal(t, byte(1), k.Attr())
	got, r := Vector[int16](k)
	require.Equal(t, Ok, r)
	require.Equal(t, []int16{1, -1}, got)

	_, err = b.AppendRawVector(TagShort, 0, []byte{1})
	require.Error(t, err)
	_, err = b.AppendRawVector(TagSymbol, 0, nil)
	require.ErrorIs(t, err, ErrAppendTag)
	_, err = b.AppendRawVector(-TagShort, 0, []byte{1, 0})
	require.ErrorIs(t, err, ErrAppendTag)
}

func TestBuilderHeaps(t *testing.T) {
	b := NewBuilderWithCapacity(8)
	off := b.AppendChars("towel")
	heap := b.Heap()

	copied := NewBuilderFromHeap(heap)
	copied.AppendChars("babel fish")
	s, r := StringFromCharVector(mustValue(t, b, off))
	require.Equal(t, Ok, r)
	require.Equal(t, "towel", s)
	s, r = StringFromCharVector(mustValue(t, copied, off))
	require.Equal(t, Ok, r)
	require.Equal(t, "towel", s)

	adopted := AdoptHeap(heap)
	off2 := adopted.AppendChars("42")
	s, r = StringFromCharVector(mustValue(t, adopted, off2))
	require.Equal(t, Ok, r)
	require.Equal(t, "42", s)

	reused := NewBuilderWithBuffer(make([]byte, 100, 200))
	require.Zero(t, reused.Len())

	b.SetAttr(off, 2)
	require.Equal(t, byte(2), mustValue(t, b, off).Attr())
}

func TestOpenBounds(t *testing.T) {
	b := NewBuilder()
	off := b.AppendGUID(NewGUID())
	heap := b.Heap()
	_, err := Open(heap, off)
	require.NoError(t, err)
	_, err = Open(heap[:len(heap)-1], off)
	require.Error(t, err)
	_, err = Open(heap, uint32(len(heap)))
	require.Error(t, err)
	_, err = Open(nil, 0)
	require.Error(t, err)
}

func TestNilK(t *testing.T) {
	var k K
	require.True(t, k.IsNil())
	require.False(t, k.IsError())
	require.False(t, k.IsAtomic())
	require.False(t, k.IsVector())
	require.False(t, k.IsMixedVector())
	require.False(t, k.IsDict())
	require.False(t, k.IsTable())
	require.Zero(t, k.Len())
	require.Zero(t, k.Attr())
	require.Nil(t, k.Field())
	require.Nil(t, k.Payload())
	require.Equal(t, "K(nil)", k.String())
}

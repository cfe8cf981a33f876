package json

import (
	"testing"

	"github.com/starfederation/kdb-go"
	"github.com/starfederation/kdb-go/runtime"
	"github.com/stretchr/testify/require"
)

type guide struct {
	Title  string    `json:"title"`
	Pages  []float64 `json:"pages"`
	Mostly bool      `json:"mostly"`
}

func TestMarshalUnmarshal(t *testing.T) {
	in := guide{Title: "Mostly Harmless", Pages: []float64{1, 2}, Mostly: true}
	k, err := Marshal(in)
	require.NoError(t, err)
	require.True(t, k.IsDict())

	var out guide
	require.NoError(t, Unmarshal(k, &out))
	require.Equal(t, in, out)
	require.Error(t, Unmarshal(k, nil))

	_, err = Marshal(func() {})
	require.Error(t, err)
}

func TestMarshalValue(t *testing.T) {
	before := runtime.Outstanding()
	in := []guide{{Title: "a", Pages: []float64{}}, {Title: "b", Pages: []float64{3}}}
	v, err := MarshalValue(in)
	require.NoError(t, err)
	require.True(t, v.K().IsTable())

	var out []guide
	require.NoError(t, UnmarshalValue(v, &out))
	require.Equal(t, in, out)

	require.True(t, v.Release())
	require.ErrorIs(t, UnmarshalValue(v, &out), runtime.ErrReleased)
	require.Equal(t, before, runtime.Outstanding())
}

func TestValueFromGo(t *testing.T) {
	b := kdb.NewBuilder()
	off, err := ValueFromGo(b, []string{"a"})
	require.NoError(t, err)
	k, err := b.Value(off)
	require.NoError(t, err)
	require.Equal(t, kdb.TagMixed, k.Tag())

	_, err = ValueFromGo(nil, 1)
	require.Error(t, err)
}

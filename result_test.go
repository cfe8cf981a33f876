package kdb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResultNames(t *testing.T) {
	names := []string{
		"Ok", "NullInput", "ValueError", "NotTable", "NotDictionary",
		"NotKeyedTable", "NotVector", "NotNumericalVector", "InvalidQTypeId",
		"NotMixedVector", "NotStringVector", "NotCharVectorInMixedVector",
		"NotSimpleTable", "NotGuidVector", "OutputTooSmall", "MalformedPayload",
	}
	for i, name := range names {
		require.Equal(t, name, ResultName(i))
		require.Equal(t, name, Result(i).String())
	}
	require.Equal(t, "Invalid", ResultName(-1))
	require.Equal(t, "Invalid", ResultName(len(names)))
	require.Equal(t, "Invalid", Result(255).String())
}

func TestResultErr(t *testing.T) {
	require.NoError(t, Ok.Err())
	for r := NullInput; r <= MalformedPayload; r++ {
		err := r.Err()
		require.Error(t, err, r.String())
		for o := NullInput; o <= MalformedPayload; o++ {
			require.Equal(t, r == o, errors.Is(err, o.Err()), "%s vs %s", r, o)
		}
	}
	require.ErrorIs(t, Result(200).Err(), ErrInvalidResult)
	require.ErrorIs(t, NotKeyedTable.Err(), ErrNotKeyedTable)
}

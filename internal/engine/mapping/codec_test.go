package mapping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/engine/mapping"
)

func TestDecodeListDeduplicates(t *testing.T) {
	// Decoding keeps the first occurrence of a repeated entry and preserves
	// the remaining order.
	data := mapping.EncodeList([]string{"a", "b", "b", "c", "a"})

	values, err := mapping.DecodeList(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, values)
}

func TestDecodeListEmpty(t *testing.T) {
	values, err := mapping.DecodeList(mapping.EncodeList(nil))
	require.NoError(t, err)
	require.NotNil(t, values)
	assert.Empty(t, values)
}

func TestDecodeListTruncated(t *testing.T) {
	data := mapping.EncodeList([]string{"hello", "world"})

	_, err := mapping.DecodeList(data[:len(data)-3])
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataCorrupted)
}

func TestIDCodecRoundTrip(t *testing.T) {
	ids := []int{1, 2, 40, 41, 9000}

	got, err := mapping.DecodeIDs(mapping.EncodeIDs(ids))
	require.NoError(t, err)
	assert.Equal(t, ids, got)
}

func TestDecodeIDsEmpty(t *testing.T) {
	ids, err := mapping.DecodeIDs(nil)
	require.NoError(t, err)
	require.NotNil(t, ids)
	assert.Empty(t, ids)
}

package storage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZstdCompressor_RoundTrip(t *testing.T) {
	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	defer compressor.Close()

	original := bytes.Repeat([]byte(`{"seat_id":1,"daily_counts":{"2025-07-01":4}}`), 100)
	compressed, err := compressor.Compress(original)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(original))

	restored, err := compressor.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestZstdCompressor_DecompressGarbageFails(t *testing.T) {
	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	defer compressor.Close()

	_, err = compressor.Decompress([]byte("definitely not zstd"))
	assert.Error(t, err)
}

func TestZstdCompressor_EmptyInput(t *testing.T) {
	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	defer compressor.Close()

	compressed, err := compressor.Compress(nil)
	require.NoError(t, err)

	restored, err := compressor.Decompress(compressed)
	require.NoError(t, err)
	assert.Empty(t, restored)
}

package compress

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZlibRoundTrip(t *testing.T) {
	c := NewZlibCompressor()
	data := []byte("the quick brown fox jumps over the lazy dog, repeated many times to be compressible: " +
		"the quick brown fox jumps over the lazy dog")

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.Less(t, len(compressed), len(data))

	out, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestNoOpRoundTrip(t *testing.T) {
	c := NewNoOpCompressor()
	data := []byte{1, 2, 3}

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.Equal(t, data, compressed)

	out, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestNewCodec(t *testing.T) {
	_, err := NewCodec(AlgorithmNone)
	require.NoError(t, err)

	_, err = NewCodec(AlgorithmZlib)
	require.NoError(t, err)

	_, err = NewCodec(Algorithm(99))
	require.Error(t, err)
}

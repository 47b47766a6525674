package endian

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadSignatureRoundTrip(t *testing.T) {
	for _, eng := range []EndianEngine{GetLittleEndianEngine(), GetBigEndianEngine()} {
		buf := WriteSignature(nil, eng)
		require.Len(t, buf, SignatureSize)

		got, ok := ReadSignature(buf)
		require.True(t, ok)
		require.Equal(t, eng, got)
	}
}

func TestReadSignatureIncompatible(t *testing.T) {
	buf := WriteSignature(nil, GetLittleEndianEngine())
	buf[0] = 4 // claim uint16 is 4 bytes: neither engine will match

	_, ok := ReadSignature(buf)
	require.False(t, ok)
}

func TestReadSignatureTooShort(t *testing.T) {
	_, ok := ReadSignature(make([]byte, SignatureSize-1))
	require.False(t, ok)
}

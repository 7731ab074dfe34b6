package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU8(0xAB)
	w.WriteBool(true)
	w.WriteBool(false)
	w.WriteI32(-1234)
	w.WriteU64(1 << 40)
	w.WriteI64(-9999999999)
	w.WriteBlob([]byte{1, 2, 3})
	w.WriteString("hello kickoff")
	w.WriteString("")

	r := NewReader(w.Bytes())

	u8, err := r.ReadU8()
	require.NoError(t, err)
	require.Equal(t, uint8(0xAB), u8)

	b1, err := r.ReadBool()
	require.NoError(t, err)
	require.True(t, b1)

	b2, err := r.ReadBool()
	require.NoError(t, err)
	require.False(t, b2)

	i32, err := r.ReadI32()
	require.NoError(t, err)
	require.Equal(t, int32(-1234), i32)

	u64, err := r.ReadU64()
	require.NoError(t, err)
	require.Equal(t, uint64(1<<40), u64)

	i64, err := r.ReadI64()
	require.NoError(t, err)
	require.Equal(t, int64(-9999999999), i64)

	blob, err := r.ReadBlob()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, blob)

	s1, err := r.ReadString()
	require.NoError(t, err)
	require.Equal(t, "hello kickoff", s1)

	s2, err := r.ReadString()
	require.NoError(t, err)
	require.Equal(t, "", s2)

	require.True(t, r.Done())
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader([]byte{1, 2})
	_, err := r.ReadU64()
	require.ErrorIs(t, err, ErrTruncated)
}

func TestReaderBlobNegativeLength(t *testing.T) {
	w := NewWriter()
	w.WriteI32(-5)
	r := NewReader(w.Bytes())
	_, err := r.ReadBlob()
	require.ErrorIs(t, err, ErrTruncated)
}

func TestReaderBlobTruncatedBody(t *testing.T) {
	w := NewWriter()
	w.WriteI32(10)
	w.WriteU8(1)
	r := NewReader(w.Bytes())
	_, err := r.ReadBlob()
	require.ErrorIs(t, err, ErrTruncated)
}

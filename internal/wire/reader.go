package wire

import (
	"encoding/binary"
	"errors"
)

// ErrTruncated is returned by every Read method when the underlying buffer
// does not hold enough bytes to satisfy the read. Callers treat it as a
// malformed-frame condition, never a retryable one.
var ErrTruncated = errors.New("wire: truncated frame")

// Reader consumes a byte slice written by a Writer. It never copies the
// backing array; ReadBlob and ReadString slice/convert directly from it.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential reads starting at offset 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining reports how many bytes have not yet been consumed.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Done reports whether the frame has been fully consumed. A well-formed
// message always leaves the reader Done after its last field is read.
func (r *Reader) Done() bool {
	return r.Remaining() == 0
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, ErrTruncated
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU8 reads one raw byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBool reads a single 0/1 byte. Any non-zero byte decodes true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadU8()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadI32 reads a little-endian 32-bit signed integer.
func (r *Reader) ReadI32() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// ReadU64 reads a little-endian 64-bit unsigned integer.
func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadI64 reads a little-endian 64-bit signed integer.
func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// ReadBlob reads a 32-bit length prefix and returns that many raw bytes. A
// negative length is treated as malformed rather than panicking on alloc.
func (r *Reader) ReadBlob() ([]byte, error) {
	n, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	return r.take(int(n))
}

// ReadString reads a length-prefixed blob and converts it to a string.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBlob()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

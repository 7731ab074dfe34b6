// Package wire implements the length-prefixed little-endian binary framing
// used by every Kickoff request and reply. It knows nothing about tasks or
// the protocol built on top of it — it is the leaf primitive every other
// package in this module composes.
package wire

import (
	"bytes"
	"encoding/binary"
)

// Writer is an append-only byte sink. The zero value is ready to use.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns a Writer with a small capacity pre-reserved so the
// common small-message case avoids a reallocation on the first few writes.
func NewWriter() *Writer {
	w := &Writer{}
	w.buf.Grow(64)
	return w
}

// Bytes returns the accumulated frame. The returned slice aliases the
// writer's internal buffer and must not be mutated by the caller.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// WriteU8 appends one raw byte.
func (w *Writer) WriteU8(v uint8) {
	w.buf.WriteByte(v)
}

// WriteBool appends a single 0/1 byte.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
	} else {
		w.WriteU8(0)
	}
}

// WriteI32 appends a little-endian 32-bit signed integer.
func (w *Writer) WriteI32(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.buf.Write(b[:])
}

// WriteU64 appends a little-endian 64-bit unsigned integer.
func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// WriteI64 appends a little-endian 64-bit signed integer (used for
// time_t-style Unix timestamps).
func (w *Writer) WriteI64(v int64) {
	w.WriteU64(uint64(v))
}

// WriteBlob appends a 32-bit signed length prefix followed by the raw bytes.
// A blob never recurses its own length.
func (w *Writer) WriteBlob(data []byte) {
	w.WriteI32(int32(len(data)))
	w.buf.Write(data)
}

// WriteString appends a string as a length-prefixed blob of its UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	w.WriteBlob([]byte(s))
}

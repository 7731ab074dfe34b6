package protocol

import "github.com/judnich/Kickoff/internal/wire"

// NewRequestWriter starts a request frame with its leading RequestType tag
// byte. Callers append the type-specific payload and call Bytes().
func NewRequestWriter(t RequestType) *wire.Writer {
	w := wire.NewWriter()
	w.WriteU8(uint8(t))
	return w
}

// NewReplyWriter starts a reply frame with its leading ReplyType tag byte.
func NewReplyWriter(t ReplyType) *wire.Writer {
	w := wire.NewWriter()
	w.WriteU8(uint8(t))
	return w
}

// DecodeRequestHeader reads the leading tag byte of a request frame and
// validates it is a known RequestType. The returned Reader is positioned
// just after the tag, ready for payload decoding.
func DecodeRequestHeader(frame []byte) (RequestType, *wire.Reader, error) {
	r := wire.NewReader(frame)
	tag, err := r.ReadU8()
	if err != nil {
		return 0, nil, err
	}
	t := RequestType(tag)
	if !t.Valid() {
		return 0, nil, wire.ErrTruncated
	}
	return t, r, nil
}

// DecodeReplyHeader reads the leading tag byte of a reply frame.
func DecodeReplyHeader(frame []byte) (ReplyType, *wire.Reader, error) {
	r := wire.NewReader(frame)
	tag, err := r.ReadU8()
	if err != nil {
		return 0, nil, err
	}
	return ReplyType(tag), r, nil
}

package clienthello

import "errors"

// ErrBufferTooSmall is returned when a caller-provided buffer cannot
// hold the encoded ClientHello.
var ErrBufferTooSmall = errors.New("clienthello: buffer too small")

// errFieldOverflow reports a length that does not fit its wire field.
// It never escapes Encode for well-formed templates; it exists so the
// builder fails fast instead of truncating a length silently.
var errFieldOverflow = errors.New("clienthello: length exceeds wire field")

// builder is an append-only byte builder for TLS wire encoding. All
// integers are big-endian. Length fields that cannot be known up front
// are reserved with mark* and rewritten with patch* once the enclosed
// bytes have been emitted; every patch checks that the final length fits
// the field.
type builder struct {
	buf   []byte
	limit int // 0 means unbounded
	err   error
}

func newBuilder(limit int) *builder {
	return &builder{buf: make([]byte, 0, 512), limit: limit}
}

// ensure reserves room for n more bytes, recording ErrBufferTooSmall
// when a limit is set and would be exceeded. Once an error is recorded
// every subsequent append is a no-op.
func (b *builder) ensure(n int) bool {
	if b.err != nil {
		return false
	}
	if b.limit > 0 && len(b.buf)+n > b.limit {
		b.err = ErrBufferTooSmall
		return false
	}
	return true
}

func (b *builder) appendU8(v byte) {
	if b.ensure(1) {
		b.buf = append(b.buf, v)
	}
}

func (b *builder) appendU16(v uint16) {
	if b.ensure(2) {
		b.buf = append(b.buf, byte(v>>8), byte(v))
	}
}

func (b *builder) appendBytes(p []byte) {
	if b.ensure(len(p)) {
		b.buf = append(b.buf, p...)
	}
}

// markU16 reserves a 2-byte length field and returns its offset.
func (b *builder) markU16() int {
	off := len(b.buf)
	b.appendU16(0)
	return off
}

// markU24 reserves a 3-byte length field and returns its offset.
func (b *builder) markU24() int {
	off := len(b.buf)
	if b.ensure(3) {
		b.buf = append(b.buf, 0, 0, 0)
	}
	return off
}

// patchU16 rewrites the 2-byte field at off with the number of bytes
// emitted after it.
func (b *builder) patchU16(off int) {
	if b.err != nil {
		return
	}
	n := len(b.buf) - off - 2
	if n < 0 || n > 0xFFFF {
		b.err = errFieldOverflow
		return
	}
	b.buf[off] = byte(n >> 8)
	b.buf[off+1] = byte(n)
}

// patchU24 rewrites the 3-byte field at off with the number of bytes
// emitted after it.
func (b *builder) patchU24(off int) {
	if b.err != nil {
		return
	}
	n := len(b.buf) - off - 3
	if n < 0 || n > 0xFFFFFF {
		b.err = errFieldOverflow
		return
	}
	b.buf[off] = byte(n >> 16)
	b.buf[off+1] = byte(n >> 8)
	b.buf[off+2] = byte(n)
}

// bytes returns the encoded output, or the first recorded error.
func (b *builder) bytes() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.buf, nil
}

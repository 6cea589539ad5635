// Package clienthello serializes fingerprint templates into TLS
// ClientHello wire bytes. The output is handshake-shaped traffic for
// mimicry only: no key material is derived and no real handshake is
// performed with it.
package clienthello

import (
	"errors"
	"fmt"

	"golang.org/x/net/idna"

	"github.com/gocircum/mimictls/core/constants"
	"github.com/gocircum/mimictls/core/fingerprint"
	"github.com/gocircum/mimictls/pkg/securerandom"
)

// ErrHostnameTooLong is returned when the hostname cannot fit the SNI
// extension's length fields.
var ErrHostnameTooLong = errors.New("clienthello: hostname too long")

// sniOverhead is the framing around the host bytes inside the SNI
// extension: list length(2) + entry type(1) + host length(2).
const sniOverhead = 5

// Encoder serializes templates into ClientHello records. The random
// source is injected so tests can fix the 32-byte hello random; callers
// outside tests use New, which wires the CSPRNG-backed source.
type Encoder struct {
	rand securerandom.Source
}

// New returns an Encoder drawing hello randomness from crypto/rand.
func New() *Encoder {
	return NewWithSource(securerandom.NewCryptoSource())
}

// NewWithSource returns an Encoder drawing randomness from src.
func NewWithSource(src securerandom.Source) *Encoder {
	return &Encoder{rand: src}
}

// Encode serializes tpl and hostname into a complete TLS record
// containing a ClientHello handshake message. All integers are
// big-endian; record, handshake and extension length fields are
// backpatched after their contents are emitted.
func (e *Encoder) Encode(tpl *fingerprint.Template, hostname string) ([]byte, error) {
	return e.encode(tpl, hostname, 0)
}

// EncodeTo serializes into a caller-provided buffer and returns the
// number of bytes written. ErrBufferTooSmall is returned when buf cannot
// hold the result; the caller retries with a larger buffer.
func (e *Encoder) EncodeTo(buf []byte, tpl *fingerprint.Template, hostname string) (int, error) {
	if len(buf) == 0 {
		return 0, ErrBufferTooSmall
	}
	out, err := e.encode(tpl, hostname, len(buf))
	if err != nil {
		return 0, err
	}
	return copy(buf, out), nil
}

func (e *Encoder) encode(tpl *fingerprint.Template, hostname string, limit int) ([]byte, error) {
	host, err := normalizeHostname(hostname)
	if err != nil {
		return nil, err
	}

	b := newBuilder(limit)

	// Record header: content type, legacy version, length placeholder.
	b.appendU8(constants.ContentTypeHandshake)
	b.appendU16(tpl.TLSVersion)
	recordLen := b.markU16()

	// Handshake header: ClientHello, 3-byte length placeholder.
	b.appendU8(constants.HandshakeTypeClientHello)
	handshakeLen := b.markU24()

	b.appendU16(tpl.TLSVersion)

	random := make([]byte, constants.HelloRandomLen)
	if err := e.rand.Bytes(random); err != nil {
		return nil, fmt.Errorf("failed to generate hello random: %w", err)
	}
	b.appendBytes(random)

	// No session offered on first contact.
	b.appendU8(0)

	cipherLen := b.markU16()
	for _, suite := range tpl.CipherSuites {
		b.appendU16(suite)
	}
	b.patchU16(cipherLen)

	// Compression methods: null only.
	b.appendU8(1)
	b.appendU8(0)

	extensionsLen := b.markU16()
	for _, typ := range tpl.ExtensionOrder {
		ext := extensionFor(typ, tpl, host)
		if ext == nil {
			continue
		}
		b.appendU16(ext.extType())
		extLen := b.markU16()
		ext.encodeBody(b)
		b.patchU16(extLen)
	}
	b.patchU16(extensionsLen)

	b.patchU24(handshakeLen)
	b.patchU16(recordLen)

	return b.bytes()
}

// normalizeHostname maps the hostname to its ASCII (A-label) form for
// the SNI extension and validates that it fits the wire length fields.
func normalizeHostname(hostname string) (string, error) {
	ascii, err := idna.Lookup.ToASCII(hostname)
	if err != nil {
		// Keep the caller's spelling when IDNA mapping rejects it; the
		// length checks below still apply.
		ascii = hostname
	}
	if len(ascii) > 0xFFFF-sniOverhead {
		return "", ErrHostnameTooLong
	}
	return ascii, nil
}

package clienthello

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocircum/mimictls/core/constants"
	"github.com/gocircum/mimictls/core/fingerprint"
	"github.com/gocircum/mimictls/testutils"
)

// parsedExt is one decoded extension.
type parsedExt struct {
	typ     uint16
	payload []byte
}

// parsedHello is a strict test-side decode of an encoded ClientHello
// record. Every length field is checked against the actual layout.
type parsedHello struct {
	contentType   byte
	recordVersion uint16
	recordLen     int
	handshakeLen  int
	clientVersion uint16
	random        []byte
	sessionIDLen  int
	ciphers       []uint16
	extensionsLen int
	extensions    []parsedExt
}

func parseHello(t *testing.T, out []byte) parsedHello {
	t.Helper()
	require.GreaterOrEqual(t, len(out), 48, "output shorter than any valid ClientHello")

	var p parsedHello
	p.contentType = out[0]
	p.recordVersion = binary.BigEndian.Uint16(out[1:3])
	p.recordLen = int(binary.BigEndian.Uint16(out[3:5]))

	require.Equal(t, byte(0x01), out[5], "handshake type must be ClientHello")
	p.handshakeLen = int(out[6])<<16 | int(out[7])<<8 | int(out[8])
	p.clientVersion = binary.BigEndian.Uint16(out[9:11])
	p.random = out[11:43]
	p.sessionIDLen = int(out[43])

	off := 44 + p.sessionIDLen
	cipherLen := int(binary.BigEndian.Uint16(out[off : off+2]))
	off += 2
	require.Zero(t, cipherLen%2, "cipher list length must be even")
	for i := 0; i < cipherLen; i += 2 {
		p.ciphers = append(p.ciphers, binary.BigEndian.Uint16(out[off+i:off+i+2]))
	}
	off += cipherLen

	compLen := int(out[off])
	require.Equal(t, 1, compLen, "exactly one compression method expected")
	require.Equal(t, byte(0x00), out[off+1], "null compression expected")
	off += 1 + compLen

	p.extensionsLen = int(binary.BigEndian.Uint16(out[off : off+2]))
	off += 2
	end := off + p.extensionsLen
	require.Equal(t, len(out), end, "extensions must run to the end of the record")
	for off < end {
		typ := binary.BigEndian.Uint16(out[off : off+2])
		length := int(binary.BigEndian.Uint16(out[off+2 : off+4]))
		off += 4
		require.LessOrEqual(t, off+length, end, "extension 0x%04x overruns the record", typ)
		p.extensions = append(p.extensions, parsedExt{typ: typ, payload: out[off : off+length]})
		off += length
	}
	return p
}

func (p parsedHello) extension(typ uint16) ([]byte, bool) {
	for _, e := range p.extensions {
		if e.typ == typ {
			return e.payload, true
		}
	}
	return nil, false
}

// sniHostname decodes the server_name payload back into the hostname.
func sniHostname(t *testing.T, payload []byte) string {
	t.Helper()
	require.GreaterOrEqual(t, len(payload), 5)
	listLen := int(binary.BigEndian.Uint16(payload[0:2]))
	require.Equal(t, len(payload)-2, listLen)
	require.Equal(t, byte(0x00), payload[2], "entry type must be host_name")
	hostLen := int(binary.BigEndian.Uint16(payload[3:5]))
	require.Equal(t, len(payload)-5, hostLen)
	return string(payload[5:])
}

func TestStructuralValidityAllTemplates(t *testing.T) {
	enc := New()
	hostnames := []string{
		"a.example",
		"example.com",
		strings.Repeat("x", 60) + "." + strings.Repeat("y", 60) + ".example.com",
		strings.Repeat("n", 196) + ".com", // 200 bytes
	}

	for _, name := range fingerprint.Names() {
		tpl, ok := fingerprint.TemplateByName(name)
		require.True(t, ok)
		for _, hostname := range hostnames {
			out, err := enc.Encode(tpl, hostname)
			require.NoError(t, err, "template %s hostname %q", name, hostname)

			p := parseHello(t, out)
			assert.Equal(t, constants.ContentTypeHandshake, p.contentType)
			assert.Equal(t, tpl.TLSVersion, p.recordVersion)
			assert.Equal(t, tpl.TLSVersion, p.clientVersion)
			assert.Equal(t, len(out)-5, p.recordLen, "record length field")
			assert.Equal(t, len(out)-9, p.handshakeLen, "handshake length field")
			assert.Equal(t, 0, p.sessionIDLen, "no session offered on first contact")

			// Extensions length equals the sum of 4+payload over emitted
			// extensions.
			sum := 0
			for _, e := range p.extensions {
				sum += 4 + len(e.payload)
			}
			assert.Equal(t, p.extensionsLen, sum)
		}
	}
}

func TestSNIFidelity(t *testing.T) {
	enc := New()
	tpl, _ := fingerprint.TemplateByName("chrome")

	for _, hostname := range []string{"example.com", "web.telegram.org", "a.b.c.d.example"} {
		out, err := enc.Encode(tpl, hostname)
		require.NoError(t, err)

		p := parseHello(t, out)
		payload, ok := p.extension(constants.ExtServerName)
		require.True(t, ok, "SNI extension missing")
		assert.Equal(t, hostname, sniHostname(t, payload))
	}
}

func TestSNIInternationalizedHostname(t *testing.T) {
	enc := New()
	tpl, _ := fingerprint.TemplateByName("firefox")

	out, err := enc.Encode(tpl, "bücher.example")
	require.NoError(t, err)

	p := parseHello(t, out)
	payload, ok := p.extension(constants.ExtServerName)
	require.True(t, ok)
	assert.Equal(t, "xn--bcher-kva.example", sniHostname(t, payload))
}

func TestCipherOrderPreserved(t *testing.T) {
	enc := New()
	for _, name := range fingerprint.Names() {
		tpl, _ := fingerprint.TemplateByName(name)
		out, err := enc.Encode(tpl, "example.com")
		require.NoError(t, err)

		p := parseHello(t, out)
		assert.Equal(t, tpl.CipherSuites, p.ciphers, "template %s", name)
	}
}

func TestExtensionOrderFollowsTemplate(t *testing.T) {
	enc := New()
	tpl, _ := fingerprint.TemplateByName("chrome")
	out, err := enc.Encode(tpl, "example.com")
	require.NoError(t, err)

	p := parseHello(t, out)
	var got []uint16
	for _, e := range p.extensions {
		got = append(got, e.typ)
	}
	assert.Equal(t, tpl.ExtensionOrder, got)
}

func TestALPNCarriesFirstProtocol(t *testing.T) {
	enc := New()
	tpl, _ := fingerprint.TemplateByName("chrome")
	out, err := enc.Encode(tpl, "example.com")
	require.NoError(t, err)

	p := parseHello(t, out)
	payload, ok := p.extension(constants.ExtALPN)
	require.True(t, ok, "ALPN extension missing")

	// list_len(2) + proto_len(1) + "h2"
	require.Equal(t, []byte{0x00, 0x03, 0x02, 'h', '2'}, payload)
}

func TestALPNOmittedWhenUnconfigured(t *testing.T) {
	enc := New()
	tpl := fingerprint.Template{
		Name:           "bare",
		TLSVersion:     constants.VersionTLS12,
		CipherSuites:   []uint16{constants.TLS_AES_128_GCM_SHA256},
		ExtensionOrder: []uint16{constants.ExtServerName, constants.ExtALPN, constants.ExtSupportedVersions},
		EllipticCurves: []uint16{constants.CurveX25519},
	}

	out, err := enc.Encode(&tpl, "example.com")
	require.NoError(t, err)

	p := parseHello(t, out)
	_, ok := p.extension(constants.ExtALPN)
	assert.False(t, ok, "ALPN must be omitted entirely, not zero-length")
	assert.Len(t, p.extensions, 2)
}

func TestUnknownExtensionDegradesToPlaceholder(t *testing.T) {
	enc := New()
	tpl := fingerprint.Template{
		Name:           "exotic",
		TLSVersion:     constants.VersionTLS12,
		CipherSuites:   []uint16{constants.TLS_AES_128_GCM_SHA256},
		ExtensionOrder: []uint16{constants.ExtServerName, 0xabcd},
		EllipticCurves: []uint16{constants.CurveX25519},
	}

	out, err := enc.Encode(&tpl, "example.com")
	require.NoError(t, err)

	p := parseHello(t, out)
	payload, ok := p.extension(0xabcd)
	require.True(t, ok, "unknown extension type must still be emitted")
	assert.Empty(t, payload)
}

func TestSupportedVersionsAndPointFormats(t *testing.T) {
	enc := New()
	tpl, _ := fingerprint.TemplateByName("chrome")
	out, err := enc.Encode(tpl, "example.com")
	require.NoError(t, err)

	p := parseHello(t, out)

	versions, ok := p.extension(constants.ExtSupportedVersions)
	require.True(t, ok)
	assert.Equal(t, []byte{0x04, 0x03, 0x04, 0x03, 0x03}, versions, "TLS 1.3 then 1.2")

	points, ok := p.extension(constants.ExtECPointFormats)
	require.True(t, ok)
	assert.Equal(t, []byte{0x01, 0x00}, points, "uncompressed only")
}

func TestSupportedGroupsMatchTemplate(t *testing.T) {
	enc := New()
	tpl, _ := fingerprint.TemplateByName("firefox")
	out, err := enc.Encode(tpl, "example.com")
	require.NoError(t, err)

	p := parseHello(t, out)
	payload, ok := p.extension(constants.ExtSupportedGroups)
	require.True(t, ok)

	listLen := int(binary.BigEndian.Uint16(payload[0:2]))
	require.Equal(t, len(tpl.EllipticCurves)*2, listLen)
	for i, curve := range tpl.EllipticCurves {
		assert.Equal(t, curve, binary.BigEndian.Uint16(payload[2+2*i:4+2*i]))
	}
}

func TestHelloRandomIsInjected(t *testing.T) {
	enc := NewWithSource(&testutils.FixedSource{Byte: 0x5a})
	tpl, _ := fingerprint.TemplateByName("chrome")
	out, err := enc.Encode(tpl, "example.com")
	require.NoError(t, err)

	p := parseHello(t, out)
	for _, b := range p.random {
		require.Equal(t, byte(0x5a), b)
	}
}

func TestHelloRandomDiffersAcrossEncodes(t *testing.T) {
	enc := New()
	tpl, _ := fingerprint.TemplateByName("chrome")

	first, err := enc.Encode(tpl, "example.com")
	require.NoError(t, err)
	second, err := enc.Encode(tpl, "example.com")
	require.NoError(t, err)

	assert.NotEqual(t, parseHello(t, first).random, parseHello(t, second).random,
		"hello random must not repeat across connections")
}

func TestEncodeRandomFailure(t *testing.T) {
	enc := NewWithSource(testutils.FailingSource{})
	tpl, _ := fingerprint.TemplateByName("chrome")
	_, err := enc.Encode(tpl, "example.com")
	assert.Error(t, err)
}

func TestHostnameTooLong(t *testing.T) {
	enc := New()
	tpl, _ := fingerprint.TemplateByName("chrome")
	_, err := enc.Encode(tpl, strings.Repeat("a", 0x10000))
	assert.ErrorIs(t, err, ErrHostnameTooLong)
}

func TestEncodeToBufferTooSmall(t *testing.T) {
	enc := New()
	tpl, _ := fingerprint.TemplateByName("chrome")

	_, err := enc.EncodeTo(make([]byte, 16), tpl, "example.com")
	assert.ErrorIs(t, err, ErrBufferTooSmall)

	_, err = enc.EncodeTo(nil, tpl, "example.com")
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestEncodeToMatchesEncode(t *testing.T) {
	enc := NewWithSource(&testutils.FixedSource{Byte: 0x11})
	tpl, _ := fingerprint.TemplateByName("safari")

	direct, err := enc.Encode(tpl, "example.com")
	require.NoError(t, err)

	buf := make([]byte, 4096)
	n, err := enc.EncodeTo(buf, tpl, "example.com")
	require.NoError(t, err)
	assert.Equal(t, direct, buf[:n])
}

func TestChromeOutputWithinExpectedBounds(t *testing.T) {
	enc := New()
	tpl, _ := fingerprint.TemplateByName("chrome")
	out, err := enc.Encode(tpl, "example.com")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(out), 150)
	assert.LessOrEqual(t, len(out), 600)
}

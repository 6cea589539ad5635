package clienthello

import (
	"github.com/gocircum/mimictls/core/constants"
	"github.com/gocircum/mimictls/core/fingerprint"
)

// extension is one typed ClientHello extension payload. Each variant
// knows how to emit its own body; the encoder wraps it in the common
// type(2)+length(2) framing.
type extension interface {
	// extType returns the IANA extension type code.
	extType() uint16
	// encodeBody emits the extension payload (without framing).
	encodeBody(b *builder)
}

// sniExtension carries the server_name payload: a one-entry server name
// list with entry type host_name.
type sniExtension struct {
	hostname string
}

func (sniExtension) extType() uint16 { return constants.ExtServerName }

func (e sniExtension) encodeBody(b *builder) {
	listLen := b.markU16()
	b.appendU8(0x00) // host_name
	b.appendU16(uint16(len(e.hostname)))
	b.appendBytes([]byte(e.hostname))
	b.patchU16(listLen)
}

// supportedGroupsExtension carries the template's curve list.
type supportedGroupsExtension struct {
	curves []uint16
}

func (supportedGroupsExtension) extType() uint16 { return constants.ExtSupportedGroups }

func (e supportedGroupsExtension) encodeBody(b *builder) {
	listLen := b.markU16()
	for _, curve := range e.curves {
		b.appendU16(curve)
	}
	b.patchU16(listLen)
}

// signatureAlgorithmsExtension advertises the fixed three-scheme list
// every builtin template shares.
type signatureAlgorithmsExtension struct{}

func (signatureAlgorithmsExtension) extType() uint16 { return constants.ExtSignatureAlgorithms }

func (signatureAlgorithmsExtension) encodeBody(b *builder) {
	listLen := b.markU16()
	b.appendU16(constants.SigECDSAP256SHA256)
	b.appendU16(constants.SigRSAPSSSHA256)
	b.appendU16(constants.SigRSAPKCS1SHA256)
	b.patchU16(listLen)
}

// alpnExtension advertises the first configured protocol.
type alpnExtension struct {
	protocol string
}

func (alpnExtension) extType() uint16 { return constants.ExtALPN }

func (e alpnExtension) encodeBody(b *builder) {
	listLen := b.markU16()
	b.appendU8(byte(len(e.protocol)))
	b.appendBytes([]byte(e.protocol))
	b.patchU16(listLen)
}

// supportedVersionsExtension offers TLS 1.3 and 1.2.
type supportedVersionsExtension struct{}

func (supportedVersionsExtension) extType() uint16 { return constants.ExtSupportedVersions }

func (supportedVersionsExtension) encodeBody(b *builder) {
	b.appendU8(4)
	b.appendU16(constants.VersionTLS13)
	b.appendU16(constants.VersionTLS12)
}

// ecPointFormatsExtension offers the uncompressed point format only.
type ecPointFormatsExtension struct{}

func (ecPointFormatsExtension) extType() uint16 { return constants.ExtECPointFormats }

func (ecPointFormatsExtension) encodeBody(b *builder) {
	b.appendU8(1)
	b.appendU8(0x00) // uncompressed
}

// sessionTicketExtension is an empty SessionTicket TLS offer.
type sessionTicketExtension struct{}

func (sessionTicketExtension) extType() uint16 { return constants.ExtSessionTicket }

func (sessionTicketExtension) encodeBody(*builder) {}

// opaqueExtension is the fallback for extension types the encoder has no
// payload model for: they are emitted as zero-length placeholders so an
// unknown type in a template degrades instead of failing.
type opaqueExtension struct {
	typ uint16
}

func (e opaqueExtension) extType() uint16 { return e.typ }

func (opaqueExtension) encodeBody(*builder) {}

// extensionFor resolves an extension type code from a template's order
// list into its typed variant. A nil return means the extension is
// omitted entirely (ALPN with no configured protocols).
func extensionFor(typ uint16, tpl *fingerprint.Template, hostname string) extension {
	switch typ {
	case constants.ExtServerName:
		return sniExtension{hostname: hostname}
	case constants.ExtSupportedGroups:
		return supportedGroupsExtension{curves: tpl.EllipticCurves}
	case constants.ExtSignatureAlgorithms:
		return signatureAlgorithmsExtension{}
	case constants.ExtALPN:
		proto := tpl.FirstALPN()
		if proto == "" {
			return nil
		}
		return alpnExtension{protocol: proto}
	case constants.ExtSupportedVersions:
		return supportedVersionsExtension{}
	case constants.ExtECPointFormats:
		return ecPointFormatsExtension{}
	case constants.ExtSessionTicket:
		return sessionTicketExtension{}
	default:
		return opaqueExtension{typ: typ}
	}
}

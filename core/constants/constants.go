// Package constants holds the TLS wire-level constants shared by the
// fingerprint catalog, the ClientHello encoder and the negotiation
// state machine.
package constants

// TLS protocol versions (wire values).
const (
	VersionSSL30 uint16 = 0x0300
	VersionTLS10 uint16 = 0x0301
	VersionTLS11 uint16 = 0x0302
	VersionTLS12 uint16 = 0x0303
	VersionTLS13 uint16 = 0x0304
)

// TLSVersionMap maps configuration strings to wire values.
var TLSVersionMap = map[string]uint16{
	"ssl3.0": VersionSSL30,
	"1.0":    VersionTLS10,
	"1.1":    VersionTLS11,
	"1.2":    VersionTLS12,
	"1.3":    VersionTLS13,
}

// VersionName returns the configuration string for a wire value, or
// an empty string for unknown versions.
func VersionName(v uint16) string {
	for name, wire := range TLSVersionMap {
		if wire == v {
			return name
		}
	}
	return ""
}

// Record layer.
const (
	ContentTypeHandshake     byte = 0x16
	HandshakeTypeClientHello byte = 0x01

	RecordHeaderLen    = 5
	HandshakeHeaderLen = 4
	HelloRandomLen     = 32
)

// Extension type codes (IANA).
const (
	ExtServerName           uint16 = 0x0000
	ExtSupportedGroups      uint16 = 0x000a
	ExtECPointFormats       uint16 = 0x000b
	ExtSignatureAlgorithms  uint16 = 0x000d
	ExtALPN                 uint16 = 0x0010
	ExtSessionTicket        uint16 = 0x0023
	ExtSupportedVersions    uint16 = 0x002b
	ExtRenegotiationInfo    uint16 = 0xff01
	ExtExtendedMasterSecret uint16 = 0x0017
	ExtStatusRequest        uint16 = 0x0005
	ExtPSKKeyExchangeModes  uint16 = 0x002d
	ExtKeyShare             uint16 = 0x0033
	ExtRecordSizeLimit      uint16 = 0x001c
	ExtCompressCertificate  uint16 = 0x001b
	ExtSignedCertTimestamp  uint16 = 0x0012
)

// Cipher suites used by the builtin browser templates.
const (
	TLS_AES_128_GCM_SHA256                        uint16 = 0x1301
	TLS_AES_256_GCM_SHA384                        uint16 = 0x1302
	TLS_CHACHA20_POLY1305_SHA256                  uint16 = 0x1303
	TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256       uint16 = 0xc02b
	TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384       uint16 = 0xc02c
	TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256         uint16 = 0xc02f
	TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384         uint16 = 0xc030
	TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256 uint16 = 0xcca9
	TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256   uint16 = 0xcca8
	TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA            uint16 = 0xc013
	TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA            uint16 = 0xc014
	TLS_RSA_WITH_AES_128_GCM_SHA256               uint16 = 0x009c
	TLS_RSA_WITH_AES_256_GCM_SHA384               uint16 = 0x009d
	TLS_RSA_WITH_AES_128_CBC_SHA                  uint16 = 0x002f
	TLS_RSA_WITH_AES_256_CBC_SHA                  uint16 = 0x0035
)

// Elliptic curve / supported group codes.
const (
	CurveX25519    uint16 = 0x001d
	CurveSecp256r1 uint16 = 0x0017
	CurveSecp384r1 uint16 = 0x0018
	CurveSecp521r1 uint16 = 0x0019
	CurveFFDHE2048 uint16 = 0x0100
)

// Signature scheme codes for the signature_algorithms extension.
const (
	SigECDSAP256SHA256 uint16 = 0x0403
	SigRSAPSSSHA256    uint16 = 0x0804
	SigRSAPKCS1SHA256  uint16 = 0x0401
)

// Package fingerprint holds the catalog of browser TLS fingerprint
// templates used to shape outgoing ClientHello bytes. Each template
// captures the ordered parameters that make a handshake attributable to
// a specific browser: cipher-suite order, extension order, curve list
// and ALPN protocols. Templates are immutable package-level values and
// safe to share across goroutines.
package fingerprint

import (
	"strings"

	"github.com/gocircum/mimictls/core/constants"
)

// MimicMode selects the kind of traffic the obfuscated handshake should
// resemble. Modes map many-to-one onto templates.
type MimicMode int

const (
	ModeBrowserHTTPS MimicMode = iota
	ModeVideoConference
	ModeStreaming
	ModeGenericTLS
	ModeMobileApp
)

// String returns the configuration name of the mode.
func (m MimicMode) String() string {
	switch m {
	case ModeBrowserHTTPS:
		return "browser_https"
	case ModeVideoConference:
		return "video_conference"
	case ModeStreaming:
		return "streaming"
	case ModeGenericTLS:
		return "generic_tls"
	case ModeMobileApp:
		return "mobile_app"
	default:
		return "unknown"
	}
}

// ModeFromString parses a configuration name. Unknown names map to
// ModeGenericTLS so callers always get a usable mode.
func ModeFromString(s string) MimicMode {
	switch strings.ToLower(s) {
	case "browser_https":
		return ModeBrowserHTTPS
	case "video_conference":
		return ModeVideoConference
	case "streaming":
		return ModeStreaming
	case "mobile_app":
		return ModeMobileApp
	default:
		return ModeGenericTLS
	}
}

// Modes lists every mimic mode.
func Modes() []MimicMode {
	return []MimicMode{
		ModeBrowserHTTPS,
		ModeVideoConference,
		ModeStreaming,
		ModeGenericTLS,
		ModeMobileApp,
	}
}

// Template is one browser identity to impersonate. Order is significant
// in CipherSuites, ExtensionOrder and EllipticCurves: it is part of the
// fingerprint.
type Template struct {
	Name              string
	UserAgent         string
	TLSVersion        uint16
	CipherSuites      []uint16
	ExtensionOrder    []uint16
	EllipticCurves    []uint16
	ALPNProtocols     string // comma-joined, first is sent
	RecordSizeHint    uint16
	HandshakeTimingMs uint32
	GREASESupport     bool
}

// FirstALPN returns the protocol the encoder advertises, or an empty
// string when the template carries no ALPN list.
func (t *Template) FirstALPN() string {
	if t.ALPNProtocols == "" {
		return ""
	}
	proto, _, _ := strings.Cut(t.ALPNProtocols, ",")
	return strings.TrimSpace(proto)
}

var chromeTemplate = Template{
	Name:       "chrome",
	UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	TLSVersion: constants.VersionTLS12,
	CipherSuites: []uint16{
		constants.TLS_AES_128_GCM_SHA256,
		constants.TLS_AES_256_GCM_SHA384,
		constants.TLS_CHACHA20_POLY1305_SHA256,
		constants.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		constants.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		constants.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		constants.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		constants.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
		constants.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		constants.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA,
		constants.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
		constants.TLS_RSA_WITH_AES_128_GCM_SHA256,
		constants.TLS_RSA_WITH_AES_256_GCM_SHA384,
		constants.TLS_RSA_WITH_AES_128_CBC_SHA,
		constants.TLS_RSA_WITH_AES_256_CBC_SHA,
	},
	ExtensionOrder: []uint16{
		constants.ExtServerName,
		constants.ExtExtendedMasterSecret,
		constants.ExtRenegotiationInfo,
		constants.ExtSupportedGroups,
		constants.ExtECPointFormats,
		constants.ExtSessionTicket,
		constants.ExtALPN,
		constants.ExtStatusRequest,
		constants.ExtSignatureAlgorithms,
		constants.ExtSupportedVersions,
		constants.ExtPSKKeyExchangeModes,
		constants.ExtCompressCertificate,
	},
	EllipticCurves: []uint16{
		constants.CurveX25519,
		constants.CurveSecp256r1,
		constants.CurveSecp384r1,
	},
	ALPNProtocols:     "h2,http/1.1",
	RecordSizeHint:    16384,
	HandshakeTimingMs: 50,
	GREASESupport:     true,
}

var firefoxTemplate = Template{
	Name:       "firefox",
	UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	TLSVersion: constants.VersionTLS12,
	CipherSuites: []uint16{
		constants.TLS_AES_128_GCM_SHA256,
		constants.TLS_CHACHA20_POLY1305_SHA256,
		constants.TLS_AES_256_GCM_SHA384,
		constants.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		constants.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		constants.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
		constants.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		constants.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		constants.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		constants.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA,
		constants.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
		constants.TLS_RSA_WITH_AES_128_GCM_SHA256,
		constants.TLS_RSA_WITH_AES_256_GCM_SHA384,
	},
	ExtensionOrder: []uint16{
		constants.ExtServerName,
		constants.ExtExtendedMasterSecret,
		constants.ExtRenegotiationInfo,
		constants.ExtSupportedGroups,
		constants.ExtECPointFormats,
		constants.ExtALPN,
		constants.ExtStatusRequest,
		constants.ExtSignatureAlgorithms,
		constants.ExtSupportedVersions,
		constants.ExtPSKKeyExchangeModes,
		constants.ExtRecordSizeLimit,
	},
	EllipticCurves: []uint16{
		constants.CurveX25519,
		constants.CurveSecp256r1,
		constants.CurveSecp384r1,
		constants.CurveSecp521r1,
		constants.CurveFFDHE2048,
	},
	ALPNProtocols:     "h2,http/1.1",
	RecordSizeHint:    16385,
	HandshakeTimingMs: 60,
	GREASESupport:     false,
}

var safariTemplate = Template{
	Name:       "safari",
	UserAgent:  "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Safari/605.1.15",
	TLSVersion: constants.VersionTLS12,
	CipherSuites: []uint16{
		constants.TLS_AES_128_GCM_SHA256,
		constants.TLS_AES_256_GCM_SHA384,
		constants.TLS_CHACHA20_POLY1305_SHA256,
		constants.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		constants.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		constants.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
		constants.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		constants.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		constants.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		constants.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
		constants.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA,
		constants.TLS_RSA_WITH_AES_256_GCM_SHA384,
		constants.TLS_RSA_WITH_AES_128_GCM_SHA256,
		constants.TLS_RSA_WITH_AES_256_CBC_SHA,
		constants.TLS_RSA_WITH_AES_128_CBC_SHA,
	},
	ExtensionOrder: []uint16{
		constants.ExtServerName,
		constants.ExtExtendedMasterSecret,
		constants.ExtRenegotiationInfo,
		constants.ExtSupportedGroups,
		constants.ExtECPointFormats,
		constants.ExtALPN,
		constants.ExtStatusRequest,
		constants.ExtSignatureAlgorithms,
		constants.ExtSignedCertTimestamp,
		constants.ExtSupportedVersions,
		constants.ExtPSKKeyExchangeModes,
	},
	EllipticCurves: []uint16{
		constants.CurveX25519,
		constants.CurveSecp256r1,
		constants.CurveSecp384r1,
		constants.CurveSecp521r1,
	},
	ALPNProtocols:     "h2,http/1.1",
	RecordSizeHint:    16384,
	HandshakeTimingMs: 45,
	GREASESupport:     true,
}

var edgeTemplate = Template{
	Name:       "edge",
	UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
	TLSVersion: constants.VersionTLS12,
	CipherSuites: []uint16{
		constants.TLS_AES_128_GCM_SHA256,
		constants.TLS_AES_256_GCM_SHA384,
		constants.TLS_CHACHA20_POLY1305_SHA256,
		constants.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		constants.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		constants.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		constants.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		constants.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA,
		constants.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
		constants.TLS_RSA_WITH_AES_128_GCM_SHA256,
		constants.TLS_RSA_WITH_AES_256_GCM_SHA384,
	},
	ExtensionOrder: []uint16{
		constants.ExtServerName,
		constants.ExtExtendedMasterSecret,
		constants.ExtRenegotiationInfo,
		constants.ExtSupportedGroups,
		constants.ExtECPointFormats,
		constants.ExtSessionTicket,
		constants.ExtALPN,
		constants.ExtSignatureAlgorithms,
		constants.ExtSupportedVersions,
	},
	EllipticCurves: []uint16{
		constants.CurveX25519,
		constants.CurveSecp256r1,
		constants.CurveSecp384r1,
	},
	ALPNProtocols:     "h2,http/1.1",
	RecordSizeHint:    16384,
	HandshakeTimingMs: 55,
	GREASESupport:     true,
}

var mobileChromeTemplate = Template{
	Name:       "mobile_chrome",
	UserAgent:  "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Mobile Safari/537.36",
	TLSVersion: constants.VersionTLS12,
	CipherSuites: []uint16{
		constants.TLS_AES_128_GCM_SHA256,
		constants.TLS_AES_256_GCM_SHA384,
		constants.TLS_CHACHA20_POLY1305_SHA256,
		constants.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		constants.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		constants.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
		constants.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		constants.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA,
		constants.TLS_RSA_WITH_AES_128_GCM_SHA256,
	},
	ExtensionOrder: []uint16{
		constants.ExtServerName,
		constants.ExtExtendedMasterSecret,
		constants.ExtRenegotiationInfo,
		constants.ExtSupportedGroups,
		constants.ExtECPointFormats,
		constants.ExtSessionTicket,
		constants.ExtALPN,
		constants.ExtSignatureAlgorithms,
		constants.ExtSupportedVersions,
		constants.ExtPSKKeyExchangeModes,
	},
	EllipticCurves: []uint16{
		constants.CurveX25519,
		constants.CurveSecp256r1,
		constants.CurveSecp384r1,
	},
	ALPNProtocols:     "h2,http/1.1",
	RecordSizeHint:    8192,
	HandshakeTimingMs: 80,
	GREASESupport:     true,
}

var mobileSafariTemplate = Template{
	Name:       "mobile_safari",
	UserAgent:  "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
	TLSVersion: constants.VersionTLS12,
	CipherSuites: []uint16{
		constants.TLS_AES_128_GCM_SHA256,
		constants.TLS_AES_256_GCM_SHA384,
		constants.TLS_CHACHA20_POLY1305_SHA256,
		constants.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		constants.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		constants.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
		constants.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		constants.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		constants.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		constants.TLS_RSA_WITH_AES_256_GCM_SHA384,
		constants.TLS_RSA_WITH_AES_128_GCM_SHA256,
	},
	ExtensionOrder: []uint16{
		constants.ExtServerName,
		constants.ExtExtendedMasterSecret,
		constants.ExtRenegotiationInfo,
		constants.ExtSupportedGroups,
		constants.ExtECPointFormats,
		constants.ExtALPN,
		constants.ExtStatusRequest,
		constants.ExtSignatureAlgorithms,
		constants.ExtSignedCertTimestamp,
		constants.ExtSupportedVersions,
	},
	EllipticCurves: []uint16{
		constants.CurveX25519,
		constants.CurveSecp256r1,
		constants.CurveSecp384r1,
		constants.CurveSecp521r1,
	},
	ALPNProtocols:     "h2,http/1.1",
	RecordSizeHint:    8192,
	HandshakeTimingMs: 70,
	GREASESupport:     true,
}

// templates indexes the builtin catalog by name. Adding a browser only
// requires inserting a new entry here.
var templates = map[string]*Template{
	"chrome":        &chromeTemplate,
	"firefox":       &firefoxTemplate,
	"safari":        &safariTemplate,
	"edge":          &edgeTemplate,
	"mobile_chrome": &mobileChromeTemplate,
	"mobile_safari": &mobileSafariTemplate,
}

// TemplateFor selects the template used for a mimic mode. It is total:
// unknown modes fall back to the Edge-like generic template.
func TemplateFor(mode MimicMode) *Template {
	switch mode {
	case ModeBrowserHTTPS:
		return &chromeTemplate
	case ModeVideoConference:
		return &firefoxTemplate
	case ModeStreaming:
		return &safariTemplate
	case ModeMobileApp:
		return &mobileChromeTemplate
	default:
		return &edgeTemplate
	}
}

// TemplateByName looks a template up by its catalog name.
func TemplateByName(name string) (*Template, bool) {
	t, ok := templates[strings.ToLower(name)]
	return t, ok
}

// Names lists the catalog template names in a stable order.
func Names() []string {
	return []string{"chrome", "firefox", "safari", "edge", "mobile_chrome", "mobile_safari"}
}

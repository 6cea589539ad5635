package fingerprint

import (
	"fmt"
	"net"

	utls "github.com/refraction-networking/utls"
)

// HelloIDForMode maps a mimic mode to the uTLS ClientHelloID whose real
// handshake most closely matches the mode's template. Callers that need
// a genuine TLS session (rather than shape-only bytes) hand this to
// NewUClient.
func HelloIDForMode(mode MimicMode) utls.ClientHelloID {
	switch mode {
	case ModeBrowserHTTPS:
		return utls.HelloChrome_Auto
	case ModeVideoConference:
		return utls.HelloFirefox_Auto
	case ModeStreaming:
		return utls.HelloSafari_Auto
	case ModeMobileApp:
		return utls.HelloAndroid_11_OkHttp
	default:
		return utls.HelloEdge_Auto
	}
}

// HelloIDMap maps configuration strings to uTLS ClientHelloIDs for
// callers that select the fingerprint by name.
var HelloIDMap = map[string]utls.ClientHelloID{
	"chrome":        utls.HelloChrome_Auto,
	"firefox":       utls.HelloFirefox_Auto,
	"safari":        utls.HelloSafari_Auto,
	"edge":          utls.HelloEdge_Auto,
	"mobile_chrome": utls.HelloAndroid_11_OkHttp,
	"mobile_safari": utls.HelloIOS_Auto,
	"randomized":    utls.HelloRandomized,
}

// NewUClient wraps an established connection in a uTLS client carrying
// the fingerprint for the given mode and performs the handshake. This is
// the escape hatch for callers that want the impersonated fingerprint
// on a real TLS session instead of the emulated record bytes.
func NewUClient(rawConn net.Conn, sni string, mode MimicMode) (net.Conn, error) {
	cfg := &utls.Config{
		ServerName: sni,
		MinVersion: utls.VersionTLS12,
		MaxVersion: utls.VersionTLS13,
	}

	uconn := utls.UClient(rawConn, cfg, HelloIDForMode(mode))
	if err := uconn.Handshake(); err != nil {
		return nil, fmt.Errorf("uTLS handshake failed: %w", err)
	}
	return uconn, nil
}

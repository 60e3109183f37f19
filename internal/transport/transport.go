// Package transport builds the http.RoundTripper used to reach the backend
// and the pages submitted for indexing.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	utls "github.com/refraction-networking/utls"
)

// Profile names the TLS ClientHello a transport presents.
type Profile string

const (
	ProfileGo      Profile = "go" // standard crypto/tls
	ProfileChrome  Profile = "chrome"
	ProfileFirefox Profile = "firefox"
	ProfileSafari  Profile = "safari"
)

// ParseProfile maps a configuration value onto a Profile. The empty string
// selects ProfileGo.
func ParseProfile(s string) (Profile, error) {
	switch p := Profile(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProfileGo, nil
	case ProfileGo, ProfileChrome, ProfileFirefox, ProfileSafari:
		return p, nil
	default:
		return "", fmt.Errorf("context: unknown profile %q", s)
	}
}

// Options configures New.
type Options struct {
	Profile Profile
	// InsecureSkipVerify disables certificate checks, for development
	// backends with self-signed certificates only.
	InsecureSkipVerify bool
	// Proxy overrides http.ProxyFromEnvironment when set.
	Proxy func(*http.Request) (*url.URL, error)
}

// New returns an *http.Transport cloned from http.DefaultTransport. Browser
// profiles replace the TLS dial with a uTLS handshake.
func New(opts Options) (*http.Transport, error) {
	if opts.Profile == "" {
		opts.Profile = ProfileGo
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Proxy != nil {
		transport.Proxy = opts.Proxy
	}

	if opts.Profile == ProfileGo {
		if opts.InsecureSkipVerify {
			if transport.TLSClientConfig == nil {
				transport.TLSClientConfig = &tls.Config{}
			}
			transport.TLSClientConfig.InsecureSkipVerify = true
		}
		return transport, nil
	}

	var helloID utls.ClientHelloID
	switch opts.Profile {
	case ProfileChrome:
		helloID = utls.HelloChrome_Auto
	case ProfileFirefox:
		helloID = utls.HelloFirefox_Auto
	case ProfileSafari:
		helloID = utls.HelloIOS_Auto
	default:
		return nil, fmt.Errorf("context: unknown profile %q", opts.Profile)
	}

	dial := transport.DialContext
	transport.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		tcpConn, err := dial(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}

		uConn := utls.UClient(tcpConn, &utls.Config{
			ServerName:         host,
			InsecureSkipVerify: opts.InsecureSkipVerify,
		}, helloID)
		if err := uConn.HandshakeContext(ctx); err != nil {
			_ = tcpConn.Close()
			return nil, fmt.Errorf("context: utls handshake failed: %w", err)
		}

		return uConn, nil
	}

	return transport, nil
}

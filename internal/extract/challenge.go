package extract

import (
	"bytes"
	"net/http"
	"strings"
)

// ChallengeDetector reports whether a fetched page is a bot-protection
// challenge or block page rather than the page's content, and names the
// provider.
type ChallengeDetector func(p *Page) (provider string, ok bool)

// DefaultChallengeDetectors covers the common bot-protection providers.
func DefaultChallengeDetectors() []ChallengeDetector {
	return []ChallengeDetector{
		cloudflareChallenge,
		akamaiChallenge,
		dataDomeChallenge,
		perimeterXChallenge,
	}
}

// DetectChallenge runs p through detectors and returns the first provider
// that matched.
func DetectChallenge(p *Page, detectors []ChallengeDetector) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, d := range detectors {
		if provider, ok := d(p); ok {
			return provider, true
		}
	}
	return "", false
}

func serverHeader(p *Page) string {
	return strings.ToLower(p.Header.Get("Server"))
}

func cloudflareChallenge(p *Page) (string, bool) {
	if p.StatusCode != http.StatusForbidden && p.StatusCode != http.StatusServiceUnavailable {
		return "", false
	}
	if strings.Contains(serverHeader(p), "cloudflare") ||
		bytes.Contains(p.Body, []byte("cf-browser-verification")) ||
		bytes.Contains(p.Body, []byte("cf-turnstile")) ||
		bytes.Contains(p.Body, []byte("Attention Required! | Cloudflare")) {
		return "Cloudflare", true
	}
	return "", false
}

func akamaiChallenge(p *Page) (string, bool) {
	if p.StatusCode != http.StatusForbidden {
		return "", false
	}
	if strings.Contains(serverHeader(p), "akamai") {
		return "Akamai", true
	}
	// Generic "Access Denied ... Reference #" block page.
	if bytes.Contains(p.Body, []byte("Reference #")) && bytes.Contains(p.Body, []byte("Access Denied")) {
		return "Akamai", true
	}
	return "", false
}

func dataDomeChallenge(p *Page) (string, bool) {
	if p.StatusCode != http.StatusForbidden {
		return "", false
	}
	if strings.Contains(serverHeader(p), "datadome") ||
		p.Header.Get("X-DataDome") != "" ||
		p.Header.Get("X-DataDome-Response") != "" ||
		bytes.Contains(p.Body, []byte("geo.captcha-delivery.com")) {
		return "DataDome", true
	}
	return "", false
}

func perimeterXChallenge(p *Page) (string, bool) {
	if p.StatusCode != http.StatusForbidden {
		return "", false
	}
	if p.Header.Get("X-Px-Captcha") != "" ||
		bytes.Contains(p.Body, []byte("client.perimeterx.net")) ||
		bytes.Contains(p.Body, []byte("px-captcha")) ||
		bytes.Contains(p.Body, []byte("_pxBlock")) {
		return "PerimeterX", true
	}
	return "", false
}

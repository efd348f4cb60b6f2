package bypass

import (
	"bytes"
	"net/http"
)

// Detector examines a fetch response to determine whether a bot protection
// mechanism blocked or challenged the request.
type Detector func(statusCode int, headers http.Header, body []byte) (detected bool, source string)

// DefaultDetectors returns the standard list of bot protection detectors.
func DefaultDetectors() []Detector {
	return []Detector{
		detectCloudflare,
		detectAkamai,
		detectDataDome,
		detectPerimeterX,
	}
}

// Analyze runs the response through all provided detectors and reports the
// first source that triggers.
func Analyze(statusCode int, headers http.Header, body []byte, detectors []Detector) (bool, string) {
	for _, d := range detectors {
		if detected, source := d(statusCode, headers, body); detected {
			return true, source
		}
	}
	return false, ""
}

// detectCloudflare looks for common Cloudflare challenge/block signatures.
func detectCloudflare(statusCode int, headers http.Header, body []byte) (bool, string) {
	// Status codes 403 or 503 are common for CF challenges
	if statusCode != http.StatusForbidden && statusCode != http.StatusServiceUnavailable {
		return false, ""
	}

	if containsFold(headers.Get("Server"), "cloudflare") {
		return true, "Cloudflare"
	}

	if bytes.Contains(body, []byte("cf-browser-verification")) ||
		bytes.Contains(body, []byte("cloudflare-nginx")) ||
		bytes.Contains(body, []byte("cf-turnstile")) ||
		bytes.Contains(body, []byte("Attention Required! | Cloudflare")) {
		return true, "Cloudflare"
	}

	return false, ""
}

// detectAkamai looks for Akamai Bot Manager signatures.
func detectAkamai(statusCode int, headers http.Header, body []byte) (bool, string) {
	if statusCode != http.StatusForbidden {
		return false, ""
	}

	if containsFold(headers.Get("Server"), "akamai") {
		return true, "Akamai"
	}

	// Akamai often returns a generic "Reference #" block page
	if bytes.Contains(body, []byte("Reference #")) && bytes.Contains(body, []byte("Access Denied")) {
		return true, "Akamai"
	}

	return false, ""
}

// detectDataDome looks for DataDome challenge/block signatures.
func detectDataDome(statusCode int, headers http.Header, body []byte) (bool, string) {
	if statusCode != http.StatusForbidden {
		return false, ""
	}

	if containsFold(headers.Get("Server"), "datadome") {
		return true, "DataDome"
	}

	if headers.Get("X-DataDome") != "" || headers.Get("X-DataDome-Response") != "" {
		return true, "DataDome"
	}

	if bytes.Contains(body, []byte("geo.captcha-delivery.com")) || bytes.Contains(body, []byte("datadome")) {
		return true, "DataDome"
	}

	return false, ""
}

// detectPerimeterX looks for PerimeterX (HUMAN) signatures.
func detectPerimeterX(statusCode int, headers http.Header, body []byte) (bool, string) {
	if statusCode != http.StatusForbidden {
		return false, ""
	}

	if headers.Get("X-Px-Captcha") != "" {
		return true, "PerimeterX"
	}

	if bytes.Contains(body, []byte("client.perimeterx.net")) ||
		bytes.Contains(body, []byte("px-captcha")) ||
		bytes.Contains(body, []byte("_pxBlock")) {
		return true, "PerimeterX"
	}

	return false, ""
}

func containsFold(haystack, needle string) bool {
	return len(haystack) > 0 && bytes.Contains(bytes.ToLower([]byte(haystack)), []byte(needle))
}

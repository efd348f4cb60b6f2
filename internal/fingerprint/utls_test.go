package fingerprint

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestTransport_GoProfile(t *testing.T) {
	transport, err := Transport(ProfileGo, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transport == nil {
		t.Fatal("expected non-nil transport")
	}
	if transport.DialTLSContext != nil {
		t.Error("go profile should not install a custom TLS dialer")
	}
}

func TestTransport_BrowserProfiles(t *testing.T) {
	for _, p := range []Profile{ProfileChrome, ProfileFirefox, ProfileSafari, ProfileRandom} {
		transport, err := Transport(p, nil)
		if err != nil {
			t.Fatalf("profile %s: unexpected error: %v", p, err)
		}
		if transport.DialTLSContext == nil {
			t.Errorf("profile %s: expected custom TLS dialer", p)
		}
	}
}

func TestTransport_UnknownProfile(t *testing.T) {
	if _, err := Transport(Profile("netscape"), nil); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestTransport_ProxyFuncInstalled(t *testing.T) {
	proxyURL, _ := url.Parse("http://127.0.0.1:9999")
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		return proxyURL, nil
	}

	transport, err := Transport(ProfileGo, proxyFunc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	got, err := transport.Proxy(req)
	if err != nil {
		t.Fatalf("proxy func failed: %v", err)
	}
	if got.String() != proxyURL.String() {
		t.Errorf("expected proxy %s, got %s", proxyURL, got)
	}
}

func TestTransport_PlainHTTPFetch(t *testing.T) {
	// Browser profiles only alter the TLS dial path, so plain HTTP requests
	// must work unchanged.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	transport, err := Transport(ProfileChrome, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client := &http.Client{Transport: transport}
	resp, err := client.Get(ts.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

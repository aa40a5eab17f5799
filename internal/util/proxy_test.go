package util

import (
	"net/http"
	"net/url"
	"testing"
)

func proxyFor(t *testing.T, fn func(*http.Request) (*url.URL, error), rawURL string) string {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	u, err := fn(req)
	if err != nil {
		t.Fatalf("proxy func failed: %v", err)
	}
	if u == nil {
		return ""
	}
	return u.String()
}

func TestNewProxyFunc(t *testing.T) {
	fn := NewProxyFunc("http://proxy.internal:3128", "", "annotator.internal,.corp.example")

	tests := []struct {
		url      string
		expected string
	}{
		{"http://api.example.com/parse", "http://proxy.internal:3128"},
		{"https://api.example.com/coref", "http://proxy.internal:3128"},
		{"http://annotator.internal:8000/parse", ""},
		{"http://nlp.corp.example/parse", ""},
	}

	for _, tt := range tests {
		if got := proxyFor(t, fn, tt.url); got != tt.expected {
			t.Errorf("%s: expected proxy %q, got %q", tt.url, tt.expected, got)
		}
	}
}

func TestNewProxyFunc_SeparateHTTPS(t *testing.T) {
	fn := NewProxyFunc("http://plain:3128", "http://secure:3129", "")

	if got := proxyFor(t, fn, "https://api.example.com"); got != "http://secure:3129" {
		t.Errorf("expected https proxy, got %q", got)
	}
	if got := proxyFor(t, fn, "http://api.example.com"); got != "http://plain:3128" {
		t.Errorf("expected http proxy, got %q", got)
	}
}

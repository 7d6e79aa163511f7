package http

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrustedRealIP(t *testing.T) {
	proxies := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name    string
		proxies []netip.Prefix
		remote  string
		header  string
		want    string
	}{
		{"trusted proxy", proxies, "10.1.2.3:8080", "203.0.113.9", "203.0.113.9"},
		{"untrusted peer", proxies, "198.51.100.7:5555", "203.0.113.9", "198.51.100.7:5555"},
		{"no proxies configured", nil, "10.1.2.3:8080", "203.0.113.9", "10.1.2.3:8080"},
		{"trusted proxy without header", proxies, "10.1.2.3:8080", "", "10.1.2.3:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := TrustedRealIP(tt.proxies)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.header != "" {
				req.Header.Set("X-Forwarded-For", tt.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestNoDirListing(t *testing.T) {
	h := noDirListing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dir/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

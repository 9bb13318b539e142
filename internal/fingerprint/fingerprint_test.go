package fingerprint

import (
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest_Deterministic(t *testing.T) {
	r1 := httptest.NewRequest("POST", "/api/auth/login", nil)
	r1.Header.Set("User-Agent", "Mozilla/5.0")
	r1.Header.Set("Accept-Language", "en-US")
	r1.Header.Set("Accept-Encoding", "gzip")
	r1.RemoteAddr = "203.0.113.7:51234"

	r2 := httptest.NewRequest("POST", "/api/auth/verify-otp", nil)
	r2.Header.Set("User-Agent", "Mozilla/5.0")
	r2.Header.Set("Accept-Language", "en-US")
	r2.Header.Set("Accept-Encoding", "gzip")
	r2.RemoteAddr = "203.0.113.7:9999" // different port, same host

	assert.Equal(t, FromRequest(r1), FromRequest(r2))
}

func TestFromRequest_HexDigest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	fp := FromRequest(r)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), fp)
}

func TestFromRequest_SignalChangesDigest(t *testing.T) {
	base := httptest.NewRequest("GET", "/", nil)
	base.Header.Set("User-Agent", "Mozilla/5.0")
	base.RemoteAddr = "203.0.113.7:1"

	other := httptest.NewRequest("GET", "/", nil)
	other.Header.Set("User-Agent", "curl/8.0")
	other.RemoteAddr = "203.0.113.7:1"

	assert.NotEqual(t, FromRequest(base), FromRequest(other))
}

func TestFromRequest_MissingHeadersDefaultEmpty(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Del("User-Agent")
	r.RemoteAddr = "192.0.2.1:80"

	// Must not panic and must stay stable.
	assert.Equal(t, FromRequest(r), FromRequest(r))
}

func TestFromRequest_ForwardedForFallback(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = ""
	r.Header.Set("X-Forwarded-For", "198.51.100.9, 10.0.0.1")

	direct := httptest.NewRequest("GET", "/", nil)
	direct.RemoteAddr = "198.51.100.9:443"

	assert.Equal(t, FromRequest(direct), FromRequest(r))
}

// Package fingerprint derives a coarse device identifier from request
// metadata. Distinct devices behind the same NAT with identical browser and
// OS settings can collide on the same fingerprint; callers must treat a match
// as a weak signal gated behind the OTP second factor, never as proof of
// identity.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
)

// FromRequest hashes the request's user agent, accept-language,
// accept-encoding and best-effort client address into a hex digest.
// Missing headers default to empty strings, so the function never fails
// and the same inputs always yield the same output.
func FromRequest(r *http.Request) string {
	userAgent := r.Header.Get("User-Agent")
	acceptLanguage := r.Header.Get("Accept-Language")
	acceptEncoding := r.Header.Get("Accept-Encoding")
	ip := clientIP(r)

	data := strings.Join([]string{userAgent, acceptLanguage, acceptEncoding, ip}, "|")
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// clientIP prefers the direct connection address, falling back to the first
// hop of X-Forwarded-For, then to empty.
func clientIP(r *http.Request) string {
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return ""
}

package clientip

import (
	"net"
	"net/http"
	"strings"
)

// DefaultHeaders are the proxy headers consulted by GetIP, in priority order.
var DefaultHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// GetIP returns the client address of r using DefaultHeaders, falling back
// to RemoteAddr. It returns "" when nothing parses as an IP.
func GetIP(r *http.Request) string {
	return Resolve(r, DefaultHeaders...)
}

// Resolve returns the first valid IP found in headers, then RemoteAddr.
// For X-Forwarded-For the left-most valid entry wins. With no headers only
// RemoteAddr is used, which is the safe choice when no proxy is trusted.
func Resolve(r *http.Request, headers ...string) string {
	for _, name := range headers {
		value := r.Header.Get(name)
		if value == "" {
			continue
		}
		for candidate := range strings.SplitSeq(value, ",") {
			if ip := parseIP(candidate); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP returns the canonical form of s, or "" if s is not an IP.
func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}

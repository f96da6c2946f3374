// Package clientip resolves the address of the caller of an HTTP request.
//
// Resolve walks a caller-chosen list of proxy headers and falls back to
// RemoteAddr. Headers are only as trustworthy as the proxy in front of the
// service, so the API passes none unless TRUSTED_PROXY_HEADERS is configured.
//
//	r.Use(clientip.Middleware("X-Forwarded-For"))
//	...
//	ip := clientip.GetIPFromContext(r.Context())
//
// The resolved address keys the rate limiter for unsigned requests and is
// attached to log records through LoggerExtractor.
package clientip

package middleware

import (
	"net/http"
)

// APIContentSecurityPolicy forbids every resource type. Responses are JSON or
// spreadsheet downloads and never render in the browser.
const APIContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

// SecurityHeaders sets the response hardening headers for the API.
// hsts adds Strict-Transport-Security and should only be set behind TLS.
// An empty csp omits the Content-Security-Policy header.
func SecurityHeaders(hsts bool, csp string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()")
			h.Set("Cache-Control", "no-store")
			if csp != "" {
				h.Set("Content-Security-Policy", csp)
			}
			if hsts {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

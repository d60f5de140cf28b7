package middleware

import (
	"net/http"

	"github.com/deskfolio/deskfolio/shared/csrf"
	"github.com/deskfolio/deskfolio/shared/logger"
)

// SetCSRFCookie issues a fresh double-submit token readable by the page script.
func SetCSRFCookie(w http.ResponseWriter, maxAge int, secure bool) error {
	token, err := csrf.GenerateToken()
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     csrf.CookieName,
		Value:    token,
		MaxAge:   maxAge,
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func ClearCSRFCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     csrf.CookieName,
		Value:    "",
		MaxAge:   -1,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// CSRF rejects state-changing requests authenticated by the session cookie
// unless the X-CSRF-Token header repeats the csrf cookie. Bearer clients
// carry no ambient credentials and are let through.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		if _, err := r.Cookie(AccessTokenCookie); err != nil {
			next.ServeHTTP(w, r)
			return
		}

		var cookieToken string
		if c, err := r.Cookie(csrf.CookieName); err == nil {
			cookieToken = c.Value
		}
		if !csrf.ValidateToken(cookieToken, r.Header.Get(csrf.HeaderName)) {
			logger.Log.Warn("csrf token mismatch", "component", "csrf_middleware", "path", r.URL.Path)
			http.Error(w, "Invalid CSRF token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

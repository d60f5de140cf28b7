package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/deskfolio/deskfolio/shared/domain"
	jwt_internal "github.com/deskfolio/deskfolio/shared/jwt"
	"github.com/deskfolio/deskfolio/shared/logger"
	"github.com/deskfolio/deskfolio/shared/utils"
)

const AccessTokenCookie = "accessToken"

// RevocationChecker reports tokens that were signed out before expiry.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenId string) (bool, error)
}

// Authorizer decides whether an identity may use the admin surface.
type Authorizer interface {
	Authorize(identity domain.Identity) bool
}

// Key to store the session in the request context
type key int

const SessionKey key = 0

type Auth struct {
	jwtService    jwt_internal.JwtService
	revocations   RevocationChecker
	gate          Authorizer
	secureCookies bool
}

func NewAuth(jwtService jwt_internal.JwtService, revocations RevocationChecker, gate Authorizer, secureCookies bool) *Auth {
	return &Auth{
		jwtService:    jwtService,
		revocations:   revocations,
		gate:          gate,
		secureCookies: secureCookies,
	}
}

// NeedAuth requires a valid, unrevoked session.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return a.auth(false)
}

// AdminOnly additionally requires the session identity to be on the allow-list.
// The check runs on every request so removing an address locks it out at once.
func (a *Auth) AdminOnly() func(http.Handler) http.Handler {
	return a.auth(true)
}

var (
	errNoToken = errors.New("no token")
	errRevoked = errors.New("revoked")
)

// TokenFromRequest returns the access token from the cookie or the
// Authorization header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		return token
	}
	return ""
}

func (a *Auth) extractSession(r *http.Request) (*domain.Session, error) {
	tokenString := TokenFromRequest(r)
	if tokenString == "" {
		return nil, errNoToken
	}

	session, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}

	if a.revocations != nil {
		revoked, err := a.revocations.IsRevoked(r.Context(), session.TokenId)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, errRevoked
		}
	}
	return &session, nil
}

// ClearSessionCookie expires the access token cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     AccessTokenCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Auth) auth(adminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := a.extractSession(r)
			if err != nil {
				switch {
				case errors.Is(err, errNoToken):
					http.Error(w, "Please sign-in", http.StatusUnauthorized)
				case errors.Is(err, errRevoked):
					ClearSessionCookie(w, a.secureCookies)
					http.Error(w, "Session ended, please sign-in again", http.StatusUnauthorized)
				default:
					utils.WriteErrorAndStatusCode(w, err)
				}
				return
			}

			if adminOnly && (a.gate == nil || !a.gate.Authorize(session.Identity)) {
				logger.Log.Warn("admin access denied", "component", "auth_middleware", "user_id", session.Id)
				ClearSessionCookie(w, a.secureCookies)
				http.Error(w, "Access denied. You are not authorized to access the admin panel.", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionFromContext returns the session set by NeedAuth/AdminOnly.
func GetSessionFromContext(r *http.Request) *domain.Session {
	session, ok := r.Context().Value(SessionKey).(*domain.Session)
	if !ok {
		return nil
	}
	return session
}

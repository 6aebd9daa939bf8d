package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/stackover-dev/stackover/internal/domain"
	internal_jwt "github.com/stackover-dev/stackover/internal/jwt"
	"github.com/stackover-dev/stackover/internal/logger"
)

// CookieName is the cookie the browser session lives in. Handlers that
// set or clear the session use the same name.
const CookieName = "access_token_cookie"

// RevocationChecker answers whether a token id has been revoked.
type RevocationChecker interface {
	IsRevoked(jti string) bool
}

// UserLoader fetches the current user record for an authenticated id.
type UserLoader interface {
	UserById(id domain.UserId) (domain.User, error)
}

// Key to store the user in the request context
type key int

const userKey key = 0

// Auth holds dependencies for authentication middleware
type Auth struct {
	jwtService    internal_jwt.JwtService
	revocation    RevocationChecker
	users         UserLoader
	secureCookies bool
}

func NewAuth(jwtService internal_jwt.JwtService, revocation RevocationChecker, users UserLoader, secureCookies bool) *Auth {
	return &Auth{
		jwtService:    jwtService,
		revocation:    revocation,
		users:         users,
		secureCookies: secureCookies,
	}
}

// NeedAuth returns middleware that requires authentication
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.extractUser(r)
			if err != nil {
				a.reject(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth returns middleware that populates user context if token is valid, but doesn't require auth
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := a.extractUser(r)
			if user != nil {
				ctx := context.WithValue(r.Context(), userKey, user)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractUser validates the token from cookie or Authorization header
// and loads the user it names. Any failure along the way means the
// request is anonymous; callers never learn which check failed.
func (a *Auth) extractUser(r *http.Request) (*domain.User, error) {
	// Cookie first (browser clients), then Authorization header (API clients)
	var tokenString string
	accessCookie, err := r.Cookie(CookieName)
	if err == nil {
		tokenString = accessCookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}

	if tokenString == "" {
		return nil, errNoToken
	}

	claims, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}

	if a.revocation.IsRevoked(claims.ID) {
		return nil, errRevoked
	}

	userId, err := claims.UserId()
	if err != nil {
		logger.Log.Error("token subject is not a user id", "subject", claims.Subject)
		return nil, err
	}

	user, err := a.users.UserById(userId)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// reject answers an unauthenticated request. The stale cookie is
// cleared either way; browsers get bounced to the login page, API
// clients get a 401.
func (a *Auth) reject(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Error(w, "Please sign in", http.StatusUnauthorized)
}

// Sentinel errors for extractUser
var (
	errNoToken = errorString("no token")
	errRevoked = errorString("token revoked")
)

type errorString string

func (e errorString) Error() string { return string(e) }

// ContextWithUser returns a copy of ctx carrying the authenticated user
func ContextWithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUserFromContext retrieves the user from the context
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(userKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/avelkov/cloudnest/internal/config"
	"github.com/avelkov/cloudnest/internal/utils"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const UserIDKey contextKey = "userID"

// SessionClaims is the cookie session payload. Remember survives re-issue so
// a "remember me" login keeps its longer window across requests.
type SessionClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Remember bool   `json:"remember"`
	jwt.RegisteredClaims
}

// NewSessionCookie issues a signed session cookie. The expiry is the idle
// timeout from now — calling this again on a later request slides the window.
func NewSessionCookie(userID, username string, remember bool) (*http.Cookie, error) {
	ttl := config.Envs.SessionIdleTimeout
	if remember {
		ttl = config.Envs.SessionRememberTimeout
	}

	now := time.Now()
	claims := &SessionClaims{
		UserID:   userID,
		Username: username,
		Remember: remember,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.Envs.JWTSecret))
	if err != nil {
		return nil, err
	}

	isProd := config.Envs.Environment == "production"
	sameSite := http.SameSiteLaxMode
	if isProd {
		sameSite = http.SameSiteNoneMode
	}

	return &http.Cookie{
		Name:     "token",
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Secure:   isProd,
		HttpOnly: true,
		SameSite: sameSite,
	}, nil
}

// denyUnauthenticated routes a sessionless request to the login prompt. The
// JSON upload endpoint answers 401 with the envelope instead, since its
// callers consume structured results rather than follow redirects.
func denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// AuthMiddleware resolves the session cookie to a user id and stores it in
// the request context; handlers never read session state themselves. Missing
// or expired sessions are denied up front. Each authenticated request
// re-issues the cookie so the idle timeout counts from the last request, not
// from login.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie("token")
		if err != nil {
			denyUnauthenticated(w, r)
			return
		}

		claims := &SessionClaims{}
		token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(config.Envs.JWTSecret), nil
		})
		if err != nil || !token.Valid || claims.UserID == "" {
			denyUnauthenticated(w, r)
			return
		}

		if fresh, err := NewSessionCookie(claims.UserID, claims.Username, claims.Remember); err == nil {
			http.SetCookie(w, fresh)
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wastenot/apiserver/internal/services"
	"github.com/wastenot/apiserver/internal/store"
	"github.com/wastenot/apiserver/types"
)

const defaultTokenTTL = 24 * time.Hour

// Session is the resolved identity for one request: who is signed in and
// what their profile says about them. By the time a handler observes a
// Session, the profile lookup has completed (successfully or not); a nil
// Profile means the lookup found nothing and the caller is treated as an
// ordinary user.
type Session struct {
	UserID  int
	Profile *types.Profile
}

// IsAdmin reports whether the session carries the admin role. A missing
// profile never grants privileges.
func (s *Session) IsAdmin() bool {
	return s.Profile != nil && s.Profile.IsAdmin()
}

// Viewer converts the session into the scoping token services consume.
func (s *Session) Viewer() services.Viewer {
	return services.Viewer{UserID: s.UserID, Admin: s.IsAdmin()}
}

// RequireSession authenticates the bearer token and resolves the
// caller's profile before the request proceeds. Requests without a valid
// token get 401. A failed profile lookup is logged and degrades to a
// profile-less session; it never fails the request.
func RequireSession(jwtSecret string, profiles *services.ProfileService) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			userID, err := parseTokenSubject(tokenString, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			session := &Session{UserID: userID}
			profile, err := profiles.GetByID(r.Context(), userID)
			if err != nil {
				log.Printf("session: profile lookup for user %d failed: %v", userID, err)
			} else {
				session.Profile = &profile
			}

			ctx := context.WithValue(r.Context(), contextSessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin allows the request through only for admin sessions.
// Authenticated non-admins get 403, not 401: they are signed in, just
// not privileged.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !session.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionFromContext(ctx context.Context) (*Session, error) {
	session, ok := ctx.Value(contextSessionKey).(*Session)
	if !ok || session == nil {
		return nil, errors.New("missing session")
	}
	return session, nil
}

func issueToken(userID int, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseTokenSubject(tokenString string, secret []byte) (int, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, errors.New("invalid token")
	}
	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return 0, errors.New("invalid subject")
	}
	return userID, nil
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}

// notFoundStatus maps a store error to 404 where appropriate.
func notFoundStatus(err error) (int, string, bool) {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound, "not found", true
	}
	return 0, "", false
}

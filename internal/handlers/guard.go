package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type contextKey struct{ name string }

var currentUserKey = &contextKey{"current-user"}

// CurrentUser returns the authenticated user attached by the guard, if any.
func CurrentUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(currentUserKey).(models.User)
	return user, ok
}

// AccessVerifier validates an access token and returns its subject.
type AccessVerifier interface {
	VerifyAccess(token string) (string, error)
}

// Guard authenticates requests from the access token cookie or the
// Authorization header and loads the live user record, so that deleted
// accounts lose access the moment their document disappears.
type Guard struct {
	Users  UserStore
	Tokens AccessVerifier
}

// Require rejects unauthenticated requests with the failure envelope.
func (g Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.authenticate(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), currentUserKey, user)))
	})
}

// Optional attaches the user when valid credentials are presented and lets
// the request through anonymously otherwise.
func (g Guard) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.authenticate(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), currentUserKey, user)))
	})
}

func (g Guard) authenticate(r *http.Request) (models.User, error) {
	token := extractToken(r)
	if token == "" {
		return models.User{}, unauthorized("authentication required")
	}

	subject, err := g.Tokens.VerifyAccess(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return models.User{}, unauthorized("access token expired")
		}
		return models.User{}, unauthorized("invalid access token")
	}

	userID, err := primitive.ObjectIDFromHex(subject)
	if err != nil {
		return models.User{}, unauthorized("invalid access token")
	}

	user, err := g.Users.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, unauthorized("user no longer exists")
		}
		return models.User{}, internalError("failed to load user", err)
	}

	return user, nil
}

func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	return ""
}

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/rental_listing_platform/utils"
)

type contextKey string

const actorKey = contextKey("actorID")

// TokenCookie carries the same JWT as the Authorization header for browser
// clients.
const TokenCookie = "token"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	errMalformedHeader = errors.New("invalid Authorization header format")
)

// ResolveActor is the single identity contract: a Bearer token in the
// Authorization header, or else the token cookie, must carry a valid JWT
// whose subject is a user id.
func ResolveActor(key []byte, r *http.Request) (primitive.ObjectID, error) {
	tokenStr, err := bearerToken(r)
	if err != nil {
		return primitive.NilObjectID, err
	}

	claims, err := utils.ValidateJWT(key, tokenStr)
	if err != nil {
		return primitive.NilObjectID, err
	}

	actor, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, utils.ErrTokenInvalid
	}
	return actor, nil
}

func bearerToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", errMalformedHeader
		}
		return parts[1], nil
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", ErrUnauthenticated
}

// Auth rejects requests without a resolvable actor before they reach the
// wrapped handler.
func Auth(key []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := ResolveActor(key, r)
			if err != nil {
				log.Debug().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("rejected unauthenticated request")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": unauthorizedMessage(err)})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "Missing Authorization header"
	case errors.Is(err, errMalformedHeader):
		return "Invalid Authorization header format"
	default:
		return "Invalid or expired token"
	}
}

func WithActor(ctx context.Context, actor primitive.ObjectID) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// Actor returns the authenticated user id placed on ctx by Auth.
func Actor(ctx context.Context) (primitive.ObjectID, bool) {
	actor, ok := ctx.Value(actorKey).(primitive.ObjectID)
	return actor, ok && !actor.IsZero()
}

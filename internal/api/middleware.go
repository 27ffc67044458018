package api

import (
	"context"
	"net/http"
	"strings"
)

type userIDKey struct{}

// bearerToken extracts the credential from the Authorization header;
// ok is false when the header is absent or not a bearer scheme.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// requireUser rejects requests without a valid bearer token.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.writeError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		userID, err := s.tokens.Verify(token)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalUser resolves the viewer identity when a token is present.
// Requests without an Authorization header proceed anonymously; a header
// that is present but invalid is still rejected rather than silently
// downgraded to anonymous.
func (s *Server) optionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := s.tokens.Verify(token)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// viewerFrom returns the authenticated user id, or nil for anonymous
// requests.
func viewerFrom(ctx context.Context) *int64 {
	if id, ok := ctx.Value(userIDKey{}).(int64); ok {
		return &id
	}
	return nil
}

// mustUserID returns the authenticated user id; only valid behind
// requireUser.
func mustUserID(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey{}).(int64)
	return id
}

package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// TokenVerifier checks a bearer token.
type TokenVerifier interface {
	Enabled() bool
	Verify(token string) error
}

// RequireSeedToken rejects requests without a valid bearer token. When the verifier is
// disabled every request passes.
func RequireSeedToken(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if verifier == nil || !verifier.Enabled() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing seed token")
				return
			}
			if err := verifier.Verify(token); err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("rejected seed token")
				writeError(w, http.StatusUnauthorized, "invalid seed token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

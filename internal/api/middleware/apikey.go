package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"os"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/twinvest/portfolio-ledger-backend/internal/api/response"
)

// timeTokenTTL is how long an issued time token stays valid.
const timeTokenTTL = 5 * time.Minute

// APIKeyMiddleware protects internal endpoints with a static API key plus a
// short-lived fernet time token, so a leaked request cannot be replayed
// after the TTL. The fernet key is derived from the configured API key.
//
// Expected headers:
//   - X-API-Key: must match INTERNAL_API_KEY
//   - X-Time-Token: fernet token minted with the derived key within the TTL
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := os.Getenv("INTERNAL_API_KEY")
		if apiKey == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "API key not configured")
			return
		}

		provided := r.Header.Get("X-API-Key")
		if provided == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		token := r.Header.Get("X-Time-Token")
		if token == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
			return
		}

		key := DeriveTokenKey(apiKey)
		if fernet.VerifyAndDecrypt([]byte(token), timeTokenTTL, []*fernet.Key{key}) == nil {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid Time token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// DeriveTokenKey derives the fernet key from the shared API key. Exposed so
// clients and tests can mint valid time tokens.
func DeriveTokenKey(apiKey string) *fernet.Key {
	sum := sha256.Sum256([]byte(apiKey))
	key := fernet.Key(sum)
	return &key
}

package identity

import (
	"net/http"

	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/mcdev12/survivor/go/internal/httputil"
	"github.com/rs/zerolog/log"
)

// DevUserHeader names the caller when authentication is disabled.
const DevUserHeader = "X-User-ID"

// Authenticator resolves the caller of a request
type Authenticator interface {
	Authenticate(r *http.Request) (Claims, error)
}

// HeaderAuthenticator trusts DevUserHeader. Local development only.
type HeaderAuthenticator struct{}

func (HeaderAuthenticator) Authenticate(r *http.Request) (Claims, error) {
	uid := r.Header.Get(DevUserHeader)
	if uid == "" {
		return Claims{}, apperrors.New(apperrors.CodeUnauthenticated, DevUserHeader+" header is required")
	}
	return Claims{UID: uid}, nil
}

// Middleware rejects unauthenticated requests with 401 and puts the caller's
// claims on the request context.
func Middleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := auth.Authenticate(r)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("authentication failed")
				httputil.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

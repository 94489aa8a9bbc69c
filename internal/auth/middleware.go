package auth

import (
	"net/http"

	"BarStock/pkg/kit"
)

const PasswordHeader = "X-Password"

// RequireCredential admits requests carrying either the shared secret in
// X-Password or a session token from /api/login.
func RequireCredential(v *Verifier, jwt *TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if pw := r.Header.Get(PasswordHeader); pw != "" && v.Verify(pw) == nil {
				next.ServeHTTP(w, r)
				return
			}
			if tok, ok := kit.BearerToken(r); ok {
				if _, err := jwt.Parse(tok); err == nil {
					next.ServeHTTP(w, r)
					return
				}
			}
			kit.WriteError(w, r, http.StatusUnauthorized, "Unauthorized", nil)
		})
	}
}

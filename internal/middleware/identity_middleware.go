package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
)

// Identity is who the external auth provider says the caller is. The
// server never issues identities itself; it only carries them around.
type Identity struct {
	ExternalID string
	Name       string
}

const SessionName = "identity-session"

// IdentityMiddleware resolves the caller's identity from the session
// cookie established by the user sync endpoint, falling back to the
// X-External-Id / X-Display-Name headers. The identity may be empty;
// handlers decide per operation whether that is acceptable.
func IdentityMiddleware(store *sessions.CookieStore, next func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var identity Identity

		session, err := store.Get(r, SessionName)
		if err == nil {
			if externalID, ok := session.Values["external_id"].(string); ok {
				identity.ExternalID = externalID
			}
			if name, ok := session.Values["name"].(string); ok {
				identity.Name = name
			}
		}

		if identity.ExternalID == "" {
			identity.ExternalID = r.Header.Get("X-External-Id")
			identity.Name = r.Header.Get("X-Display-Name")
		}

		ctx := context.WithValue(r.Context(), "identity", identity)
		next(w, r.WithContext(ctx))
	}
}

// IdentityFrom pulls the resolved identity back out of the request
// context. A zero identity means the caller is anonymous.
func IdentityFrom(r *http.Request) Identity {
	identity, _ := r.Context().Value("identity").(Identity)
	return identity
}

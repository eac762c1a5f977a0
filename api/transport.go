package api

import (
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/jrsteele09/depot-client/token"
	"golang.org/x/oauth2"
)

const headerRequestID = "X-Request-ID"

// bearerTransport reads the token on every request and attaches it as a
// bearer credential. Requests go out anonymously when no token is stored or
// when they leave the backend origin.
type bearerTransport struct {
	base   http.RoundTripper
	tokens token.Store
	origin *url.URL
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Del("Authorization")
	if t.tokens != nil && sameOrigin(t.origin, r.URL) {
		if tok, ok := t.tokens.Get(req.Context()); ok {
			(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}).SetAuthHeader(r)
		}
	}
	if r.Header.Get(headerRequestID) == "" {
		r.Header.Set(headerRequestID, uuid.NewString())
	}
	return t.base.RoundTrip(r)
}

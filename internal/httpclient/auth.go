package httpclient

import (
	"fmt"
	"net/http"
)

// Auth is the tagged union of Server credential modes spec.md §4.1
// recognizes: HTTP Basic or an API key. Exactly one must be configured.
type Auth interface {
	apply(req *http.Request)
	String() string
}

// BasicAuth authenticates with a username and password.
type BasicAuth struct {
	Username string
	Password string
}

func (a BasicAuth) apply(req *http.Request) { req.SetBasicAuth(a.Username, a.Password) }
func (a BasicAuth) String() string           { return fmt.Sprintf("basic(%s)", a.Username) }

// APIKeyAuth authenticates with a pre-issued Server API key, sent as the
// Authorization: ApiKey <key> header.
type APIKeyAuth struct {
	Key string
}

func (a APIKeyAuth) apply(req *http.Request) {
	req.Header.Set("Authorization", "ApiKey "+a.Key)
}
func (a APIKeyAuth) String() string { return "apikey(***)" }

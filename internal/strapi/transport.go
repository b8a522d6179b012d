package strapi

import "net/http"

// Transport adds the API token and JSON accept header to every request.
type Transport struct {
	base   http.RoundTripper
	header string
}

// NewTransport wraps base. An empty token sends requests unauthenticated, as the public role.
func NewTransport(base http.RoundTripper, token string) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &Transport{base: base}
	if token != "" {
		t.header = "Bearer " + token
	}
	return t
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.header != "" {
		clone.Header.Set("Authorization", t.header)
	}
	clone.Header.Set("Accept", "application/json")
	return t.base.RoundTrip(clone)
}

package stub

import (
	"maps"
	"net/url"
	"strings"
)

// Call is the normalized record of one dispatched request.
type Call struct {
	// Method is the HTTP method used.
	Method string
	// URL is scheme://host/path with the port, query string and fragment
	// removed.
	URL string
	// Query holds the decoded query parameters. It is never nil.
	Query map[string]string
	// Body holds the decoded form body, or nil when the body was empty or not
	// form encoded.
	Body map[string]string
}

func newCall(method, rawURL string, body []byte) Call {
	c := Call{
		Method: method,
		Query:  map[string]string{},
		Body:   parseForm(string(body)),
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		c.URL, _, _ = strings.Cut(rawURL, "?")
		return c
	}

	c.URL = u.EscapedPath()
	if u.Scheme != "" || u.Host != "" {
		host := u.Hostname()
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
		c.URL = u.Scheme + "://" + host + c.URL
	}
	if q := parseForm(u.RawQuery); q != nil {
		c.Query = q
	}
	return c
}

// parseForm decodes a URL-encoded string into a flat map. Repeated keys keep
// the last value and malformed pairs are skipped. It returns nil when no pair
// could be decoded.
func parseForm(s string) map[string]string {
	if s == "" {
		return nil
	}
	// ParseQuery keeps every pair it could decode alongside the first error.
	values, _ := url.ParseQuery(s)
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v[len(v)-1]
	}
	return out
}

func (c Call) clone() Call {
	c.Query = maps.Clone(c.Query)
	c.Body = maps.Clone(c.Body)
	return c
}

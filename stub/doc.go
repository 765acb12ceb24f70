/*
Package stub provides a request stub for HTTP clients.

A Stub holds an ordered list of rules, each pairing a Matcher with a canned
Response. Every request dispatched through the stub is answered by the first
rule whose matcher accepts it, or by a 404 default when none does, and is
appended to a call log in normalized form: method, URL without query string,
decoded query parameters and decoded form body.

The stub never performs network I/O. Plug it in wherever the code under test
takes a client:

	s, _ := stub.New(stub.Config{})
	s.MatchGet("https://api.example.com/users", []stub.Param{{Key: "page", Value: "2"}}, &stub.Response{
		StatusCode: http.StatusOK,
		Body:       []byte(`[{"id":1}]`),
	})

	c, _ := s.Client()
	svc := users.NewService(c)                // httpclient.Client
	legacy := users.NewLegacy(s.HTTPClient()) // *http.Client

	// ... exercise the code under test ...

	calls := s.Calls()
	// calls[0].URL == "https://api.example.com/users"
	// calls[0].Query["page"] == "2"

Patterns

MatchMethodAndURL accepts either a plain regular expression, which is anchored
at both ends, or a delimited one such as "/^get$/i" whose trailing letters are
flags (i, m, s, U; u is accepted and ignored). Invalid patterns are reported
with ErrInvalidPattern. MatchMethodAndURLRegexp takes compiled expressions and
skips that sniffing entirely.
*/
package stub

package stub

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePattern(t *testing.T) {
	tt := []struct {
		name    string
		pattern string
		want    string
		wantErr bool
	}{
		{"Plain word is anchored", "GET", "^(?:GET)$", false},
		{"Alternation is anchored as a whole", "GET|POST", "^(?:GET|POST)$", false},
		{"URL is anchored", `https://x\.com/.*`, `^(?:https://x\.com/.*)$`, false},
		{"Slash delimited with flag", "/^GET$/i", "(?i)^GET$", false},
		{"Hash delimited without flags", "#^/api/#", "^/api/", false},
		{"Several flags", "@a.b@imsU", "(?imsU)a.b", false},
		{"Unicode flag is a no-op", "~x~u", "x", false},
		{"Unknown flag", "/x/e", "", true},
		{"Too short to be delimited", "//", "^(?://)$", false},
		{"Different closing character", "/abc#", "^(?:/abc#)$", false},
		{"Word delimiter is not a delimiter", "axa", "^(?:axa)$", false},
		{"Empty", "", "^(?:)$", false},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizePattern(tc.pattern)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMatchMethodAndURL(t *testing.T) {
	ok := &Response{StatusCode: http.StatusOK}

	tt := []struct {
		name          string
		methodPattern string
		urlPattern    string
		method        string
		url           string
		want          int
	}{
		{"Exact method and URL", "GET", `http://x/y`, http.MethodGet, "http://x/y", http.StatusOK},
		{"Method is case sensitive", "GET", `http://x/y`, "get", "http://x/y", http.StatusNotFound},
		{"Delimited method ignores case", "/^GET$/i", `http://x/y`, "get", "http://x/y", http.StatusOK},
		{"URL is case sensitive", "GET", `http://x/y`, http.MethodGet, "http://x/Y", http.StatusNotFound},
		{"Plain URL pattern is anchored", "GET", `http://x/y`, http.MethodGet, "http://x/y/z", http.StatusNotFound},
		{"Wildcard URL", "GET|POST", `http://x/users/\d+`, http.MethodPost, "http://x/users/42", http.StatusOK},
		{"Delimited URL is not anchored", "GET", `#/users/#`, http.MethodGet, "http://x/users/42", http.StatusOK},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			s := newStub(t, Config{})
			_, err := s.MatchMethodAndURL(tc.methodPattern, tc.urlPattern, ok)
			require.NoError(t, err)

			assert.Equal(t, tc.want, s.Dispatch(tc.method, tc.url, Options{}).StatusCode)
		})
	}
}

func TestMatchMethodAndURLInvalid(t *testing.T) {
	tt := []struct {
		name          string
		methodPattern string
		urlPattern    string
		offending     string
	}{
		{"Invalid URL", "GET", "[invalid", "[invalid"},
		{"Invalid method", "(GET", "http://x/y", "(GET"},
		{"Invalid delimited body", "GET", "/a(/", "/a(/"},
		{"Unsupported flag", "/GET/x", "http://x/y", "/GET/x"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			s := newStub(t, Config{})
			_, err := s.MatchMethodAndURL(tc.methodPattern, tc.urlPattern, &Response{StatusCode: http.StatusOK})
			require.ErrorIs(t, err, ErrInvalidPattern)
			assert.Contains(t, err.Error(), tc.offending)
			assert.Empty(t, s.rules)
		})
	}
}

func TestMatchMethodAndURLRegexp(t *testing.T) {
	s := newStub(t, Config{}).MatchMethodAndURLRegexp(
		regexp.MustCompile(`^(GET|HEAD)$`),
		regexp.MustCompile(`/health$`),
		&Response{StatusCode: http.StatusNoContent},
	)

	assert.Equal(t, http.StatusNoContent, s.Dispatch(http.MethodHead, "http://svc/health", Options{}).StatusCode)
	assert.Equal(t, http.StatusNotFound, s.Dispatch(http.MethodPost, "http://svc/health", Options{}).StatusCode)
}

func TestMatchGet(t *testing.T) {
	ok := &Response{StatusCode: http.StatusOK}

	tt := []struct {
		name   string
		url    string
		params []Param
		method string
		reqURL string
		want   int
	}{
		{"Params appended", "http://x/y", []Param{{"a", "1"}}, http.MethodGet, "http://x/y?a=1", http.StatusOK},
		{"Extra params do not match", "http://x/y", []Param{{"a", "1"}}, http.MethodGet, "http://x/y?a=1&extra=2", http.StatusNotFound},
		{"Missing params do not match", "http://x/y", []Param{{"a", "1"}}, http.MethodGet, "http://x/y", http.StatusNotFound},
		{"Only GET matches", "http://x/y", []Param{{"a", "1"}}, http.MethodPost, "http://x/y?a=1", http.StatusNotFound},
		{"No params", "http://x/y", nil, http.MethodGet, "http://x/y", http.StatusOK},
		{"Dot is literal", "http://x.com/y", nil, http.MethodGet, "http://xacom/y", http.StatusNotFound},
		{"Plus is literal", "http://x/a+b", nil, http.MethodGet, "http://x/aab", http.StatusNotFound},
		{"Relative literal is not a delimited pattern", "/api/", nil, http.MethodGet, "/api/", http.StatusOK},
		{"Given order is kept", "http://x/y", []Param{{"b", "2"}, {"a", "1"}}, http.MethodGet, "http://x/y?b=2&a=1", http.StatusOK},
		{"Reordered query does not match", "http://x/y", []Param{{"b", "2"}, {"a", "1"}}, http.MethodGet, "http://x/y?a=1&b=2", http.StatusNotFound},
		{"Repeated keys kept", "http://x/y", []Param{{"tag", "a"}, {"tag", "b"}}, http.MethodGet, "http://x/y?tag=a&tag=b", http.StatusOK},
		{"Existing query is extended", "http://x/y?z=0", []Param{{"a", "1"}}, http.MethodGet, "http://x/y?z=0&a=1", http.StatusOK},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			s := newStub(t, Config{}).MatchGet(tc.url, tc.params, ok)
			assert.Equal(t, tc.want, s.Dispatch(tc.method, tc.reqURL, Options{}).StatusCode)
		})
	}
}

package stub

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tarmac-project/httpstub/logging"
)

// ErrInvalidPattern is returned when a method or URL pattern is not a valid
// regular expression.
var ErrInvalidPattern = errors.New("invalid pattern")

var getMethod = regexp.MustCompile("^" + http.MethodGet + "$")

// MatchMethodAndURL registers a rule for requests whose method and URL match
// the given patterns. Nothing is registered when either pattern is invalid.
func (s *Stub) MatchMethodAndURL(methodPattern, urlPattern string, resp *Response) (*Stub, error) {
	method, err := compilePattern(methodPattern)
	if err != nil {
		s.logf(logging.LevelError, "rejected method pattern: %v", err)
		return s, err
	}

	u, err := compilePattern(urlPattern)
	if err != nil {
		s.logf(logging.LevelError, "rejected url pattern: %v", err)
		return s, err
	}

	return s.MatchMethodAndURLRegexp(method, u, resp), nil
}

// MatchMethodAndURLRegexp registers a rule for requests whose method and URL
// match the compiled expressions. The expressions are used as given, so they
// are not anchored unless they anchor themselves.
func (s *Stub) MatchMethodAndURLRegexp(method, u *regexp.Regexp, resp *Response) *Stub {
	return s.Match(func(m, rawURL string, _ Options) bool {
		return method.MatchString(m) && u.MatchString(rawURL)
	}, resp)
}

// Param is one query parameter passed to MatchGet.
type Param struct {
	Key   string
	Value string
}

// MatchGet registers a rule for GET requests to exactly rawURL with params
// appended as its query string in the order given.
func (s *Stub) MatchGet(rawURL string, params []Param, resp *Response) *Stub {
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		rawURL += sep + encodeParams(params)
	}

	literal := regexp.MustCompile("^" + regexp.QuoteMeta(rawURL) + "$")
	return s.MatchMethodAndURLRegexp(getMethod, literal, resp)
}

func encodeParams(params []Param) string {
	pairs := make([]string, len(params))
	for i, p := range params {
		pairs[i] = url.QueryEscape(p.Key) + "=" + url.QueryEscape(p.Value)
	}
	return strings.Join(pairs, "&")
}

// compilePattern turns a plain or delimited pattern into a compiled expression.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	expr, err := normalizePattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
	}
	return re, nil
}

// normalizePattern returns the RE2 form of pattern. Delimited patterns like
// "#^/api#i" keep their body and translate their flags; anything else is
// anchored to match the whole input.
func normalizePattern(pattern string) (string, error) {
	body, flags, ok := splitDelimited(pattern)
	if !ok {
		return "^(?:" + pattern + ")$", nil
	}

	var mods strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's', 'U':
			mods.WriteRune(f)
		case 'u':
			// input is always UTF-8
		default:
			return "", fmt.Errorf("unsupported flag %q", f)
		}
	}

	if mods.Len() == 0 {
		return body, nil
	}
	return "(?" + mods.String() + ")" + body, nil
}

// splitDelimited reports whether pattern has the form <d>body<d>flags, where
// d is neither a word character nor a space, body is not empty and flags are
// ASCII letters.
func splitDelimited(pattern string) (body, flags string, ok bool) {
	d, size := utf8.DecodeRuneInString(pattern)
	if d == utf8.RuneError || d == '_' || unicode.IsLetter(d) || unicode.IsDigit(d) || unicode.IsSpace(d) {
		return "", "", false
	}

	end := len(pattern)
	for end > 0 && isASCIILetter(pattern[end-1]) {
		end--
	}

	closing := end - size
	if closing <= size || !strings.HasSuffix(pattern[:end], string(d)) {
		return "", "", false
	}

	return pattern[size:closing], pattern[end:], true
}

func isASCIILetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

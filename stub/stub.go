package stub

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/tarmac-project/httpstub"
	"github.com/tarmac-project/httpstub/hostmock"
	"github.com/tarmac-project/httpstub/httpclient"
	"github.com/tarmac-project/httpstub/logging"
)

var (
	// ErrInvalidBaseURL is returned by New when Config.BaseURL cannot be parsed
	// as an absolute URL.
	ErrInvalidBaseURL = errors.New("invalid base URL")
)

// Options carries the request details a Matcher may inspect besides the
// method and URL.
type Options struct {
	// Header holds the request headers.
	Header http.Header
	// Body is the raw request body, nil when none was sent.
	Body []byte
	// Insecure reports whether the caller asked to skip TLS verification.
	Insecure bool
}

// Matcher decides whether a rule applies to a request.
type Matcher func(method, url string, opts Options) bool

// Response describes a canned HTTP response.
type Response struct {
	// StatusCode is the HTTP status code to return.
	StatusCode int
	// Header holds headers to include in the response.
	Header http.Header
	// Body is the raw payload returned to callers.
	Body []byte
	// Error, when set, makes the transports fail the request with it instead
	// of replying.
	Error error
}

func (r *Response) clone() *Response {
	c := *r
	c.Header = r.Header.Clone()
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	c.Body = bytes.Clone(r.Body)
	return &c
}

// Config controls construction of a Stub.
type Config struct {
	// SDKConfig provides the namespace the stub answers host calls for.
	SDKConfig httpstub.RuntimeConfig

	// BaseURL, when set, is used to resolve relative request URLs.
	BaseURL string

	// DefaultResponse replaces the 404 reply used when no rule matches.
	DefaultResponse *Response

	// Logger receives a line per dispatch. Nil disables logging.
	Logger logging.Client
}

type rule struct {
	matcher  Matcher
	response *Response
}

// Stub answers HTTP requests from registered rules and records every request
// it sees. It is safe for concurrent use.
type Stub struct {
	runtime         httpstub.RuntimeConfig
	baseURL         *url.URL
	defaultResponse *Response
	logger          logging.Client
	host            *hostmock.Mock

	mu    sync.Mutex
	rules []rule
	calls []Call
}

// New creates a Stub with no rules and an empty call log.
func New(cfg Config) (*Stub, error) {
	s := &Stub{
		runtime: cfg.SDKConfig.WithDefaults(),
		logger:  cfg.Logger,
		defaultResponse: &Response{
			StatusCode: http.StatusNotFound,
			Header:     make(http.Header),
		},
	}

	if cfg.DefaultResponse != nil {
		s.defaultResponse = cfg.DefaultResponse.clone()
	}

	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil || !u.IsAbs() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
		}
		s.baseURL = u
	}

	host, err := hostmock.New(hostmock.Config{
		ExpectedNamespace:  s.runtime.Namespace,
		ExpectedCapability: httpclient.Capability,
		ExpectedFunction:   httpclient.Function,
		Handler:            s.handleHostCall,
	})
	if err != nil {
		return nil, err
	}
	s.host = host

	return s, nil
}

// Match registers a rule answering with resp whenever m accepts the request.
// Rules are evaluated in registration order.
func (s *Stub) Match(m Matcher, resp *Response) *Stub {
	if resp == nil {
		resp = &Response{StatusCode: http.StatusOK}
	}
	if resp.Header == nil {
		resp.Header = make(http.Header)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rule{matcher: m, response: resp})
	return s
}

// Dispatch answers a request and records it in the call log. Relative URLs
// are resolved against the configured base URL first. The returned Response
// is a copy the caller may modify.
func (s *Stub) Dispatch(method, rawURL string, opts Options) *Response {
	rawURL = s.resolve(rawURL)

	s.mu.Lock()
	rules := s.rules[:len(s.rules):len(s.rules)]
	s.mu.Unlock()

	var resp *Response
	for _, r := range rules {
		if r.matcher(method, rawURL, opts) {
			resp = r.response
			break
		}
	}

	call := newCall(method, rawURL, opts.Body)
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()

	if resp == nil {
		s.logf(logging.LevelWarn, "no rule matched %s %s, using default %d", method, call.URL, s.defaultResponse.StatusCode)
		return s.defaultResponse.clone()
	}

	s.logf(logging.LevelDebug, "matched %s %s, replying %d", method, call.URL, resp.StatusCode)
	return resp.clone()
}

// Calls returns a copy of the call log in dispatch order.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Call, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.clone()
	}
	return out
}

func (s *Stub) resolve(rawURL string) string {
	if s.baseURL == nil {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.IsAbs() {
		return rawURL
	}
	return s.baseURL.ResolveReference(u).String()
}

func (s *Stub) logf(level logging.Level, format string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Log(level, "stub: "+fmt.Sprintf(format, args...))
}

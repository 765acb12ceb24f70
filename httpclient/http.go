package httpclient

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tarmac-project/httpstub"
	proto "github.com/tarmac-project/protobuf-go/sdk/http"
	wapc "github.com/wapc/wapc-guest-tinygo"
)

const (
	// Capability is the host capability name requests are routed to.
	Capability = "httpclient"

	// Function is the host function invoked for every request.
	Function = "call"
)

// Client provides an interface for making HTTP requests.
type Client interface {
	// Get issues a GET request to the specified URL.
	Get(url string) (*Response, error)

	// Post issues a POST request to the specified URL with the given content type and body.
	Post(url, contentType string, body io.Reader) (*Response, error)

	// Put issues a PUT request to the specified URL with the given content type and body.
	Put(url, contentType string, body io.Reader) (*Response, error)

	// Delete issues a DELETE request to the specified URL.
	Delete(url string) (*Response, error)

	// Do issues a custom HTTP request and returns the response.
	Do(req *Request) (*Response, error)
}

// Config configures the HTTP client behavior and host integration.
//
// HostCall is the transport: every request is encoded and handed to it. When
// nil, the client uses wapc.HostCall. Tests replace it with a stub.
type Config struct {
	// SDKConfig provides the runtime namespace for host calls.
	SDKConfig httpstub.RuntimeConfig
	// InsecureSkipVerify disables TLS verification when supported by the host.
	InsecureSkipVerify bool
	// HostCall overrides the waPC host function used for requests.
	HostCall httpstub.HostCall
}

// HTTPClient implements Client using waPC host calls.
type HTTPClient struct {
	runtime  httpstub.RuntimeConfig
	insecure bool
	hostCall httpstub.HostCall
}

// Ensure HTTPClient always satisfies the Client interface at compile time.
var _ Client = (*HTTPClient)(nil)

// Response represents an HTTP response returned by the host.
type Response struct {
	// Status is the HTTP status text (e.g., "Not Found").
	Status string
	// StatusCode is the numeric HTTP status code (e.g., 404).
	StatusCode int
	// Header contains response headers.
	Header http.Header
	// Body is the response payload stream. It is nil for empty bodies.
	Body io.ReadCloser
}

// Request represents an HTTP request to be sent by the client.
type Request struct {
	// Method is the HTTP method (e.g., GET, POST).
	Method string
	// URL is the full request URL; Host must be non-empty.
	URL *url.URL
	// Header holds request headers. Nil is treated as empty.
	Header http.Header
	// Body is an optional request body stream.
	Body io.ReadCloser
}

var (
	// ErrInvalidURL indicates a malformed or unsupported URL.
	ErrInvalidURL = errors.New("invalid URL provided")

	// ErrMarshalRequest wraps failures while encoding the request payload.
	ErrMarshalRequest = errors.New("failed to create request")

	// ErrReadBody wraps failures while reading a request body stream.
	ErrReadBody = errors.New("failed to read request body")

	// ErrUnmarshalResponse wraps failures while decoding the host response.
	ErrUnmarshalResponse = errors.New("failed to unmarshal response")

	// ErrInvalidMethod indicates an HTTP method not permitted by NewRequest.
	ErrInvalidMethod = errors.New("invalid HTTP method")

	// ErrNilRequest indicates Do received a nil Request pointer.
	ErrNilRequest = errors.New("request is nil")
)

// Host status codes reported in HTTPClientResponse.Status.
const (
	HostStatusOK       = int32(200)
	HostStatusPartial  = int32(206)
	HostStatusBadInput = int32(400)
	HostStatusMissing  = int32(404)
	HostStatusError    = int32(500)
)

// New creates a new HTTP client with the provided configuration.
func New(config Config) (*HTTPClient, error) {
	hc := &HTTPClient{
		runtime:  config.SDKConfig.WithDefaults(),
		insecure: config.InsecureSkipVerify,
		hostCall: wapc.HostCall,
	}
	if config.HostCall != nil {
		hc.hostCall = config.HostCall
	}
	return hc, nil
}

// Get issues a GET to the specified URL and returns the response.
func (c *HTTPClient) Get(urlStr string) (*Response, error) {
	return c.send(http.MethodGet, urlStr, "", nil)
}

// Post issues a POST to the URL with the provided contentType and body.
func (c *HTTPClient) Post(urlStr, contentType string, body io.Reader) (*Response, error) {
	return c.send(http.MethodPost, urlStr, contentType, body)
}

// Put issues a PUT to the URL with the provided contentType and body.
func (c *HTTPClient) Put(urlStr, contentType string, body io.Reader) (*Response, error) {
	return c.send(http.MethodPut, urlStr, contentType, body)
}

// Delete issues a DELETE to the specified URL.
func (c *HTTPClient) Delete(urlStr string) (*Response, error) {
	return c.send(http.MethodDelete, urlStr, "", nil)
}

// Do issues a custom request built with NewRequest and returns the response.
func (c *HTTPClient) Do(req *Request) (*Response, error) {
	if req == nil {
		return &Response{}, ErrNilRequest
	}

	// Validate the URL before touching the body stream.
	if req.URL == nil || req.URL.Host == "" {
		return &Response{}, ErrInvalidURL
	}

	var body []byte
	if req.Body != nil {
		defer func() { _ = req.Body.Close() }()
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return &Response{}, errors.Join(ErrReadBody, err)
		}
		body = b
	}

	pbReq := &proto.HTTPClient{
		Method:   req.Method,
		Url:      req.URL.String(),
		Insecure: c.insecure,
		Body:     body,
		Headers:  make(map[string]*proto.Header, len(req.Header)),
	}
	for key, values := range req.Header {
		pbReq.Headers[key] = &proto.Header{Values: values}
	}

	return c.roundTrip(pbReq)
}

// send builds the protobuf request for the shortcut verbs.
func (c *HTTPClient) send(method, urlStr, contentType string, body io.Reader) (*Response, error) {
	u, err := url.Parse(urlStr)
	if err != nil || u == nil || u.Host == "" {
		return &Response{}, ErrInvalidURL
	}

	var bodyBytes []byte
	if body != nil {
		bodyBytes, err = io.ReadAll(body)
		if err != nil {
			return &Response{}, errors.Join(ErrReadBody, err)
		}
	}

	headers := make(map[string]*proto.Header)
	if contentType != "" {
		headers["Content-Type"] = &proto.Header{Values: []string{contentType}}
	}

	return c.roundTrip(&proto.HTTPClient{
		Method:   method,
		Url:      urlStr,
		Insecure: c.insecure,
		Body:     bodyBytes,
		Headers:  headers,
	})
}

// roundTrip marshals the protobuf request, performs the host call, and
// converts the host reply into a Response.
func (c *HTTPClient) roundTrip(req *proto.HTTPClient) (*Response, error) {
	b, err := req.MarshalVT()
	if err != nil {
		return &Response{}, errors.Join(ErrMarshalRequest, err)
	}

	reply, err := c.hostCall(c.runtime.Namespace, Capability, Function, b)
	if err != nil {
		return &Response{}, errors.Join(httpstub.ErrHostCall, err)
	}

	var r proto.HTTPClientResponse
	if err := r.UnmarshalVT(reply); err != nil {
		return &Response{}, errors.Join(ErrUnmarshalResponse, err)
	}

	if err := checkHostStatus(&r); err != nil {
		return &Response{}, err
	}

	httpCode := int(r.GetCode())
	out := &Response{
		Status:     http.StatusText(httpCode),
		StatusCode: httpCode,
		Header:     make(http.Header, len(r.GetHeaders())),
	}
	for name, header := range r.GetHeaders() {
		out.Header[name] = header.GetValues()
	}
	if body := r.GetBody(); len(body) > 0 {
		out.Body = io.NopCloser(bytes.NewReader(body))
	}

	return out, nil
}

// checkHostStatus maps the host-level status onto the package errors.
func checkHostStatus(r *proto.HTTPClientResponse) error {
	status := r.GetStatus()
	if status == nil {
		return httpstub.ErrHostResponseInvalid
	}

	switch code := status.GetCode(); code {
	case HostStatusOK, HostStatusPartial:
		return nil
	case HostStatusBadInput, HostStatusMissing, HostStatusError:
		detail := fmt.Sprintf("host status %d", code)
		if msg := status.GetStatus(); msg != "" {
			detail = fmt.Sprintf("%s: %s", detail, msg)
		}
		return errors.Join(httpstub.ErrHostError, errors.New(detail))
	default:
		return errors.Join(
			httpstub.ErrHostResponseInvalid,
			fmt.Errorf("unexpected host status code %d", code),
		)
	}
}

// NewRequest creates a new Request object to use with the Do method.
func NewRequest(method, urlString string, body io.Reader) (*Request, error) {
	if !isValidMethod(method) {
		return nil, ErrInvalidMethod
	}

	parsedURL, err := url.Parse(urlString)
	if err != nil || parsedURL == nil || parsedURL.Host == "" {
		return nil, ErrInvalidURL
	}

	req := &Request{
		Method: method,
		URL:    parsedURL,
		Header: make(http.Header),
	}
	if body != nil {
		req.Body = io.NopCloser(body)
	}

	return req, nil
}

func isValidMethod(method string) bool {
	switch method {
	case http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodConnect,
		http.MethodOptions,
		http.MethodTrace:
		return true
	default:
		return false
	}
}

package stub

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tarmac-project/httpstub/httpclient"
	sdkproto "github.com/tarmac-project/protobuf-go/sdk"
	proto "github.com/tarmac-project/protobuf-go/sdk/http"
	pb "google.golang.org/protobuf/proto"
)

// ErrDecodeRequest is returned by HostCall when the payload is not an encoded
// HTTP client request.
var ErrDecodeRequest = errors.New("failed to decode request payload")

// Compile-time check: the stub can stand in for any net/http transport.
var _ http.RoundTripper = (*Stub)(nil)

// HostCall answers httpclient host calls for the stub's namespace. Pass it as
// httpclient.Config.HostCall, or use Client which does so.
func (s *Stub) HostCall(namespace, capability, function string, payload []byte) ([]byte, error) {
	return s.host.HostCall(namespace, capability, function, payload)
}

// Client returns an httpclient client whose requests are answered by the stub.
func (s *Stub) Client() (*httpclient.HTTPClient, error) {
	return httpclient.New(httpclient.Config{SDKConfig: s.runtime, HostCall: s.HostCall})
}

// HTTPClient returns a net/http client whose requests are answered by the stub.
func (s *Stub) HTTPClient() *http.Client {
	return &http.Client{Transport: s}
}

// RoundTrip implements http.RoundTripper.
func (s *Stub) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		defer func() { _ = req.Body.Close() }()
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		body = b
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	resp := s.Dispatch(method, req.URL.String(), Options{Header: req.Header.Clone(), Body: body})
	if resp.Error != nil {
		return nil, resp.Error
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		StatusCode:    resp.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        resp.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(resp.Body)),
		ContentLength: int64(len(resp.Body)),
		Request:       req,
	}, nil
}

// handleHostCall decodes an httpclient request, dispatches it and encodes
// the reply.
func (s *Stub) handleHostCall(payload []byte) ([]byte, error) {
	var req proto.HTTPClient
	if err := pb.Unmarshal(payload, &req); err != nil {
		return nil, errors.Join(ErrDecodeRequest, err)
	}

	header := make(http.Header, len(req.GetHeaders()))
	for name, h := range req.GetHeaders() {
		header[http.CanonicalHeaderKey(name)] = h.GetValues()
	}

	resp := s.Dispatch(req.GetMethod(), req.GetUrl(), Options{
		Header:   header,
		Body:     req.GetBody(),
		Insecure: req.GetInsecure(),
	})
	if resp.Error != nil {
		return nil, resp.Error
	}

	return pb.Marshal(toProto(resp))
}

func toProto(r *Response) *proto.HTTPClientResponse {
	out := &proto.HTTPClientResponse{
		Status:  &sdkproto.Status{Status: "OK", Code: httpclient.HostStatusOK},
		Code:    int32(r.StatusCode),
		Headers: make(map[string]*proto.Header, len(r.Header)),
		Body:    r.Body,
	}
	for name, values := range r.Header {
		out.Headers[name] = &proto.Header{Values: values}
	}
	return out
}

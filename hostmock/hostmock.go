package hostmock

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedNamespace is returned when the namespace is not as expected.
	ErrUnexpectedNamespace = errors.New("unexpected namespace")

	// ErrUnexpectedCapability is returned when the capability is not as expected.
	ErrUnexpectedCapability = errors.New("unexpected capability")

	// ErrUnexpectedFunction is returned when the function is not as expected.
	ErrUnexpectedFunction = errors.New("unexpected function")

	// ErrOperationFailed is returned when Fail is set without a custom error.
	ErrOperationFailed = errors.New("operation failed")
)

// Config represents the configuration for creating a Mock instance.
type Config struct {
	// ExpectedNamespace defines the namespace expected in the host call.
	// Empty matches any namespace.
	ExpectedNamespace string

	// ExpectedCapability defines the capability expected in the host call.
	// Empty matches any capability.
	ExpectedCapability string

	// ExpectedFunction defines the function name expected in the host call.
	// Empty matches any function.
	ExpectedFunction string

	// Error is the error to return if the mock is configured to fail.
	Error error

	// PayloadValidator validates the payload passed to the host call.
	PayloadValidator func([]byte) error

	// Handler computes the reply from the payload. It takes precedence over Response.
	Handler func([]byte) ([]byte, error)

	// Response defines a fixed response to return for the host call.
	Response func() []byte

	// Fail indicates whether the mock should return an error.
	Fail bool
}

// Mock simulates a host call interface with routing validation and scripted replies.
type Mock struct {
	cfg Config
}

// New creates a new instance of the Mock based on the provided Config.
func New(config Config) (*Mock, error) {
	return &Mock{cfg: config}, nil
}

// HostCall simulates a host call, validating inputs and returning a response or error.
func (m *Mock) HostCall(namespace, capability, function string, payload []byte) ([]byte, error) {
	if m.cfg.Fail {
		if m.cfg.Error != nil {
			return nil, m.cfg.Error
		}
		return nil, ErrOperationFailed
	}

	if err := m.route(namespace, capability, function); err != nil {
		return nil, err
	}

	if m.cfg.PayloadValidator != nil {
		if err := m.cfg.PayloadValidator(payload); err != nil {
			return nil, err
		}
	}

	switch {
	case m.cfg.Handler != nil:
		return m.cfg.Handler(payload)
	case m.cfg.Response != nil:
		return m.cfg.Response(), nil
	default:
		return nil, nil
	}
}

// route checks the call against the configured expectations, skipping blank ones.
func (m *Mock) route(namespace, capability, function string) error {
	if m.cfg.ExpectedNamespace != "" && m.cfg.ExpectedNamespace != namespace {
		return fmt.Errorf(
			"%w: expected namespace %s, got %s",
			ErrUnexpectedNamespace,
			m.cfg.ExpectedNamespace,
			namespace,
		)
	}

	if m.cfg.ExpectedCapability != "" && m.cfg.ExpectedCapability != capability {
		return fmt.Errorf(
			"%w: expected capability %s, got %s",
			ErrUnexpectedCapability,
			m.cfg.ExpectedCapability,
			capability,
		)
	}

	if m.cfg.ExpectedFunction != "" && m.cfg.ExpectedFunction != function {
		return fmt.Errorf("%w: expected function %s, got %s", ErrUnexpectedFunction, m.cfg.ExpectedFunction, function)
	}

	return nil
}

/*
Package httpstub holds the runtime configuration and host errors shared by the
stub HTTP client and the capability clients it substitutes for.

The stub itself lives in the stub package. The httpclient package is the
client abstraction code under test is written against; the stub plugs into it
as the host-call function, so tests exercise the exact same client surface.
*/
package httpstub

// DefaultNamespace is used when no explicit namespace is provided.
const DefaultNamespace = "tarmac"

// RuntimeConfig carries configuration that is used during creation of clients.
type RuntimeConfig struct {
	// Namespace is the function namespace used to scope host interactions.
	Namespace string
}

// WithDefaults returns a copy of the configuration with empty fields filled in.
func (c RuntimeConfig) WithDefaults() RuntimeConfig {
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	return c
}

// HostCall is the waPC host function signature every capability client uses
// to reach the host.
type HostCall func(namespace, capability, function string, payload []byte) ([]byte, error)

/*
Package hostmock provides a pretend waPC host.

The stub client uses it to accept host calls from the httpclient package, and
tests use it directly when they want to check exactly what a capability client
sends to the host without a real host running.

Quick start

	m, _ := hostmock.New(hostmock.Config{
	  ExpectedNamespace:  "tarmac",
	  ExpectedCapability: "httpclient",
	  ExpectedFunction:   "call",
	  Handler: func(p []byte) ([]byte, error) {
	    // decode p, build a reply
	    return reply, nil
	  },
	})

	resp, err := m.HostCall("tarmac", "httpclient", "call", payload)

Behavior

  - If Fail is true and Error is set, HostCall returns that error.
  - If Fail is true and Error is nil, HostCall returns ErrOperationFailed.
  - Otherwise the namespace, capability and function are checked against the
    expectations that are set; blank expectations match anything.
  - PayloadValidator runs next when provided.
  - Handler, when set, produces the reply. Otherwise Response provides fixed
    bytes, and with neither HostCall returns nil.
*/
package hostmock

/*
Package httpclient provides the HTTP client used by Tarmac WebAssembly
functions.

Requests are encoded as protobuf and handed to a host-call function. In
production that is wapc.HostCall; in tests it is usually the stub package's
HostCall, which answers from registered rules instead of the network. The
Client interface offers Get, Post, Put and Delete shortcuts and a Do method
for custom requests. Errors are sentinel values joined with their cause and
can be checked with errors.Is.
*/
package httpclient

// Package transport delivers serialized XML-RPC requests over HTTP and
// returns the parsed XML response.
//
// The package does not interpret the remote procedure vocabulary: a fault
// reported inside a well-formed response is returned as a normal document.
// Its job ends at delivering bytes, surviving transient failures, and
// classifying the final failure as a ConfigurationError, TimeoutFailure or
// TransportFailure.
//
// Basic usage:
//
//	cfg := transport.NewConfig()
//	cfg.SetURL("https://erp.example.com/xmlrpc/2")
//	cfg.SetPath("common")
//	cfg.SetAttempts(3)
//
//	exec := transport.NewBuilder(log).WithConfig(cfg).Build()
//	doc, err := exec.SendRequest(ctx, payload)
//	switch {
//	case transport.IsTimeout(err):
//		// operation expired
//	case err != nil:
//		// could not reach server or malformed response
//	}
//
// Security: every Environment disables TLS certificate verification. Do not
// use this package where certificate trust matters.
//
// Worst-case latency of one call is
// Attempts*Timeout + (Attempts-1)*AttemptBackoff.
package transport

// Package httpclient is the JSON-over-HTTP transport used to talk to the
// process engine. It resolves paths against a base URL, classifies failed
// responses into typed errors and optionally wraps calls in a retry loop
// and a circuit breaker.
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "http://localhost:8080",
//	    Timeout: 10 * time.Second,
//	})
//	resp, err := httpclient.Get[StatusPayload](client, ctx, "/api/process/status/"+id)
package httpclient

// Package httputil provides the HTTP plumbing shared by registry clients.
//
// [Client] wraps an *http.Client with default headers, a request timeout,
// and status-code mapping, so callers deal in bytes and sentinel errors
// instead of raw responses. [Retry] re-runs transient failures with
// exponential backoff; only errors wrapped in [RetryableError] are retried,
// which keeps definitive answers like a 404 from being hammered. And
// [NewTransport] builds a transport with an in-process DNS cache, which
// matters once a refresh fans out hundreds of requests to the same
// registry host.
package httputil

// Package errs defines the error shape every API response uses.
//
// Handlers and services return *HTTPError for failures the client should
// see; the global error handler serializes it unchanged.
package errs

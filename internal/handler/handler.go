// Package handler is the HTTP layer of the API.
//
// Handlers bind and validate requests, call the service layer and write the
// response. Routes are registered by the router package.
package handler

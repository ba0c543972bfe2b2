// Package middleware holds the global and route level Echo middleware:
// authentication (Clerk), request IDs, request-scoped logging, tracing,
// rate limiting and the global error handler.
package middleware

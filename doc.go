// Package auth provides session authentication for fiber applications:
// user registration, credential verification, stateless JWT sessions
// delivered as a signed cookie and in the response body, role based route
// protection, and a two phase time boxed password reset flow.
//
// The package is storage backed by bun and exposes its HTTP surface through
// RegisterAuthRoutes. Route protection comes in two flavors sharing one
// verification routine: Guard.Protected rejects the request on any failure,
// Guard.Optional downgrades every failure to an anonymous continue.
package auth

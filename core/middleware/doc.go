// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation. The admin key passes directly; any other key is
//     resolved to a library user whose record is stored in the request locals.
//   - rayid: assigns each request a unique Request ID (RayID), injecting it into
//     the context and the X-Ray-ID response header for tracing.
package middleware

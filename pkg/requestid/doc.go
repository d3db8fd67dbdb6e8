// Package requestid propagates a per-request identifier.
//
// Middleware reuses a sane incoming X-Request-ID or generates a UUID, echoes
// it on the response and stores it in the context. LoggerExtractor plugs it
// into the logger so every record of a request carries the same id.
package requestid

// Package response defines the canonical Response record and the
// normalizer that converts raw generator results into one.
//
// Generators may return plain values and rely on smart defaults
// (status 200, content type inferred from the Go type), or return an
// explicit tuple — a []any of [status, body] or [status, body, headers]
// whose first element is an HTTP status integer — for full manual
// control. Tuples bypass the smart content-type defaults entirely.
package response

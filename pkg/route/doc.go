// Package route implements the route table: compiled path patterns,
// registration-order matching, and path parameter extraction.
//
// Patterns are sequences of /-delimited segments. A segment starting with
// ":" is a named parameter that binds exactly one non-empty path segment;
// any other segment is matched by case-sensitive string equality. Routes
// are scanned in registration order and the first match wins, regardless
// of specificity. Callers that want a static pattern to beat a
// parameterized one must register it first.
package route

// Package idgen wraps the UUID generator so that tests can substitute a
// deterministic source. It lives under `internal` because callers must treat
// identifiers as opaque strings and not rely on their shape.
package idgen

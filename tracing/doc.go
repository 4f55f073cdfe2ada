// Package tracing is a thin wrapper around OpenTelemetry so the rest of the
// code-base can open and close spans without depending on the upstream API.
// Until Init (or InitWithExporter) succeeds all spans are no-ops.
package tracing

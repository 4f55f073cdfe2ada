// Package execution provides the client-held process handle and the process
// registry. A Process wraps the opaque task-control handle returned by the
// scheduling entry point; its result is delivered through the one-shot
// reply-channel protocol. The Manager owns registered processes until they
// are explicitly cleared.
package execution

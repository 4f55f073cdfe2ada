// Package nimbus is the client-side orchestration core of a distributed
// computation runtime: it lets a caller submit a computation to a cluster,
// track it as a long-lived process handle and safely cancel it, while
// tolerating transient failures.
//
// Three primitives carry the rest of the module:
//
//   - outcome      – a success/failure wrapper that preserves the original
//     failure across goroutine and process boundaries, plus bounded retry
//   - mailbox      – a single-consumer actor with exactly-once reply delivery
//   - cancellation – a multi-parent token tree with optional durable elevation
//
// The scheduler, dependency shipping, durable storage and worker directory
// are external collaborators consumed through contracts; in-process
// implementations back local development and tests.
//
// Typical use:
//
//	srv, _ := nimbus.New()
//	defer srv.Shutdown()
//	token, _ := srv.Cancellation().Create(ctx)
//	process, _ := nimbus.CreateProcess(ctx, srv, computation, nimbus.WithToken(token))
//	result, err := process.Result(ctx)
package nimbus

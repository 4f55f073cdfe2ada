// Package mailbox implements a single-consumer actor abstraction with
// exactly-once reply delivery.
//
// A Mailbox owns an unbounded FIFO queue of messages and a single handler
// goroutine, so state touched only from the handler needs no locking.
// Messages posted by one caller are handled strictly in post order; there is
// no ordering guarantee across callers. Request/reply coordination goes
// through one-shot ReplyHandle capabilities: every accepted request produces
// exactly one reply, even when the handler fails or panics.
package mailbox

// Package policy provides the fault-policy value object carried through
// computation submission. It is deliberately decoupled from enforcement: the
// scheduler consuming a submission decides how to spend the retry budget.
package policy

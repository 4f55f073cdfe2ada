// Package assembly defines the contracts of the dependency-shipping
// collaborator: computing a computation's code closure and uploading the
// resulting artifacts idempotently, keyed by content-derived identity.
package assembly

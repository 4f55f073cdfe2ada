package model

import (
	"context"
	"fmt"
)

// Computation is the client-side representation of one cloud computation: an
// opaque body together with the module names hinting its code/dependency
// closure. The body never leaves the client in this core - shipping it is
// the job of the external scheduler and the dependency collaborator.
type Computation[T any] struct {
	// Name is an optional human-readable label carried through submission.
	Name string

	// Modules names the code artifacts this computation needs present on
	// the execution side. The dependency collaborator resolves them into an
	// ordered artifact closure.
	Modules []string

	// Run is the computation body.
	Run func(ctx context.Context) (T, error)
}

// Validate returns an error describing an unusable computation or nil.
func (c *Computation[T]) Validate() error {
	if c == nil {
		return fmt.Errorf("computation is nil")
	}
	if c.Run == nil {
		return fmt.Errorf("computation %q has no body", c.Name)
	}
	return nil
}

// Descriptor returns the untyped view handed to external collaborators.
func (c *Computation[T]) Descriptor() *Descriptor {
	return &Descriptor{Name: c.Name, Modules: append([]string(nil), c.Modules...)}
}

// Descriptor is the serialisable, type-erased description of a computation
// consumed by the dependency-shipping collaborator.
type Descriptor struct {
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Modules []string `json:"modules,omitempty" yaml:"modules,omitempty"`
}

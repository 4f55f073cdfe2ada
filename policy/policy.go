package policy

import "context"

// DefaultMaxRetries is the fault-policy retry budget applied when the caller
// supplies none.
const DefaultMaxRetries = 1

// Fault is the retry budget attached to a submitted computation. This core
// only carries and defaults it - enforcing it against actual computation
// attempts is the external scheduler's responsibility.
type Fault struct {
	MaxRetries int `json:"maxRetries" yaml:"maxRetries"`
}

// Default returns the fault policy used when the caller supplies none.
func Default() Fault {
	return Fault{MaxRetries: DefaultMaxRetries}
}

// OrDefault normalises a zero-valued policy to the documented default.
func (f Fault) OrDefault() Fault {
	if f.MaxRetries <= 0 {
		return Default()
	}
	return f
}

// Config is the serialisable form of Fault used in configuration files.
type Config struct {
	MaxRetries int `json:"maxRetries" yaml:"maxRetries"`
}

// Fault converts the configuration to the value object, applying the
// documented default when unset.
func (c *Config) Fault() Fault {
	if c == nil {
		return Default()
	}
	return Fault{MaxRetries: c.MaxRetries}.OrDefault()
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithFault embeds the fault policy in ctx so nested submissions inherit it.
func WithFault(ctx context.Context, f Fault) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, f)
}

// FromContext extracts the fault policy, falling back to the default.
func FromContext(ctx context.Context) Fault {
	if ctx == nil {
		return Default()
	}
	if v, ok := ctx.Value(ctxKey).(Fault); ok {
		return v.OrDefault()
	}
	return Default()
}

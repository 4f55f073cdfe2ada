package nimbus

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/viant/nimbus/outcome"
	"github.com/viant/nimbus/policy"
)

// Config is a serialisable representation of the client configuration. It
// can be populated from JSON or YAML; the zero value inherits the package
// defaults for every nested field.
type Config struct {
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`
	Retry     RetryConfig     `json:"retry" yaml:"retry"`

	// FaultPolicy is the default retry budget attached to submissions created
	// without an explicit WithFaultPolicy option.
	FaultPolicy *policy.Config `json:"faultPolicy,omitempty" yaml:"faultPolicy,omitempty"`

	// CancellationBaseURL, when set, backs elevated cancellation tokens with
	// the filesystem entry store rooted at this location.
	CancellationBaseURL string `json:"cancellationBaseURL,omitempty" yaml:"cancellationBaseURL,omitempty"`

	// AssemblyBaseURL, when set, ships dependency artifacts to the
	// filesystem store rooted at this location.
	AssemblyBaseURL string `json:"assemblyBaseURL,omitempty" yaml:"assemblyBaseURL,omitempty"`
}

// SchedulerConfig configures the default in-process scheduling backend.
type SchedulerConfig struct {
	Workers      int `json:"workers" yaml:"workers"`
	RetryDelayMs int `json:"retryDelayMs" yaml:"retryDelayMs"`
}

// RetryConfig bounds retries of transient local operations (for example
// concurrent directory setup races).
type RetryConfig struct {
	MaxRetries int `json:"maxRetries" yaml:"maxRetries"`
	DelayMs    int `json:"delayMs" yaml:"delayMs"`
}

// DefaultConfig returns a Config populated with the package defaults.
// Callers may modify the returned struct before passing it to New.
func DefaultConfig() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			Workers:      5,
			RetryDelayMs: 100,
		},
		Retry: RetryConfig{
			MaxRetries: 3,
			DelayMs:    100,
		},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Scheduler.Workers < 0 {
		return fmt.Errorf("scheduler.workers must be >= 0")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.maxRetries must be >= 0")
	}
	return nil
}

// RetryPolicy converts the retry section to an outcome.RetryPolicy.
func (c *Config) RetryPolicy() outcome.RetryPolicy {
	ret := outcome.DefaultRetryPolicy()
	if c.Retry.MaxRetries > 0 {
		ret.MaxRetries = c.Retry.MaxRetries
	}
	if c.Retry.DelayMs > 0 {
		ret.Delay = time.Duration(c.Retry.DelayMs) * time.Millisecond
	}
	return ret
}

// NewConfigFromURL loads a YAML config from the supplied location (local
// path or any afs-supported URL).
func NewConfigFromURL(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", URL, err)
	}
	ret := DefaultConfig()
	if err := yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", URL, err)
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

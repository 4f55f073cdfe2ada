package nimbus

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/viant/nimbus/assembly"
	"github.com/viant/nimbus/cancellation"
	"github.com/viant/nimbus/cluster"
	"github.com/viant/nimbus/scheduler"
	"github.com/viant/nimbus/tracing"
)

// Option customises the client service.
type Option func(s *Service)

// WithConfig sets the service configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithResolver sets the dependency-shipping collaborator computing
// computation closures.
func WithResolver(resolver assembly.Resolver) Option {
	return func(s *Service) {
		s.resolver = resolver
	}
}

// WithAssemblyStore sets the artifact store.
func WithAssemblyStore(store assembly.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithScheduler sets the external scheduling entry point. The caller owns
// the lifecycle of a scheduler supplied this way.
func WithScheduler(service scheduler.Service) Option {
	return func(s *Service) {
		s.scheduler = service
	}
}

// WithDirectory sets the worker directory.
func WithDirectory(directory cluster.Directory) Option {
	return func(s *Service) {
		s.directory = directory
	}
}

// WithEntryStore sets the durable store backing elevated cancellation
// tokens.
func WithEntryStore(store cancellation.EntryStore) Option {
	return func(s *Service) {
		s.entryStore = store
	}
}

// WithTracing configures OpenTelemetry tracing with the stdout exporter. If
// outputFile is empty traces go to stdout. Safe to use multiple times - the
// first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing with a custom span
// exporter (OTLP, Jaeger, Zipkin, ...).
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}

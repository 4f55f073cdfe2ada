package nimbus

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/nimbus/assembly"
	afsstore "github.com/viant/nimbus/assembly/fs"
	amemory "github.com/viant/nimbus/assembly/memory"
	"github.com/viant/nimbus/cancellation"
	cfs "github.com/viant/nimbus/cancellation/store/fs"
	cmemory "github.com/viant/nimbus/cancellation/store/memory"
	"github.com/viant/nimbus/cluster"
	"github.com/viant/nimbus/evaluator"
	"github.com/viant/nimbus/execution"
	"github.com/viant/nimbus/internal/idgen"
	"github.com/viant/nimbus/model"
	"github.com/viant/nimbus/policy"
	"github.com/viant/nimbus/scheduler"
	smemory "github.com/viant/nimbus/scheduler/memory"
	"github.com/viant/nimbus/tracing"
)

// Service is the client façade of the distributed computation runtime: it
// ships a computation's dependency closure, submits the computation to the
// scheduling entry point and tracks the returned handle as a managed
// process. All collaborators are explicit fields constructed once at client
// construction time; their lifetime is tied to the service.
type Service struct {
	config     *Config
	resolver   assembly.Resolver
	store      assembly.Store
	scheduler  scheduler.Service
	directory  cluster.Directory
	entryStore cancellation.EntryStore
	registry   *cancellation.Registry
	manager    *execution.Manager
	evaluator  *evaluator.Service

	ownedScheduler *smemory.Service
}

// New creates a client service. Collaborators not supplied through options
// fall back to in-process implementations, so a bare New() yields a working
// local runtime.
func New(options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig()}
	for _, option := range options {
		option(ret)
	}
	if err := ret.config.Validate(); err != nil {
		return nil, err
	}
	if err := ret.ensureBaseSetup(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) ensureBaseSetup() error {
	if s.entryStore == nil {
		if s.config.CancellationBaseURL != "" {
			store, err := cfs.New(s.config.CancellationBaseURL)
			if err != nil {
				return err
			}
			s.entryStore = store
		} else {
			s.entryStore = cmemory.New()
		}
	}
	if s.store == nil {
		if s.config.AssemblyBaseURL != "" {
			store, err := afsstore.New(s.config.AssemblyBaseURL)
			if err != nil {
				return err
			}
			s.store = store
		} else {
			s.store = amemory.NewStore()
		}
	}
	if s.resolver == nil {
		s.resolver = amemory.NewResolver()
	}
	if s.scheduler == nil {
		owned := smemory.New(smemory.Config{
			Workers:    s.config.Scheduler.Workers,
			RetryDelay: time.Duration(s.config.Scheduler.RetryDelayMs) * time.Millisecond,
		})
		if err := owned.Start(context.Background()); err != nil {
			return err
		}
		s.scheduler = owned
		s.ownedScheduler = owned
	}
	if s.directory == nil {
		s.directory = cluster.NewStatic(&cluster.Worker{ID: "local", Endpoint: "in-process"})
	}
	s.registry = cancellation.NewRegistry(cancellation.WithStore(s.entryStore))
	s.manager = execution.NewManager()
	s.evaluator = evaluator.New()
	return nil
}

// Shutdown stops the scheduler owned by this service. A scheduler supplied
// via WithScheduler is left to its owner.
func (s *Service) Shutdown() {
	if s.ownedScheduler != nil {
		s.ownedScheduler.Shutdown()
	}
}

// Cancellation returns the token arena of this client. Callers build tokens
// here before submission and adopt remote ones by id.
func (s *Service) Cancellation() *cancellation.Registry {
	return s.registry
}

// Manager returns the process registry.
func (s *Service) Manager() *execution.Manager {
	return s.manager
}

// Processes returns every registered process.
func (s *Service) Processes() []execution.Handle {
	return s.manager.All()
}

// Process returns the registered process with the given id.
func (s *Service) Process(id string) (execution.Handle, error) {
	return s.manager.Get(id)
}

// Clear releases the bookkeeping of a terminal process.
func (s *Service) Clear(ctx context.Context, id string) error {
	return s.manager.Clear(ctx, id)
}

// ClearAll clears every terminal process and returns how many were cleared.
func (s *Service) ClearAll(ctx context.Context) (int, error) {
	return s.manager.ClearAll(ctx)
}

// Workers lists the workers currently available to run computations.
func (s *Service) Workers(ctx context.Context) ([]*cluster.Worker, error) {
	return s.directory.ListWorkers(ctx)
}

// ---------------------------------------------------------------------------
// Process creation
// ---------------------------------------------------------------------------

type processOptions struct {
	name        string
	faultPolicy policy.Fault
	token       *cancellation.Token
	target      *cluster.Worker
}

// ProcessOption customises one submission.
type ProcessOption func(o *processOptions)

// WithName labels the process.
func WithName(name string) ProcessOption {
	return func(o *processOptions) {
		o.name = name
	}
}

// WithFaultPolicy attaches a retry budget; when omitted the documented
// default of one retry applies.
func WithFaultPolicy(fault policy.Fault) ProcessOption {
	return func(o *processOptions) {
		o.faultPolicy = fault
	}
}

// WithToken roots the process under a cancellation token. No token is
// created implicitly - the caller controls the cancellation scope.
func WithToken(token *cancellation.Token) ProcessOption {
	return func(o *processOptions) {
		o.token = token
	}
}

// WithTarget pins the computation to a specific worker.
func WithTarget(target *cluster.Worker) ProcessOption {
	return func(o *processOptions) {
		o.target = target
	}
}

// CreateProcess ships the computation's dependency closure, submits the
// computation to the scheduling entry point and registers the returned
// handle as a managed process.
func CreateProcess[T any](ctx context.Context, s *Service, computation *model.Computation[T], options ...ProcessOption) (*execution.Process[T], error) {
	if err := computation.Validate(); err != nil {
		return nil, err
	}
	opts := processOptions{name: computation.Name, faultPolicy: s.config.FaultPolicy.Fault()}
	for _, option := range options {
		option(&opts)
	}

	_, span := tracing.StartSpan(ctx, "nimbus.createProcess", map[string]string{"name": opts.name})

	artifacts, err := s.resolver.ComputeDependencies(ctx, computation.Descriptor())
	if err != nil {
		span.End(err)
		return nil, fmt.Errorf("failed to compute dependencies: %w", err)
	}
	if err := s.store.Upload(ctx, artifacts...); err != nil {
		span.End(err)
		return nil, fmt.Errorf("failed to upload dependencies: %w", err)
	}

	processID := idgen.New()
	dependencyIDs := assembly.IDs(artifacts)
	handle, err := s.scheduler.Submit(ctx, &scheduler.Submission{
		ProcessID:     processID,
		Name:          opts.name,
		Invoke:        func(ctx context.Context) (any, error) { return computation.Run(ctx) },
		DependencyIDs: dependencyIDs,
		FaultPolicy:   opts.faultPolicy,
		Token:         opts.token,
		Target:        opts.target,
	})
	if err != nil {
		span.End(err)
		return nil, err
	}

	process := execution.NewProcess[T](processID, opts.name, opts.faultPolicy, dependencyIDs, opts.token, handle)
	if err := s.manager.Register(process); err != nil {
		_ = handle.Discard(ctx)
		span.End(err)
		return nil, err
	}
	span.End(nil)
	return process, nil
}

// Run creates a process and waits for its result.
func Run[T any](ctx context.Context, s *Service, computation *model.Computation[T], options ...ProcessOption) (T, error) {
	process, err := CreateProcess(ctx, s, computation, options...)
	if err != nil {
		var zero T
		return zero, err
	}
	return process.Result(ctx)
}

// RunLocally executes the computation on the in-process evaluator, bypassing
// distributed submission entirely. The run is not registered with the
// process manager. Of the process options only WithToken applies here;
// submission-only options (name, fault policy, target) are ignored because
// no submission takes place.
func RunLocally[T any](ctx context.Context, s *Service, computation *model.Computation[T], options ...ProcessOption) (T, error) {
	var opts processOptions
	for _, option := range options {
		option(&opts)
	}
	return evaluator.Run(ctx, s.evaluator, computation, opts.token)
}

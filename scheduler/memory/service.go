// Package memory provides an in-process scheduling entry point. It executes
// submissions on a small worker pool, spends the submission's fault-policy
// retry budget on faulted attempts and polls the cancellation token at
// suspension points. It backs local development, tests and single-process
// deployments.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dogmatiq/linger"
	"github.com/viant/nimbus/internal/idgen"
	"github.com/viant/nimbus/mailbox"
	"github.com/viant/nimbus/outcome"
	"github.com/viant/nimbus/scheduler"
	"github.com/viant/nimbus/tracing"
)

// Config represents scheduler service configuration.
type Config struct {
	// Workers is the number of goroutines executing submissions.
	Workers int

	// RetryDelay is the pause between faulted attempts.
	RetryDelay time.Duration

	// CancelPollInterval bounds how quickly a fired token resolves an
	// in-flight task.
	CancelPollInterval time.Duration

	// QueueBuffer is the capacity of the pending-submission queue.
	QueueBuffer int
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		Workers:            5,
		RetryDelay:         100 * time.Millisecond,
		CancelPollInterval: 20 * time.Millisecond,
		QueueBuffer:        100,
	}
}

// task is one accepted submission with its one-shot result channel.
type task struct {
	id         string
	submission *scheduler.Submission
	reply      *mailbox.ReplyHandle[any]
	future     *mailbox.Future[any]
}

// command mutates or queries the task table. Commands flow through the
// control mailbox, which serialises all bookkeeping - the table needs no
// locking.
type command struct {
	register *task
	discard  string
	count    bool
	reply    *mailbox.ReplyHandle[int]
}

// Service implements scheduler.Service in-process.
type Service struct {
	config  Config
	control *mailbox.Mailbox[command]
	tasks   map[string]*task // owned by the control mailbox handler
	pending chan *task

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

var _ scheduler.Service = (*Service)(nil)

// New creates a scheduler service; call Start before submitting.
func New(config Config) *Service {
	defaults := DefaultConfig()
	if config.Workers <= 0 {
		config.Workers = defaults.Workers
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = defaults.RetryDelay
	}
	if config.CancelPollInterval <= 0 {
		config.CancelPollInterval = defaults.CancelPollInterval
	}
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = defaults.QueueBuffer
	}
	ret := &Service{
		config:  config,
		tasks:   map[string]*task{},
		pending: make(chan *task, config.QueueBuffer),
	}
	ret.control = mailbox.New[command](ret.handle)
	return ret
}

// Start spins up the worker pool.
func (s *Service) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.work(ctx)
	}
	return nil
}

// Shutdown stops the workers and the control mailbox.
func (s *Service) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.control.Shutdown()
}

// Submit registers the submission and queues it for execution, returning the
// opaque task-control handle.
func (s *Service) Submit(ctx context.Context, submission *scheduler.Submission) (scheduler.Handle, error) {
	if submission == nil || submission.Invoke == nil {
		return nil, fmt.Errorf("submission has no body")
	}
	if submission.ProcessID == "" {
		return nil, fmt.Errorf("submission process id cannot be empty")
	}

	reply, future := mailbox.NewReply[any]()
	t := &task{
		id:         idgen.New(),
		submission: submission,
		reply:      reply,
		future:     future,
	}
	if _, err := mailbox.PostAndReply[command, int](ctx, s.control, func(r *mailbox.ReplyHandle[int]) command {
		return command{register: t, reply: r}
	}); err != nil {
		return nil, err
	}

	select {
	case s.pending <- t:
	case <-ctx.Done():
		_ = s.control.Post(command{discard: t.id})
		return nil, ctx.Err()
	}
	return &handle{service: s, taskID: t.id, future: future}, nil
}

// Tasks returns the number of tasks currently tracked by the scheduler.
func (s *Service) Tasks(ctx context.Context) (int, error) {
	return mailbox.PostAndReply[command, int](ctx, s.control, func(r *mailbox.ReplyHandle[int]) command {
		return command{count: true, reply: r}
	})
}

// handle returns the updated task count on every accepted command; a
// registration under a taken id fails the waiting caller through the
// mailbox's auto-reply.
func (s *Service) handle(_ context.Context, cmd command) error {
	switch {
	case cmd.register != nil:
		if _, ok := s.tasks[cmd.register.id]; ok {
			return fmt.Errorf("task %s already registered", cmd.register.id)
		}
		s.tasks[cmd.register.id] = cmd.register
	case cmd.discard != "":
		delete(s.tasks, cmd.discard)
	case cmd.count:
	default:
		return fmt.Errorf("empty scheduler command")
	}
	if cmd.reply != nil {
		return cmd.reply.Reply(len(s.tasks))
	}
	return nil
}

func (s *Service) work(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-s.pending:
			s.execute(ctx, t)
		}
	}
}

// execute runs the submission's attempts. A concurrent watcher resolves the
// task early when the token fires; the reply handle is one-shot, so whoever
// loses the race becomes a no-op. The body runs under a per-task context the
// watcher cancels after replying, so a cooperative body unblocks and releases
// its worker instead of pinning it until Shutdown.
func (s *Service) execute(ctx context.Context, t *task) {
	sub := t.submission
	_, span := tracing.StartSpan(ctx, "scheduler.execute", map[string]string{
		"processId": sub.ProcessID,
		"name":      sub.Name,
	})

	taskCtx, cancelTask := context.WithCancel(ctx)
	defer cancelTask()
	if sub.Token != nil {
		go s.watchCancellation(taskCtx, t, cancelTask)
	}

	budget := sub.FaultPolicy.OrDefault()
	var last error
	for attempt := 0; ; attempt++ {
		if s.tokenFired(taskCtx, sub) {
			last = scheduler.ErrCancelled
			break
		}
		result := outcome.Catch(func() (any, error) {
			return sub.Invoke(taskCtx)
		})
		if !result.Failed() {
			_ = t.reply.ReplyOutcome(result)
			span.End(nil)
			return
		}
		last = result.Err()
		if attempt >= budget.MaxRetries {
			break
		}
		if err := linger.Sleep(taskCtx, s.config.RetryDelay); err != nil {
			last = err
			break
		}
	}
	_ = t.reply.ReplyError(last)
	span.End(last)
}

func (s *Service) tokenFired(ctx context.Context, sub *scheduler.Submission) bool {
	if sub.Token == nil {
		return false
	}
	cancelled, err := sub.Token.IsCancelled(ctx)
	return err == nil && cancelled
}

// watchCancellation polls the submission token and, once it fires, resolves
// the task and cancels the per-task context so an in-flight body unblocks.
func (s *Service) watchCancellation(ctx context.Context, t *task, cancelTask context.CancelFunc) {
	for {
		if cancelled, err := t.submission.Token.IsCancelled(ctx); err == nil && cancelled {
			_ = t.reply.ReplyError(scheduler.ErrCancelled)
			cancelTask()
			return
		}
		if err := linger.Sleep(ctx, s.config.CancelPollInterval); err != nil {
			return
		}
	}
}

// handle implements the opaque task-control contract.
type handle struct {
	service *Service
	taskID  string
	future  *mailbox.Future[any]
}

var _ scheduler.Handle = (*handle)(nil)

func (h *handle) Future() *mailbox.Future[any] {
	return h.future
}

// Discard releases the scheduler-side bookkeeping for this task.
func (h *handle) Discard(ctx context.Context) error {
	_, err := mailbox.PostAndReply[command, int](ctx, h.service.control, func(r *mailbox.ReplyHandle[int]) command {
		return command{discard: h.taskID, reply: r}
	})
	return err
}

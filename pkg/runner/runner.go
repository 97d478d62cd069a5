// Package runner owns the single task slot. It dispatches one command at a
// time to the agent, streams classified progress into the event queue, and
// enforces the cooperative cancellation model: a stop request is observed at
// checkpoints around the agent invocation, never inside it.
package runner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/machovotrish/luma/pkg/agent"
	"github.com/machovotrish/luma/pkg/events"
	"github.com/machovotrish/luma/pkg/log"
	"github.com/machovotrish/luma/pkg/metrics"
	"github.com/machovotrish/luma/pkg/middleware"
	"github.com/machovotrish/luma/pkg/ratelimit"
	"github.com/machovotrish/luma/pkg/sink"
)

// State is the task lifecycle state.
type State string

const (
	// StateIdle means the run slot is free
	StateIdle State = "idle"
	// StateRunning means a task occupies the slot
	StateRunning State = "running"
	// StateCompleted is the terminal state of a successful run
	StateCompleted State = "completed"
	// StateCancelled is the terminal state of a stopped run
	StateCancelled State = "cancelled"
	// StateFailed is the terminal state of a failed run
	StateFailed State = "failed"
)

var (
	// ErrAlreadyRunning is returned when Start is called while a task
	// occupies the slot.
	ErrAlreadyRunning = errors.New("a task is already running")
	// ErrEmptyCommand is returned when Start is called with no command text.
	ErrEmptyCommand = errors.New("command is empty")
	// ErrNoCredential is returned when the agent requires an API key and
	// none is configured.
	ErrNoCredential = errors.New("no API key configured")
	// ErrAgentUnavailable is returned while the runner is degraded because
	// the agent failed its availability check at startup.
	ErrAgentUnavailable = errors.New("agent is not available")
)

// SystemSender is the display name on application notices.
const SystemSender = "System"

// Task describes one accepted command.
type Task struct {
	// ID is the unique task identifier
	ID string
	// Command is the user's text before rule injection
	Command string
	// StartedAt is when the task was accepted
	StartedAt time.Time
}

// Options configures a Runner. Agent and Queue are required.
type Options struct {
	// Agent executes the tasks
	Agent agent.Agent
	// Chain rewrites and validates commands before dispatch
	Chain *middleware.Chain
	// Queue receives chat and control events
	Queue *events.Queue
	// Sink is flushed after each invocation so a trailing partial line
	// is not lost
	Sink *sink.Classifier
	// Limiter throttles consecutive task starts (nil = unlimited)
	Limiter *ratelimit.Limiter
	// Metrics records pipeline instrumentation (nil = disabled)
	Metrics *metrics.Metrics
	// TaskTimeout bounds a single invocation (0 = unbounded)
	TaskTimeout time.Duration
	// Credential supplies the API key checked when RequireCredential is set
	Credential func() string
	// Degraded rejects every start while the agent is unavailable
	Degraded bool
	// RequireCredential rejects starts while no credential is configured
	RequireCredential bool
	// OnAccepted is called synchronously, exactly once, for each accepted
	// start; the caller appends to the persistent task history here
	OnAccepted func(task Task)
}

// Runner is the single-slot task dispatcher. All methods are safe for
// concurrent use.
type Runner struct {
	opts Options

	mu            sync.Mutex
	running       bool
	stopRequested bool
	current       Task
	lastState     State
	wg            sync.WaitGroup
}

// New creates a runner.
func New(opts Options) *Runner {
	if opts.Chain == nil {
		opts.Chain = middleware.NewChain()
	}
	return &Runner{opts: opts, lastState: StateIdle}
}

// State returns the display state of the slot. A slot whose stop was
// requested reads as idle immediately, even while the invocation drains,
// so the controls reflect the user's intent without waiting.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running && !r.stopRequested {
		return StateRunning
	}
	return StateIdle
}

// LastOutcome returns the terminal state of the most recent task, or
// StateIdle when none has run yet.
func (r *Runner) LastOutcome() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastState
}

// Busy reports whether a worker still occupies the slot, stop requested
// or not. New starts are rejected while Busy.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Start accepts a command and dispatches it on a worker goroutine.
// Exactly one of three things happens: the command is rejected with a
// sentinel error and no state changes, or it is accepted, OnAccepted fires
// once, and the slot transitions to running.
func (r *Runner) Start(command string) (Task, error) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return Task{}, ErrEmptyCommand
	}

	if r.opts.Degraded {
		return Task{}, ErrAgentUnavailable
	}

	if r.opts.RequireCredential {
		key := ""
		if r.opts.Credential != nil {
			key = r.opts.Credential()
		}
		if key == "" {
			return Task{}, ErrNoCredential
		}
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return Task{}, ErrAlreadyRunning
	}

	task := Task{
		ID:        uuid.New().String(),
		Command:   trimmed,
		StartedAt: time.Now(),
	}
	r.running = true
	r.stopRequested = false
	r.current = task
	r.mu.Unlock()

	if r.opts.OnAccepted != nil {
		r.opts.OnAccepted(task)
	}

	log.WithFields(map[string]interface{}{
		"task_id": task.ID,
		"command": task.Command,
	}).Info("task accepted")

	r.opts.Queue.Push(events.Control())

	r.wg.Add(1)
	go r.run(task)

	return task, nil
}

// Stop requests cancellation of the running task. The request is
// cooperative: the in-flight agent step keeps running, and the outcome is
// decided at the next checkpoint. Stop never blocks. It reports whether a
// task was there to stop.
func (r *Runner) Stop() bool {
	r.mu.Lock()
	if !r.running || r.stopRequested {
		r.mu.Unlock()
		return false
	}
	r.stopRequested = true
	taskID := r.current.ID
	r.mu.Unlock()

	log.WithField("task_id", taskID).Info("stop requested")

	r.opts.Queue.Push(events.Chat(SystemSender, "Stopping task, the current step will finish first", agent.KindSystem))
	r.opts.Queue.Push(events.Control())
	return true
}

// Wait blocks until the current worker, if any, has fully drained.
// Used by shutdown and tests.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(task Task) {
	defer r.wg.Done()

	if r.opts.Metrics != nil {
		r.opts.Metrics.RecordTaskStart()
	}

	outcome := r.execute(task)

	r.mu.Lock()
	r.running = false
	r.stopRequested = false
	r.lastState = outcome
	r.mu.Unlock()

	if r.opts.Metrics != nil {
		r.opts.Metrics.RecordTaskEnd(string(outcome), time.Since(task.StartedAt))
	}

	r.opts.Queue.Push(events.Control())

	log.WithFields(map[string]interface{}{
		"task_id":  task.ID,
		"outcome":  string(outcome),
		"duration": time.Since(task.StartedAt).String(),
	}).Info("task finished")
}

func (r *Runner) execute(task Task) State {
	ctx := context.Background()
	if r.opts.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.TaskTimeout)
		defer cancel()
	}

	if r.opts.Limiter != nil {
		if !r.opts.Limiter.Allow() {
			if r.opts.Metrics != nil {
				r.opts.Metrics.RecordRateLimitWait()
			}
			r.opts.Queue.Push(events.Chat(SystemSender, "Waiting for the rate limiter", agent.KindSystem))
			if err := r.opts.Limiter.Wait(ctx); err != nil {
				r.opts.Queue.Push(events.Chat(SystemSender, "Task failed: "+err.Error(), agent.KindError))
				return StateFailed
			}
		}
	}

	command, err := r.opts.Chain.Process(&middleware.CommandContext{
		Ctx:      ctx,
		TaskID:   task.ID,
		Metadata: map[string]interface{}{},
	}, task.Command)
	if err != nil {
		r.opts.Queue.Push(events.Chat(SystemSender, "Task failed: "+err.Error(), agent.KindError))
		return StateFailed
	}

	if r.opts.Metrics != nil {
		r.opts.Metrics.RecordCommandSize(len(command))
	}

	if r.cancelled() {
		r.opts.Queue.Push(events.Chat(SystemSender, "Task cancelled", agent.KindSystem))
		return StateCancelled
	}

	result, invokeErr := r.opts.Agent.Invoke(ctx, command)

	if r.opts.Sink != nil {
		r.opts.Sink.Flush()
	}

	if r.cancelled() {
		// The invocation finished after the stop request; its outcome is
		// discarded in favor of the cancellation.
		r.opts.Queue.Push(events.Chat(SystemSender, "Task cancelled", agent.KindSystem))
		return StateCancelled
	}

	if invokeErr != nil {
		log.WithField("task_id", task.ID).WithError(invokeErr).Error("task failed")
		r.opts.Queue.Push(events.Chat(SystemSender, "Task failed: "+invokeErr.Error(), agent.KindError))
		return StateFailed
	}

	if result.Content != "" {
		r.opts.Queue.Push(events.Chat(r.opts.Agent.Name(), result.Content, agent.KindAgent))
	}
	r.opts.Queue.Push(events.Chat(SystemSender, "Task completed", agent.KindSystem))
	return StateCompleted
}

func (r *Runner) cancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopRequested
}

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobStatus represents the outcome of the last run of a job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobFunc is the work executed on every tick
type JobFunc func(ctx context.Context) error

// JobState is a snapshot of a registered job
type JobState struct {
	Name      string
	Spec      string
	Status    JobStatus
	Error     string
	LastRunAt *time.Time
	NextRunAt time.Time
	Runs      int
}

type job struct {
	name    string
	spec    string
	fn      JobFunc
	entryID cron.EntryID

	mu        sync.Mutex
	status    JobStatus
	lastErr   string
	lastRunAt *time.Time
	runs      int
}

// Scheduler runs named jobs on cron expressions. A job still running when
// its next tick fires is skipped, and panics are recovered and logged.
type Scheduler struct {
	cron       *cron.Cron
	logger     *zap.Logger
	jobTimeout time.Duration

	mu      sync.RWMutex
	jobs    map[string]*job
	baseCtx context.Context
	cancel  context.CancelFunc
	running bool
}

// Option configures the Scheduler
type Option func(*Scheduler)

// WithJobTimeout bounds every job run. The default is five minutes.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.jobTimeout = d
	}
}

// New creates a scheduler using standard five-field cron expressions.
func New(logger *zap.Logger, opts ...Option) *Scheduler {
	cronLogger := &cronLogger{logger: logger.Named("cron")}
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		)),
		logger:     logger,
		jobTimeout: 5 * time.Minute,
		jobs:       make(map[string]*job),
		baseCtx:    context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a job. It can be called before or after Start.
func (s *Scheduler) Register(name, spec string, fn JobFunc) error {
	if name == "" || fn == nil {
		return ErrInvalidConfig
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	j := &job{name: name, spec: spec, fn: fn, status: JobStatusPending}
	entryID, err := s.cron.AddFunc(spec, func() { s.run(j) })
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	j.entryID = entryID
	s.jobs[name] = j

	s.logger.Info("Scheduled job registered", zap.String("job", name), zap.String("spec", spec))
	return nil
}

// Start begins ticking. ctx is the parent of every job context; cancelling
// it aborts running jobs.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.baseCtx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop halts ticking and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		s.cancel()
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

// RunNow executes a registered job synchronously, outside the schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: unknown job %s", ErrInvalidConfig, name)
	}
	return s.run(j)
}

// Jobs returns a snapshot of every registered job.
func (s *Scheduler) Jobs() []JobState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]JobState, 0, len(s.jobs))
	for _, j := range s.jobs {
		j.mu.Lock()
		states = append(states, JobState{
			Name:      j.name,
			Spec:      j.spec,
			Status:    j.status,
			Error:     j.lastErr,
			LastRunAt: j.lastRunAt,
			NextRunAt: s.cron.Entry(j.entryID).Next,
			Runs:      j.runs,
		})
		j.mu.Unlock()
	}
	return states
}

func (s *Scheduler) run(j *job) error {
	s.mu.RLock()
	parent := s.baseCtx
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(parent, s.jobTimeout)
	defer cancel()

	started := time.Now()
	j.mu.Lock()
	j.status = JobStatusRunning
	j.lastRunAt = &started
	j.runs++
	j.mu.Unlock()

	err := j.fn(ctx)
	elapsed := time.Since(started)

	j.mu.Lock()
	if err != nil {
		j.status = JobStatusFailed
		j.lastErr = err.Error()
	} else {
		j.status = JobStatusSuccess
		j.lastErr = ""
	}
	j.mu.Unlock()

	if err != nil {
		s.logger.Error("Scheduled job failed",
			zap.String("job", j.name),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return err
	}
	s.logger.Debug("Scheduled job completed", zap.String("job", j.name), zap.Duration("duration", elapsed))
	return nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"stylus/internal/config"
	"stylus/internal/handler"
	"stylus/internal/logging"
	"stylus/internal/notifications"
	"stylus/internal/queue"
)

// Worker polls the store for pending jobs and executes them one at a time.
type Worker struct {
	store    *queue.Store
	registry *handler.Registry
	notifier notifications.Service
	logger   *slog.Logger

	pollInterval       time.Duration
	errorRetryInterval time.Duration

	// instanceLock keeps a second worker process off the same queue file.
	instanceLock *flock.Flock

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// counts since the queue last went idle, for the drained notification
	completedRun int
	failedRun    int
}

// New constructs a worker from configuration.
func New(cfg *config.Config, store *queue.Store, registry *handler.Registry, notifier notifications.Service, logger *slog.Logger) *Worker {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	w := &Worker{
		store:              store,
		registry:           registry,
		notifier:           notifier,
		logger:             logging.NewComponentLogger(logger, "worker"),
		pollInterval:       time.Duration(cfg.Worker.PollInterval) * time.Second,
		errorRetryInterval: time.Duration(cfg.Worker.ErrorRetryInterval) * time.Second,
	}
	if store != nil {
		w.instanceLock = flock.New(store.Path() + ".worker")
	}
	return w
}

// Start begins background processing.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("worker already running")
	}
	if w.store == nil || w.registry == nil {
		return errors.New("worker requires a store and handler registry")
	}
	locked, err := w.instanceLock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire worker lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another worker already owns %s", w.store.Path())
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.wg.Add(1)
	go w.run(runCtx)

	w.logger.Info("worker started",
		logging.String(logging.FieldEventType, "worker_started"),
		logging.Duration("poll_interval", w.pollInterval),
	)
	return nil
}

// Stop terminates background processing and waits for completion.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()
	if err := w.instanceLock.Unlock(); err != nil {
		w.logger.Warn("failed to release worker lock", logging.Error(err))
	}
	w.logger.Info("worker stopped", logging.String(logging.FieldEventType, "worker_stopped"))
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.store.NextPending(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("failed to fetch next job",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_fetch_failed"),
				logging.String(logging.FieldErrorHint, "check queue file access"),
			)
			w.sleep(ctx, w.errorRetryInterval)
			continue
		}
		if job == nil {
			w.reportDrained(ctx)
			w.sleep(ctx, w.pollInterval)
			continue
		}

		w.processJob(ctx, job)
	}
}

// processJob drives one job through the running state into a terminal
// status. Persistence uses a context detached from shutdown so a terminal
// result observed before cancellation is never lost; a job interrupted by
// shutdown stays running for the operator to reconcile.
func (w *Worker) processJob(ctx context.Context, job *queue.Job) {
	persistCtx := context.WithoutCancel(ctx)
	logger := w.logger.With(
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldJobType, string(job.Type)),
	)

	logger.Info("job started", logging.String(logging.FieldEventType, "job_started"))
	if err := w.store.UpdateStatus(persistCtx, job.ID, queue.StatusRunning, ""); err != nil {
		logger.Error("failed to persist running status", logging.Error(err))
		w.sleep(ctx, w.errorRetryInterval)
		return
	}

	reg, ok := w.registry.Lookup(job.Type)
	if !ok {
		w.failJob(persistCtx, logger, job, fmt.Sprintf("unknown job type %q", job.Type))
		return
	}

	runCtx := ctx
	if reg.Timeout > 0 {
		var cancelRun context.CancelFunc
		runCtx, cancelRun = context.WithTimeout(ctx, reg.Timeout)
		defer cancelRun()
	}

	started := time.Now()
	err := reg.Handler.Run(runCtx, job.Params)
	elapsed := time.Since(started).Round(time.Millisecond)

	switch {
	case err == nil:
		if updateErr := w.store.UpdateStatus(persistCtx, job.ID, queue.StatusCompleted, ""); updateErr != nil {
			logger.Error("failed to persist completion", logging.Error(updateErr))
			return
		}
		w.completedRun++
		logger.Info("job completed",
			logging.String(logging.FieldEventType, "job_completed"),
			logging.Duration("elapsed", elapsed),
		)
		if notifyErr := w.notifier.NotifyJobCompleted(persistCtx, job); notifyErr != nil {
			logger.Debug("completion notification failed", logging.Error(notifyErr))
		}

	case ctx.Err() != nil:
		// Shutdown interrupted the handler; the job remains running on disk.
		logger.Warn("shutdown interrupted job; left running for operator review",
			logging.String(logging.FieldEventType, "job_interrupted"),
			logging.String(logging.FieldErrorHint, "remove with `stylus queue remove` and re-add after restart"),
		)

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded):
		w.failJob(persistCtx, logger, job, fmt.Sprintf("timed out after %s", reg.Timeout))

	default:
		w.failJob(persistCtx, logger, job, err.Error())
	}
}

func (w *Worker) failJob(ctx context.Context, logger *slog.Logger, job *queue.Job, reason string) {
	if err := w.store.UpdateStatus(ctx, job.ID, queue.StatusFailed, reason); err != nil {
		logger.Error("failed to persist failure", logging.Error(err))
		return
	}
	w.failedRun++
	logger.Error("job failed",
		logging.String(logging.FieldEventType, "job_failed"),
		logging.String("reason", reason),
	)
	if notifyErr := w.notifier.NotifyJobFailed(ctx, job, reason); notifyErr != nil {
		logger.Debug("failure notification failed", logging.Error(notifyErr))
	}
}

func (w *Worker) reportDrained(ctx context.Context) {
	if w.completedRun == 0 && w.failedRun == 0 {
		return
	}
	completed, failed := w.completedRun, w.failedRun
	w.completedRun = 0
	w.failedRun = 0

	w.logger.Info("queue drained",
		logging.String(logging.FieldEventType, "queue_drained"),
		logging.Int("completed", completed),
		logging.Int("failed", failed),
	)
	if err := w.notifier.NotifyQueueDrained(context.WithoutCancel(ctx), completed, failed); err != nil {
		w.logger.Debug("drained notification failed", logging.Error(err))
	}
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

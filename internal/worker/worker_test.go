package worker_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"stylus/internal/handler"
	"stylus/internal/logging"
	"stylus/internal/notifications"
	"stylus/internal/queue"
	"stylus/internal/testsupport"
	"stylus/internal/worker"
)

type recordingNotifier struct {
	mu        sync.Mutex
	completed []string
	failed    []string
	drained   int
}

func (r *recordingNotifier) NotifyJobCompleted(_ context.Context, job *queue.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, job.ID)
	return nil
}

func (r *recordingNotifier) NotifyJobFailed(_ context.Context, job *queue.Job, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, job.ID)
	return nil
}

func (r *recordingNotifier) NotifyQueueDrained(_ context.Context, _, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drained++
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

var _ notifications.Service = (*recordingNotifier)(nil)

func waitForStatus(t *testing.T, store *queue.Store, id string, want queue.Status) *queue.Job {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		jobs, err := store.List(context.Background())
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		for _, job := range jobs {
			if job.ID == id && job.Status == want {
				return job
			}
		}
		if want == queue.StatusCompleted {
			history, err := store.Completed(context.Background(), 0)
			if err != nil {
				t.Fatalf("Completed failed: %v", err)
			}
			for _, job := range history {
				if job.ID == id {
					return job
				}
			}
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", id, want)
	return nil
}

func TestWorkerCompletesJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &recordingNotifier{}

	registry := handler.NewRegistry()
	registry.Register(queue.TypeMoveFiles, handler.Func(func(context.Context, map[string]string) error {
		return nil
	}), time.Minute)

	id := testsupport.MustAdd(t, store, queue.TypeMoveFiles, nil, 5)

	w := worker.New(cfg, store, registry, notifier, logging.NewNop())
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	waitForStatus(t, store, id, queue.StatusCompleted)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.completed) != 1 || notifier.completed[0] != id {
		t.Fatalf("expected completion notification for %s, got %v", id, notifier.completed)
	}
}

func TestWorkerFailsJobOnHandlerError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &recordingNotifier{}

	registry := handler.NewRegistry()
	registry.Register(queue.TypeVerifyAudio, handler.Func(func(context.Context, map[string]string) error {
		return errors.New("flac verification failed on 3 files")
	}), time.Minute)

	id := testsupport.MustAdd(t, store, queue.TypeVerifyAudio, nil, 5)

	w := worker.New(cfg, store, registry, notifier, logging.NewNop())
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	job := waitForStatus(t, store, id, queue.StatusFailed)
	if !strings.Contains(job.Error, "flac verification failed") {
		t.Fatalf("expected handler error recorded, got %q", job.Error)
	}
	if job.Attempts != 0 {
		t.Fatalf("worker must not auto-retry; attempts = %d", job.Attempts)
	}
}

func TestWorkerFailsUnknownJobType(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	id := testsupport.MustAdd(t, store, queue.TypeCatalogResearch, nil, 5)

	w := worker.New(cfg, store, handler.NewRegistry(), &recordingNotifier{}, logging.NewNop())
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	job := waitForStatus(t, store, id, queue.StatusFailed)
	if !strings.Contains(job.Error, "unknown job type") {
		t.Fatalf("expected unknown type error, got %q", job.Error)
	}
}

func TestWorkerEnforcesTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	registry := handler.NewRegistry()
	registry.Register(queue.TypeQualityAnalysis, handler.Func(func(ctx context.Context, _ map[string]string) error {
		<-ctx.Done()
		return ctx.Err()
	}), 50*time.Millisecond)

	id := testsupport.MustAdd(t, store, queue.TypeQualityAnalysis, nil, 5)

	w := worker.New(cfg, store, registry, &recordingNotifier{}, logging.NewNop())
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	job := waitForStatus(t, store, id, queue.StatusFailed)
	if !strings.Contains(job.Error, "timed out after") {
		t.Fatalf("expected timeout error, got %q", job.Error)
	}
}

func TestWorkerProcessesInPriorityOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	var mu sync.Mutex
	var order []queue.JobType
	record := func(jobType queue.JobType) handler.Func {
		return func(context.Context, map[string]string) error {
			mu.Lock()
			order = append(order, jobType)
			mu.Unlock()
			return nil
		}
	}

	registry := handler.NewRegistry()
	registry.Register(queue.TypeBeetsImport, record(queue.TypeBeetsImport), time.Minute)
	registry.Register(queue.TypeWriteMetadata, record(queue.TypeWriteMetadata), time.Minute)
	registry.Register(queue.TypeRefreshNavidrome, record(queue.TypeRefreshNavidrome), time.Minute)

	testsupport.MustAdd(t, store, queue.TypeRefreshNavidrome, nil, 9)
	testsupport.MustAdd(t, store, queue.TypeBeetsImport, nil, 1)
	testsupport.MustAdd(t, store, queue.TypeWriteMetadata, nil, 3)

	notifier := &recordingNotifier{}
	w := worker.New(cfg, store, registry, notifier, logging.NewNop())
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		summary, err := store.Status(context.Background())
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		if summary.Total == 0 {
			break
		}
		time.Sleep(25 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []queue.JobType{queue.TypeBeetsImport, queue.TypeWriteMetadata, queue.TypeRefreshNavidrome}
	if len(order) != len(want) {
		t.Fatalf("processed %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("processed %v, want %v", order, want)
		}
	}
}

func TestWorkerNotifiesQueueDrained(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &recordingNotifier{}

	registry := handler.NewRegistry()
	registry.Register(queue.TypeFetchLyrics, handler.Func(func(context.Context, map[string]string) error {
		return nil
	}), time.Minute)

	id := testsupport.MustAdd(t, store, queue.TypeFetchLyrics, nil, 5)

	w := worker.New(cfg, store, registry, notifier, logging.NewNop())
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	waitForStatus(t, store, id, queue.StatusCompleted)

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		notifier.mu.Lock()
		drained := notifier.drained
		notifier.mu.Unlock()
		if drained > 0 {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal("expected queue drained notification")
}

func TestSeededRunAdvancesQueue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.Seed(ctx, queue.DefaultSeed()); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	summary, err := store.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if summary.Pending != 9 || summary.Running != 0 || summary.Failed != 0 || summary.Completed != 0 {
		t.Fatalf("unexpected summary after seed: %+v", summary)
	}

	done := make(chan struct{})
	registry := handler.NewRegistry()
	registry.Register(queue.TypeBeetsImport, handler.Func(func(context.Context, map[string]string) error {
		close(done)
		return nil
	}), time.Minute)

	w := worker.New(cfg, store, registry, &recordingNotifier{}, logging.NewNop())
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("import handler never ran")
	}
	w.Stop()

	summary, err = store.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if summary.Completed != 1 {
		t.Fatalf("expected 1 completed, got %+v", summary)
	}
	// The second seeded type has no handler here; it may already have failed
	// by the time the worker stops, so pending can be 8 or lower but the
	// first job must have left the active list.
	if summary.Total != 8 {
		t.Fatalf("expected 8 active jobs, got %+v", summary)
	}
}

func TestStopLeavesInterruptedJobRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	started := make(chan struct{})
	registry := handler.NewRegistry()
	registry.Register(queue.TypeFetchCDScans, handler.Func(func(ctx context.Context, _ map[string]string) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}), time.Minute)

	id := testsupport.MustAdd(t, store, queue.TypeFetchCDScans, nil, 5)

	notifier := &recordingNotifier{}
	w := worker.New(cfg, store, registry, notifier, logging.NewNop())
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case <-started:
	case <-time.After(10 * time.Second):
		t.Fatal("handler never started")
	}
	w.Stop()

	jobs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != id {
		t.Fatalf("expected interrupted job to stay on the queue, got %v", jobs)
	}
	if jobs[0].Status != queue.StatusRunning {
		t.Fatalf("interrupted job status = %s, want %s", jobs[0].Status, queue.StatusRunning)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.failed) != 0 {
		t.Fatalf("interrupted job must not be reported failed, got %v", notifier.failed)
	}
}

func TestWorkerStartTwiceFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	w := worker.New(cfg, store, handler.NewRegistry(), &recordingNotifier{}, logging.NewNop())
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := w.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
}

func TestSecondWorkerOnSameQueueFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	first := worker.New(cfg, store, handler.NewRegistry(), &recordingNotifier{}, logging.NewNop())
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer first.Stop()

	second := worker.New(cfg, store, handler.NewRegistry(), &recordingNotifier{}, logging.NewNop())
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second worker on the same queue file to fail")
	}
}

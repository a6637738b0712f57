package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stylus/internal/config"
	"stylus/internal/queue"
)

const userAgent = "stylus/0.1.0"

// Service defines the notification surface exposed to the worker.
type Service interface {
	NotifyJobCompleted(ctx context.Context, job *queue.Job) error
	NotifyJobFailed(ctx context.Context, job *queue.Job, reason string) error
	NotifyQueueDrained(ctx context.Context, completed, failed int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:        topic,
		client:          &http.Client{Timeout: timeout},
		notifyCompleted: cfg.Notifications.Completed,
		notifyFailed:    cfg.Notifications.Failed,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint        string
	client          *http.Client
	notifyCompleted bool
	notifyFailed    bool
}

func (n *ntfyService) NotifyJobCompleted(ctx context.Context, job *queue.Job) error {
	if !n.notifyCompleted || job == nil {
		return nil
	}
	data := payload{
		title:   "Stylus - Job Complete",
		message: fmt.Sprintf("Completed: %s", job.Type),
		tags:    []string{"stylus", "job", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, job *queue.Job, reason string) error {
	if !n.notifyFailed || job == nil {
		return nil
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	data := payload{
		title:    "Stylus - Job Failed",
		message:  fmt.Sprintf("Failed: %s\n%s", job.Type, reason),
		tags:     []string{"stylus", "job", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueDrained(ctx context.Context, completed, failed int) error {
	var message string
	if failed == 0 {
		message = fmt.Sprintf("Queue drained: %d jobs completed", completed)
	} else {
		message = fmt.Sprintf("Queue drained: %d completed, %d failed", completed, failed)
	}
	data := payload{
		title:   "Stylus - Queue Drained",
		message: message,
		tags:    []string{"stylus", "queue", "drained"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Stylus - Test",
		message:  "Notification system test",
		tags:     []string{"stylus", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("ntfy returned %d", resp.StatusCode)
	}
	return nil
}

type noopService struct{}

func (noopService) NotifyJobCompleted(context.Context, *queue.Job) error { return nil }

func (noopService) NotifyJobFailed(context.Context, *queue.Job, string) error { return nil }

func (noopService) NotifyQueueDrained(context.Context, int, int) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }

package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vodforge/internal/config"
)

const userAgent = "Vodforge/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyBundleDetected(ctx context.Context, bundleName, contentType string) error
	NotifyTranscodeCompleted(ctx context.Context, bundleName string) error
	NotifyBundlePublished(ctx context.Context, title string) error
	NotifyBundleFailed(ctx context.Context, bundleName, reason string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
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
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		ingestEvents: cfg.Notifications.Ingest,
		publishEvent: cfg.Notifications.Publish,
		errorEvents:  cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	ingestEvents bool
	publishEvent bool
	errorEvents  bool
}

func (n *ntfyService) NotifyBundleDetected(ctx context.Context, bundleName, contentType string) error {
	if !n.ingestEvents {
		return nil
	}
	bundleName = strings.TrimSpace(bundleName)
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = "unknown"
	}
	data := payload{
		title:   "Vodforge - Bundle Detected",
		message: fmt.Sprintf("Ingesting %s (%s)", bundleName, contentType),
		tags:    []string{"vodforge", "ingest", "detected"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTranscodeCompleted(ctx context.Context, bundleName string) error {
	if !n.ingestEvents {
		return nil
	}
	bundleName = strings.TrimSpace(bundleName)
	data := payload{
		title:   "Vodforge - Transcoded",
		message: fmt.Sprintf("Transcode complete: %s", bundleName),
		tags:    []string{"vodforge", "transcode", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBundlePublished(ctx context.Context, title string) error {
	if !n.publishEvent {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:    "Vodforge - Published",
		message:  fmt.Sprintf("Ready to stream: %s", title),
		tags:     []string{"vodforge", "publish", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBundleFailed(ctx context.Context, bundleName, reason string) error {
	if !n.errorEvents {
		return nil
	}
	bundleName = strings.TrimSpace(bundleName)
	message := fmt.Sprintf("Bundle failed: %s", bundleName)
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s\n%s", message, reason)
	}
	data := payload{
		title:    "Vodforge - Failed",
		message:  message,
		tags:     []string{"vodforge", "error", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errorEvents {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Vodforge - Error",
		message:  builder.String(),
		tags:     []string{"vodforge", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Vodforge - Test",
		message:  "Notification system test",
		tags:     []string{"vodforge", "test"},
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
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyBundleDetected(context.Context, string, string) error { return nil }

func (noopService) NotifyTranscodeCompleted(context.Context, string) error { return nil }

func (noopService) NotifyBundlePublished(context.Context, string) error { return nil }

func (noopService) NotifyBundleFailed(context.Context, string, string) error { return nil }

func (noopService) NotifyError(context.Context, error, string) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }

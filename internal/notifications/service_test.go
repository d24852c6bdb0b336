package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"vodforge/internal/notifications"
	"vodforge/internal/testsupport"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, sink *[]captured) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNoopWithoutTopic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = ""

	service := notifications.NewService(cfg)
	if err := service.NotifyBundlePublished(context.Background(), "Feature"); err != nil {
		t.Fatalf("noop notify: %v", err)
	}
}

func TestPublishNotificationHeaders(t *testing.T) {
	var sink []captured
	server := newCaptureServer(t, &sink)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL

	service := notifications.NewService(cfg)
	if err := service.NotifyBundlePublished(context.Background(), "Feature"); err != nil {
		t.Fatalf("NotifyBundlePublished: %v", err)
	}

	if len(sink) != 1 {
		t.Fatalf("expected one request, got %d", len(sink))
	}
	got := sink[0]
	if got.title != "Vodforge - Published" {
		t.Fatalf("title %q", got.title)
	}
	if got.priority != "high" {
		t.Fatalf("priority %q", got.priority)
	}
	if got.body != "Ready to stream: Feature" {
		t.Fatalf("body %q", got.body)
	}
}

func TestDisabledCategoriesAreSilent(t *testing.T) {
	var sink []captured
	server := newCaptureServer(t, &sink)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Ingest = false
	cfg.Notifications.Errors = false

	service := notifications.NewService(cfg)
	if err := service.NotifyBundleDetected(context.Background(), "movie-1", "movie"); err != nil {
		t.Fatalf("NotifyBundleDetected: %v", err)
	}
	if err := service.NotifyBundleFailed(context.Background(), "movie-1", "boom"); err != nil {
		t.Fatalf("NotifyBundleFailed: %v", err)
	}
	if len(sink) != 0 {
		t.Fatalf("disabled categories still sent %d requests", len(sink))
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic over quota", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL

	service := notifications.NewService(cfg)
	if err := service.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error from non-2xx response")
	}
}

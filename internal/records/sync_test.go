package records_test

import (
	"context"
	"testing"

	"vodforge/internal/records"
	"vodforge/internal/testsupport"
)

func TestProgressIsClampedAndMonotonic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sync := records.NewSynchronizer(store)
	ctx := context.Background()

	testsupport.NewRecord(t, store, "feature-1", movieManifest())

	if err := sync.UpdateProgress(ctx, "feature-1", records.RootPath, 60); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if err := sync.UpdateProgress(ctx, "feature-1", records.RootPath, 40); err != nil {
		t.Fatalf("UpdateProgress backwards: %v", err)
	}
	if err := sync.UpdateProgress(ctx, "feature-1", records.RootPath, 250); err != nil {
		t.Fatalf("UpdateProgress overflow: %v", err)
	}

	record, err := store.GetByBundle(ctx, "feature-1")
	if err != nil {
		t.Fatalf("GetByBundle: %v", err)
	}
	if record.Progress != 100 {
		t.Fatalf("progress %d, want 100 (clamped, never decreased)", record.Progress)
	}
}

func TestEpisodeUpdatesDriveAggregate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sync := records.NewSynchronizer(store)
	ctx := context.Background()

	testsupport.NewRecord(t, store, "series-1", showManifest())

	if err := sync.UpdateStatus(ctx, "series-1", records.EpisodePath(1, 1), records.StatusCompleted, ""); err != nil {
		t.Fatalf("complete episode: %v", err)
	}
	record, err := store.GetByBundle(ctx, "series-1")
	if err != nil {
		t.Fatalf("GetByBundle: %v", err)
	}
	if record.Status != records.StatusProcessing {
		t.Fatalf("aggregate after partial completion = %s, want processing", record.Status)
	}
	if record.Progress != 50 {
		t.Fatalf("aggregate progress %d, want 50", record.Progress)
	}

	if err := sync.UpdateStatus(ctx, "series-1", records.EpisodePath(1, 2), records.StatusFailed, "encoder exit 1"); err != nil {
		t.Fatalf("fail episode: %v", err)
	}
	record, err = store.GetByBundle(ctx, "series-1")
	if err != nil {
		t.Fatalf("GetByBundle: %v", err)
	}
	if record.Status != records.StatusFailed {
		t.Fatalf("aggregate after episode failure = %s, want failed", record.Status)
	}
	episode, err := record.Episode(records.EpisodePath(1, 2))
	if err != nil {
		t.Fatalf("Episode: %v", err)
	}
	if episode.ErrorDetails != "encoder exit 1" {
		t.Fatalf("episode diagnostic %q", episode.ErrorDetails)
	}

	// The healthy episode is untouched by its sibling's failure.
	healthy, err := record.Episode(records.EpisodePath(1, 1))
	if err != nil {
		t.Fatalf("Episode: %v", err)
	}
	if healthy.Status != records.StatusCompleted || healthy.Progress != 100 {
		t.Fatalf("sibling episode disturbed: %+v", healthy)
	}
}

func TestAllEpisodesCompletedCompletesRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sync := records.NewSynchronizer(store)
	ctx := context.Background()

	testsupport.NewRecord(t, store, "series-1", showManifest())

	for episode := 1; episode <= 2; episode++ {
		if err := sync.UpdateStatus(ctx, "series-1", records.EpisodePath(1, episode), records.StatusCompleted, ""); err != nil {
			t.Fatalf("complete episode %d: %v", episode, err)
		}
	}

	record, err := store.GetByBundle(ctx, "series-1")
	if err != nil {
		t.Fatalf("GetByBundle: %v", err)
	}
	if record.Status != records.StatusCompleted || record.Progress != 100 {
		t.Fatalf("aggregate = %s/%d, want completed/100", record.Status, record.Progress)
	}
}

func TestAttachArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sync := records.NewSynchronizer(store)
	ctx := context.Background()

	testsupport.NewRecord(t, store, "series-1", showManifest())

	urls := records.ArtifactURLs{
		HLS:       "http://media.test/completed/series-1/s1e1/video/master.m3u8",
		Thumbnail: "http://media.test/completed/series-1/s1e1/thumbnail.jpg",
	}
	if err := sync.AttachArtifacts(ctx, "series-1", records.EpisodePath(1, 1), urls); err != nil {
		t.Fatalf("AttachArtifacts: %v", err)
	}
	if err := sync.SetDuration(ctx, "series-1", records.EpisodePath(1, 1), 123.4); err != nil {
		t.Fatalf("SetDuration: %v", err)
	}

	record, err := store.GetByBundle(ctx, "series-1")
	if err != nil {
		t.Fatalf("GetByBundle: %v", err)
	}
	episode, err := record.Episode(records.EpisodePath(1, 1))
	if err != nil {
		t.Fatalf("Episode: %v", err)
	}
	if episode.HLSURL != urls.HLS || episode.ThumbnailURL != urls.Thumbnail {
		t.Fatalf("episode artifacts not attached: %+v", episode)
	}
	if episode.Duration != 123.4 {
		t.Fatalf("episode duration %v", episode.Duration)
	}
}

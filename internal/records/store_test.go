package records_test

import (
	"context"
	"testing"

	"vodforge/internal/manifest"
	"vodforge/internal/records"
	"vodforge/internal/testsupport"
)

func movieManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Title:       "Feature",
		Category:    "drama",
		Description: "desc",
		Type:        manifest.TypeMovie,
		RentalPrice: 4.99,
	}
}

func showManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Title:       "Series",
		Category:    "documentary",
		Description: "desc",
		Type:        manifest.TypeShow,
		Seasons: []manifest.Season{
			{
				SeasonNumber: 1,
				Title:        "Season One",
				Episodes: []manifest.Episode{
					{EpisodeNumber: 1, Title: "Pilot"},
					{EpisodeNumber: 2, Title: "Second"},
				},
			},
		},
	}
}

func TestCreateAndFetch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	record, err := store.Create(ctx, "feature-1", movieManifest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if record.Status != records.StatusProcessing {
		t.Fatalf("new record status %s, want processing", record.Status)
	}
	if record.Progress != 0 {
		t.Fatalf("new record progress %d, want 0", record.Progress)
	}

	fetched, err := store.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil || fetched.BundleName != "feature-1" {
		t.Fatalf("unexpected fetch result: %+v", fetched)
	}
	if fetched.RentalPrice != 4.99 {
		t.Fatalf("rental price %v, want 4.99", fetched.RentalPrice)
	}
}

func TestCreateShowMirrorsEpisodes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	record, err := store.Create(context.Background(), "series-1", showManifest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(record.Seasons) != 1 || len(record.Seasons[0].Episodes) != 2 {
		t.Fatalf("season tree not mirrored: %+v", record.Seasons)
	}
	for _, episode := range record.Seasons[0].Episodes {
		if episode.Status != records.StatusPending || episode.Progress != 0 {
			t.Fatalf("episode not initialized pending: %+v", episode)
		}
	}
}

func TestCreateReplacesExistingBundle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first, err := store.Create(ctx, "feature-1", movieManifest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sync := records.NewSynchronizer(store)
	if err := sync.UpdateStatus(ctx, "feature-1", records.RootPath, records.StatusFailed, "boom"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	second, err := store.Create(ctx, "feature-1", movieManifest())
	if err != nil {
		t.Fatalf("re-Create: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected upsert to keep id %d, got %d", first.ID, second.ID)
	}
	if second.Status != records.StatusProcessing || second.ErrorDetails != "" {
		t.Fatalf("expected reset record, got %+v", second)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one record after re-ingest, got %d", len(all))
	}
}

func TestListFiltersByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.Create(ctx, "a", movieManifest()); err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if _, err := store.Create(ctx, "b", movieManifest()); err != nil {
		t.Fatalf("Create b: %v", err)
	}
	sync := records.NewSynchronizer(store)
	if err := sync.UpdateStatus(ctx, "b", records.RootPath, records.StatusCompleted, ""); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	completed, err := store.List(ctx, records.StatusCompleted)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(completed) != 1 || completed[0].BundleName != "b" {
		t.Fatalf("unexpected filter result: %+v", completed)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[records.StatusCompleted] != 1 || stats[records.StatusProcessing] != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestMarkStaleProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.Create(ctx, "stuck", movieManifest()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := store.MarkStaleProcessing(ctx)
	if err != nil {
		t.Fatalf("MarkStaleProcessing: %v", err)
	}
	if n != 1 {
		t.Fatalf("marked %d records, want 1", n)
	}
	record, err := store.GetByBundle(ctx, "stuck")
	if err != nil {
		t.Fatalf("GetByBundle: %v", err)
	}
	if record.Status != records.StatusFailed || record.ErrorDetails == "" {
		t.Fatalf("expected failed record with diagnostic, got %+v", record)
	}
}

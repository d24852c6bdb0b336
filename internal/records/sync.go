package records

import (
	"context"
	"fmt"
	"sync"
)

// Synchronizer serializes record mutations coming from concurrent pipeline
// workers. Progress never moves backwards; episode updates always recompute
// the show's aggregate status and progress before persisting.
type Synchronizer struct {
	mu    sync.Mutex
	store *Store
}

// NewSynchronizer wraps a store with update serialization.
func NewSynchronizer(store *Store) *Synchronizer {
	return &Synchronizer{store: store}
}

// Store exposes the underlying store for read paths.
func (s *Synchronizer) Store() *Store {
	return s.store
}

// UpdateProgress sets the progress of the addressed entity. Values are
// clamped to [0,100] and decreases are ignored so late worker reports cannot
// roll a record backwards.
func (s *Synchronizer) UpdateProgress(ctx context.Context, bundleName string, path Path, pct int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.load(ctx, bundleName)
	if err != nil {
		return err
	}
	pct = ClampProgress(pct)

	if path.IsRoot() {
		if pct <= record.Progress {
			return nil
		}
		record.Progress = pct
		return s.store.save(ctx, record)
	}

	episode, err := record.Episode(path)
	if err != nil {
		return err
	}
	if pct <= episode.Progress {
		return nil
	}
	episode.Progress = pct
	s.recomputeAggregate(record)
	return s.store.save(ctx, record)
}

// UpdateStatus sets the status of the addressed entity, with an optional
// diagnostic for failures. A status change on an episode path updates the
// episode and derives the record-level status from all episodes.
func (s *Synchronizer) UpdateStatus(ctx context.Context, bundleName string, path Path, status Status, errorDetails string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.load(ctx, bundleName)
	if err != nil {
		return err
	}

	if path.IsRoot() {
		record.Status = status
		record.ErrorDetails = errorDetails
		if status == StatusCompleted {
			record.Progress = 100
		}
		return s.store.save(ctx, record)
	}

	episode, err := record.Episode(path)
	if err != nil {
		return err
	}
	episode.Status = status
	episode.ErrorDetails = errorDetails
	if status == StatusCompleted {
		episode.Progress = 100
	}
	s.recomputeAggregate(record)
	return s.store.save(ctx, record)
}

// AttachArtifacts records the published artifact URLs for the addressed entity.
func (s *Synchronizer) AttachArtifacts(ctx context.Context, bundleName string, path Path, urls ArtifactURLs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.load(ctx, bundleName)
	if err != nil {
		return err
	}

	if path.IsRoot() {
		if urls.HLS != "" {
			record.HLSURL = urls.HLS
		}
		if urls.Thumbnail != "" {
			record.ThumbnailURL = urls.Thumbnail
		}
		if urls.Trailer != "" {
			record.TrailerURL = urls.Trailer
		}
		return s.store.save(ctx, record)
	}

	episode, err := record.Episode(path)
	if err != nil {
		return err
	}
	if urls.HLS != "" {
		episode.HLSURL = urls.HLS
	}
	if urls.Thumbnail != "" {
		episode.ThumbnailURL = urls.Thumbnail
	}
	return s.store.save(ctx, record)
}

// SetDuration records the probed duration for the addressed episode.
func (s *Synchronizer) SetDuration(ctx context.Context, bundleName string, path Path, seconds float64) error {
	if path.IsRoot() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.load(ctx, bundleName)
	if err != nil {
		return err
	}
	episode, err := record.Episode(path)
	if err != nil {
		return err
	}
	episode.Duration = seconds
	return s.store.save(ctx, record)
}

func (s *Synchronizer) load(ctx context.Context, bundleName string) (*Record, error) {
	record, err := s.store.GetByBundle(ctx, bundleName)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("no record for bundle %s", bundleName)
	}
	return record, nil
}

func (s *Synchronizer) recomputeAggregate(record *Record) {
	record.Status = AggregateStatus(record.Seasons)
	progress := AggregateProgress(record.Seasons)
	if progress > record.Progress {
		record.Progress = progress
	}
	if record.Status == StatusCompleted {
		record.Progress = 100
	}
}

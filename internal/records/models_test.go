package records

import "testing"

func seasonsWith(statuses ...Status) []SeasonRecord {
	season := SeasonRecord{SeasonNumber: 1, Title: "Season"}
	for i, status := range statuses {
		season.Episodes = append(season.Episodes, EpisodeRecord{
			EpisodeNumber: i + 1,
			Title:         "Episode",
			Status:        status,
		})
	}
	return []SeasonRecord{season}
}

func TestAggregateStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"failure dominates", []Status{StatusCompleted, StatusCompleted, StatusFailed}, StatusFailed},
		{"all completed", []Status{StatusCompleted, StatusCompleted, StatusCompleted}, StatusCompleted},
		{"partial completion", []Status{StatusCompleted, StatusPending, StatusPending}, StatusProcessing},
		{"active episode", []Status{StatusProcessing, StatusPending}, StatusProcessing},
		{"all pending", []Status{StatusPending, StatusPending}, StatusPending},
		{"no episodes", nil, StatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AggregateStatus(seasonsWith(tc.statuses...))
			if got != tc.want {
				t.Fatalf("AggregateStatus = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestAggregateProgress(t *testing.T) {
	seasons := seasonsWith(StatusCompleted, StatusProcessing, StatusPending)
	seasons[0].Episodes[0].Progress = 100
	seasons[0].Episodes[1].Progress = 50
	if got := AggregateProgress(seasons); got != 50 {
		t.Fatalf("AggregateProgress = %d, want 50", got)
	}
	if got := AggregateProgress(nil); got != 0 {
		t.Fatalf("AggregateProgress(nil) = %d, want 0", got)
	}
}

func TestClampProgress(t *testing.T) {
	if got := ClampProgress(-5); got != 0 {
		t.Fatalf("ClampProgress(-5) = %d", got)
	}
	if got := ClampProgress(150); got != 100 {
		t.Fatalf("ClampProgress(150) = %d", got)
	}
	if got := ClampProgress(42); got != 42 {
		t.Fatalf("ClampProgress(42) = %d", got)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := ParseStatus("  Completed "); !ok || status != StatusCompleted {
		t.Fatalf("ParseStatus = %s, %v", status, ok)
	}
	if _, ok := ParseStatus("unknown"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
}

func TestEpisodeLookup(t *testing.T) {
	record := &Record{
		BundleName: "show-1",
		Seasons:    seasonsWith(StatusPending, StatusPending),
	}
	episode, err := record.Episode(EpisodePath(1, 2))
	if err != nil {
		t.Fatalf("Episode: %v", err)
	}
	if episode.EpisodeNumber != 2 {
		t.Fatalf("resolved episode %d, want 2", episode.EpisodeNumber)
	}
	if _, err := record.Episode(EpisodePath(3, 1)); err == nil {
		t.Fatal("expected missing episode error")
	}
	if _, err := record.Episode(RootPath); err == nil {
		t.Fatal("expected root path rejection")
	}
}

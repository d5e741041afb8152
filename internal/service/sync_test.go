package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aplika/jobboard/internal/domain"
	"github.com/aplika/jobboard/internal/hirebase"
)

var syncTestNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	pages   map[int]*hirebase.PageResponse
	limit   int
	err     error
	fetched []int
}

func (f *fakeFetcher) FetchPage(ctx context.Context, page int) (*hirebase.PageResponse, error) {
	f.fetched = append(f.fetched, page)
	if resp, ok := f.pages[page]; ok {
		return resp, nil
	}
	if f.err != nil {
		return nil, f.err
	}
	return &hirebase.PageResponse{}, nil
}

func (f *fakeFetcher) PageLimit() int { return f.limit }

type fakeStore struct {
	existing map[string]bool
	upserts  []string
	failIDs  map[string]bool
}

func (s *fakeStore) Upsert(ctx context.Context, job *domain.Job) (bool, error) {
	if s.failIDs[job.ExternalID] {
		return false, errors.New("store failure")
	}
	s.upserts = append(s.upserts, job.ExternalID)
	if s.existing == nil {
		s.existing = make(map[string]bool)
	}
	if s.existing[job.ExternalID] {
		return false, nil
	}
	s.existing[job.ExternalID] = true
	return true, nil
}

// rawPage builds a page of n records with ids prefix-0..prefix-n-1, all
// posted at the given time.
func rawPage(prefix string, n int, posted time.Time) []hirebase.RawJob {
	jobs := make([]hirebase.RawJob, 0, n)
	for i := 0; i < n; i++ {
		jobs = append(jobs, hirebase.RawJob{
			"_id":         fmt.Sprintf("%s-%d", prefix, i),
			"job_title":   "Engineer",
			"date_posted": posted.Format("2006-01-02T15:04:05"),
		})
	}
	return jobs
}

func newTestSync(fetcher *fakeFetcher, store *fakeStore) *SyncService {
	svc := NewSyncService(fetcher, store, nil, nil)
	svc.now = func() time.Time { return syncTestNow }
	return svc
}

func TestRunStopsOnEmptyPage(t *testing.T) {
	fresh := syncTestNow.Add(-time.Hour)
	fetcher := &fakeFetcher{
		limit: 3,
		pages: map[int]*hirebase.PageResponse{
			1: {Jobs: rawPage("p1", 3, fresh)},
			2: {Jobs: rawPage("p2", 2, fresh)},
			// page 3 is empty
		},
	}
	store := &fakeStore{}

	stats, err := newTestSync(fetcher, store).Run(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.StopReason != domain.StopEmptyPage {
		t.Errorf("StopReason = %s, want %s", stats.StopReason, domain.StopEmptyPage)
	}
	if stats.Pages != 2 {
		t.Errorf("Pages = %d, want 2", stats.Pages)
	}
	if stats.Created != 5 {
		t.Errorf("Created = %d, want 5", stats.Created)
	}
}

func TestRunStopsOnStaleLeadingRecord(t *testing.T) {
	stale := syncTestNow.Add(-9 * 24 * time.Hour)

	for _, firstRun := range []bool{false, true} {
		t.Run(fmt.Sprintf("first_run=%v", firstRun), func(t *testing.T) {
			fetcher := &fakeFetcher{
				limit: 3,
				pages: map[int]*hirebase.PageResponse{
					1: {Jobs: rawPage("p1", 3, stale), TotalPages: 10},
				},
			}
			store := &fakeStore{}

			stats, err := newTestSync(fetcher, store).Run(context.Background(), firstRun)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stats.StopReason != domain.StopStale {
				t.Errorf("StopReason = %s, want %s", stats.StopReason, domain.StopStale)
			}
			if len(store.upserts) != 0 {
				t.Errorf("stale page was ingested: %v", store.upserts)
			}
		})
	}
}

func TestRunProceedsOnUnparseableLeadingDate(t *testing.T) {
	fetcher := &fakeFetcher{
		limit: 2,
		pages: map[int]*hirebase.PageResponse{
			1: {
				Jobs: []hirebase.RawJob{
					{"_id": "a", "date_posted": "nonsense"},
					{"_id": "b", "date_posted": syncTestNow.Format("2006-01-02")},
				},
				TotalPages: 1,
			},
		},
	}
	store := &fakeStore{}

	stats, err := newTestSync(fetcher, store).Run(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.StopReason != domain.StopCompleted {
		t.Errorf("StopReason = %s, want %s", stats.StopReason, domain.StopCompleted)
	}
	if len(store.upserts) != 2 {
		t.Errorf("upserts = %v, want both records", store.upserts)
	}
}

func TestRunPlateauGate(t *testing.T) {
	fresh := syncTestNow.Add(-time.Hour)
	limit := 3

	buildFetcher := func() (*fakeFetcher, *fakeStore) {
		pages := make(map[int]*hirebase.PageResponse, 10)
		existing := make(map[string]bool)
		for p := 1; p <= 10; p++ {
			jobs := rawPage(fmt.Sprintf("p%d", p), limit, fresh)
			for _, j := range jobs {
				existing[j["_id"].(string)] = true
			}
			pages[p] = &hirebase.PageResponse{Jobs: jobs}
		}
		pages[1].TotalPages = 10
		return &fakeFetcher{limit: limit, pages: pages}, &fakeStore{existing: existing}
	}

	t.Run("halts after five full-update pages", func(t *testing.T) {
		fetcher, store := buildFetcher()
		stats, err := newTestSync(fetcher, store).Run(context.Background(), false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.StopReason != domain.StopPlateau {
			t.Errorf("StopReason = %s, want %s", stats.StopReason, domain.StopPlateau)
		}
		if stats.Pages != 5 {
			t.Errorf("Pages = %d, want 5", stats.Pages)
		}
		if stats.Updated != 15 || stats.Created != 0 {
			t.Errorf("Updated = %d, Created = %d, want 15/0", stats.Updated, stats.Created)
		}
	})

	t.Run("disabled on first run", func(t *testing.T) {
		fetcher, store := buildFetcher()
		stats, err := newTestSync(fetcher, store).Run(context.Background(), true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.StopReason != domain.StopCompleted {
			t.Errorf("StopReason = %s, want %s", stats.StopReason, domain.StopCompleted)
		}
		if stats.Pages != 10 {
			t.Errorf("Pages = %d, want 10", stats.Pages)
		}
	})

	t.Run("counter resets on a page with new records", func(t *testing.T) {
		fetcher, store := buildFetcher()
		// Page 4 carries one unseen record, breaking the streak.
		delete(store.existing, "p4-0")
		stats, err := newTestSync(fetcher, store).Run(context.Background(), false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.StopReason != domain.StopPlateau {
			t.Errorf("StopReason = %s, want %s", stats.StopReason, domain.StopPlateau)
		}
		if stats.Pages != 9 {
			t.Errorf("Pages = %d, want 9 (streak restarts after page 4)", stats.Pages)
		}
		if stats.Created != 1 {
			t.Errorf("Created = %d, want 1", stats.Created)
		}
	})
}

func TestRunTotalPagesFallback(t *testing.T) {
	fresh := syncTestNow.Add(-time.Hour)

	t.Run("declared total bounds the walk", func(t *testing.T) {
		fetcher := &fakeFetcher{
			limit: 2,
			pages: map[int]*hirebase.PageResponse{
				1: {Jobs: rawPage("p1", 2, fresh), TotalPages: 2},
				2: {Jobs: rawPage("p2", 2, fresh)},
				3: {Jobs: rawPage("p3", 2, fresh)},
			},
		}
		store := &fakeStore{}

		stats, err := newTestSync(fetcher, store).Run(context.Background(), false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.StopReason != domain.StopCompleted {
			t.Errorf("StopReason = %s, want %s", stats.StopReason, domain.StopCompleted)
		}
		if stats.Pages != 2 {
			t.Errorf("Pages = %d, want 2", stats.Pages)
		}
	})

	t.Run("missing total keeps advancing until an empty page", func(t *testing.T) {
		fetcher := &fakeFetcher{
			limit: 2,
			pages: map[int]*hirebase.PageResponse{
				1: {Jobs: rawPage("p1", 2, fresh)},
				2: {Jobs: rawPage("p2", 2, fresh)},
				3: {Jobs: rawPage("p3", 1, fresh)},
			},
		}
		store := &fakeStore{}

		stats, err := newTestSync(fetcher, store).Run(context.Background(), false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.StopReason != domain.StopEmptyPage {
			t.Errorf("StopReason = %s, want %s", stats.StopReason, domain.StopEmptyPage)
		}
		if stats.Pages != 3 {
			t.Errorf("Pages = %d, want 3", stats.Pages)
		}
	})
}

func TestRunStopsOnFetchFailure(t *testing.T) {
	fresh := syncTestNow.Add(-time.Hour)
	fetchErr := errors.New("upstream down")
	fetcher := &fakeFetcher{
		limit: 2,
		err:   fetchErr,
		pages: map[int]*hirebase.PageResponse{
			1: {Jobs: rawPage("p1", 2, fresh), TotalPages: 5},
		},
	}
	store := &fakeStore{}

	stats, err := newTestSync(fetcher, store).Run(context.Background(), false)
	if !errors.Is(err, fetchErr) {
		t.Fatalf("err = %v, want the fetch error", err)
	}
	if stats.StopReason != domain.StopFetchFailed {
		t.Errorf("StopReason = %s, want %s", stats.StopReason, domain.StopFetchFailed)
	}
	if stats.Pages != 1 {
		t.Errorf("Pages = %d, want 1 (page 1 still ingested)", stats.Pages)
	}
	if len(store.upserts) != 2 {
		t.Errorf("upserts = %v, want page 1 records", store.upserts)
	}
}

func TestRunSkipsBadRecords(t *testing.T) {
	fresh := syncTestNow.Add(-time.Hour)
	jobs := rawPage("p1", 3, fresh)
	delete(jobs[1], "_id") // normalization failure
	fetcher := &fakeFetcher{
		limit: 3,
		pages: map[int]*hirebase.PageResponse{
			1: {Jobs: jobs, TotalPages: 1},
		},
	}
	store := &fakeStore{failIDs: map[string]bool{"p1-2": true}} // store failure

	stats, err := newTestSync(fetcher, store).Run(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.StopReason != domain.StopCompleted {
		t.Errorf("StopReason = %s, want %s", stats.StopReason, domain.StopCompleted)
	}
	if stats.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", stats.Skipped)
	}
	if stats.Created != 1 || stats.Processed != 1 {
		t.Errorf("Created = %d, Processed = %d, want 1/1", stats.Created, stats.Processed)
	}
	if len(store.upserts) != 1 || store.upserts[0] != "p1-0" {
		t.Errorf("upserts = %v, want only the healthy sibling", store.upserts)
	}
}

func TestRunRejectsConcurrentRuns(t *testing.T) {
	fetcher := &fakeFetcher{limit: 2}
	svc := newTestSync(fetcher, &fakeStore{})
	svc.running.Store(true)

	if _, err := svc.Run(context.Background(), false); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("err = %v, want ErrRunInProgress", err)
	}
	if _, err := svc.StartAsync(false); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("StartAsync err = %v, want ErrRunInProgress", err)
	}
}

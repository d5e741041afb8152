package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/aplika/jobboard/internal/domain"
	"github.com/aplika/jobboard/internal/hirebase"
	"github.com/aplika/jobboard/internal/service"
)

// blockingFetcher parks the first fetch until release is closed, keeping the
// background run active for the duration of a test.
type blockingFetcher struct {
	release chan struct{}
}

func (f *blockingFetcher) FetchPage(ctx context.Context, page int) (*hirebase.PageResponse, error) {
	<-f.release
	return &hirebase.PageResponse{}, nil
}

func (f *blockingFetcher) PageLimit() int { return 10 }

type noopStore struct{}

func (noopStore) Upsert(ctx context.Context, job *domain.Job) (bool, error) { return false, nil }

func TestTriggerSync(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fetcher := &blockingFetcher{release: make(chan struct{})}
	defer close(fetcher.release)

	h := NewSyncHandler(service.NewSyncService(fetcher, noopStore{}, nil, nil))
	r := gin.New()
	r.POST("/sync", h.TriggerSync)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sync", nil))

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	var body struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.RunID == "" {
		t.Error("run_id is empty")
	}

	// The first run is still parked on the fetcher, so a second trigger must
	// be rejected.
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodPost, "/sync", nil))
	if w2.Code != http.StatusConflict {
		t.Errorf("second trigger status = %d, want 409", w2.Code)
	}
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aplika/jobboard/internal/domain"
	"github.com/aplika/jobboard/internal/service"
)

type stubLocationSource struct {
	lists []domain.LocationList
}

func (s *stubLocationSource) AllLocations(ctx context.Context) ([]domain.LocationList, error) {
	return s.lists, nil
}

func newFacetRouter(src *stubLocationSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewFacetHandler(service.NewFacetService(nil, src, time.Minute))
	r := gin.New()
	r.GET("/locations", h.ListLocations)
	r.GET("/locations/fields", h.ListLocationField)
	return r
}

func TestListLocations(t *testing.T) {
	router := newFacetRouter(&stubLocationSource{lists: []domain.LocationList{
		{{City: "Berlin", Country: "Germany"}, {City: "Austin", Country: "USA"}},
	}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/locations", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Locations []string `json:"locations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"Austin,USA", "Berlin,Germany"}
	if len(body.Locations) != 2 || body.Locations[0] != want[0] || body.Locations[1] != want[1] {
		t.Errorf("locations = %v, want %v", body.Locations, want)
	}
}

func TestListLocationsEmpty(t *testing.T) {
	router := newFacetRouter(&stubLocationSource{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/locations", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != `{"locations":[]}` {
		t.Errorf("body = %s, want empty array, not null", got)
	}
}

func TestListLocationField(t *testing.T) {
	router := newFacetRouter(&stubLocationSource{lists: []domain.LocationList{
		{{City: "Berlin", Country: "Germany"}, {City: "Munich", Country: "Germany"}},
	}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/locations/fields?field=country", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string][]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got, ok := body["countrys"]; !ok || len(got) != 1 || got[0] != "Germany" {
		t.Errorf("body = %v, want countrys: [Germany]", body)
	}
}

func TestListLocationFieldInvalid(t *testing.T) {
	router := newFacetRouter(&stubLocationSource{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/locations/fields?field=planet", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

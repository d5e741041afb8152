package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aplika/jobboard/internal/domain"
	"github.com/aplika/jobboard/internal/logger"
)

// ErrInvalidFacetField means the requested facet field is not one of
// city, country or region.
var ErrInvalidFacetField = errors.New("invalid facet field")

const (
	facetKeyLocations   = "jobboard:facet:locations"
	facetKeyFieldPrefix = "jobboard:facet:location:"

	// maxFacetResults caps every facet listing, applied after search
	// filtering.
	maxFacetResults = 100
)

var validFacetFields = map[string]bool{
	"city":    true,
	"country": true,
	"region":  true,
}

// LocationSource supplies the location lists the facets derive from.
// Satisfied by *repository.JobRepository.
type LocationSource interface {
	AllLocations(ctx context.Context) ([]domain.LocationList, error)
}

// FacetService serves derived unique-value sets over job locations, cached
// in Redis with an expiry. The cache is always reconstructible from the job
// records; its absence is a cost, never an error, so a nil or unreachable
// Redis client degrades to a rebuild per request.
type FacetService struct {
	rdb    *redis.Client
	source LocationSource
	ttl    time.Duration
}

// NewFacetService creates a FacetService. rdb may be nil to disable caching.
func NewFacetService(rdb *redis.Client, source LocationSource, ttl time.Duration) *FacetService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &FacetService{rdb: rdb, source: source, ttl: ttl}
}

// Locations returns the sorted unique "city,country,region" composites,
// optionally filtered by a case-insensitive substring, capped at 100.
func (s *FacetService) Locations(ctx context.Context, search string) ([]string, error) {
	values := s.cached(ctx, facetKeyLocations)
	if len(values) == 0 {
		var err error
		values, err = s.rebuild(ctx, facetKeyLocations, domain.Location.Composite)
		if err != nil {
			return nil, err
		}
	}
	return filterFacetValues(values, search), nil
}

// FieldValues returns the sorted unique values of a single location field
// (city, country or region), filtered and capped like Locations.
func (s *FacetService) FieldValues(ctx context.Context, field, search string) ([]string, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	if !validFacetFields[field] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFacetField, field)
	}

	key := facetKeyFieldPrefix + field
	values := s.cached(ctx, key)
	if len(values) == 0 {
		var err error
		values, err = s.rebuild(ctx, key, func(loc domain.Location) string {
			switch field {
			case "city":
				return loc.City
			case "country":
				return loc.Country
			default:
				return loc.Region
			}
		})
		if err != nil {
			return nil, err
		}
	}
	return filterFacetValues(values, search), nil
}

// cached reads a facet list from Redis. Any failure is treated as a miss.
func (s *FacetService) cached(ctx context.Context, key string) []string {
	if s.rdb == nil {
		return nil
	}
	values, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		logger.CtxWarn(ctx, "Facet cache read failed for %s: %v", key, err)
		return nil
	}
	return values
}

// rebuild scans every job's locations, extracts the requested value, and
// stores the deduplicated sorted set under key (best effort).
func (s *FacetService) rebuild(ctx context.Context, key string, extract func(domain.Location) string) ([]string, error) {
	lists, err := s.source.AllLocations(ctx)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	for _, list := range lists {
		for _, loc := range list {
			if v := strings.TrimSpace(extract(loc)); v != "" {
				set[v] = struct{}{}
			}
		}
	}

	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)

	s.store(ctx, key, values)
	return values, nil
}

// store writes a rebuilt facet list to Redis with the configured expiry.
// Failures are logged, never propagated.
func (s *FacetService) store(ctx context.Context, key string, values []string) {
	if s.rdb == nil || len(values) == 0 {
		return
	}

	members := make([]interface{}, len(values))
	for i, v := range values {
		members[i] = v
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.RPush(ctx, key, members...)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.CtxWarn(ctx, "Facet cache write failed for %s: %v", key, err)
	}
}

// filterFacetValues applies the case-insensitive substring filter, then the
// result cap.
func filterFacetValues(values []string, search string) []string {
	search = strings.ToLower(strings.TrimSpace(search))
	filtered := values
	if search != "" {
		filtered = make([]string, 0, len(values))
		for _, v := range values {
			if strings.Contains(strings.ToLower(v), search) {
				filtered = append(filtered, v)
			}
		}
	}
	if len(filtered) > maxFacetResults {
		filtered = filtered[:maxFacetResults]
	}
	return filtered
}

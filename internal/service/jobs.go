package service

import (
	"context"
	"strings"
	"time"

	"github.com/aplika/jobboard/internal/domain"
	"github.com/aplika/jobboard/internal/repository"
)

// JobListRequest is the read API's filter surface.
type JobListRequest struct {
	Query        string   // free text over title and company name
	Location     string   // "city,country,region" composite, any part omittable
	JobType      string   // substring, case-insensitive
	LocationType string   // substring, case-insensitive
	PostedWindow string   // last_24_hour | last_3_days | last_7_days
	SalaryMin    *float64 // jobs with minimum salary >= this
	SalaryMax    *float64 // jobs with maximum salary <= this
	Page         int
	Limit        int
}

// JobListResult is one page of jobs plus the data the handler needs to build
// the pagination envelope.
type JobListResult struct {
	Results      []domain.Job
	Count        int64
	Page         int
	Limit        int
	TotalPages   int
	NextPage     *int
	PreviousPage *int
}

// JobService serves the filtered, paginated job listing.
type JobService struct {
	repo *repository.JobRepository
	now  func() time.Time
}

// NewJobService creates a JobService.
func NewJobService(repo *repository.JobRepository) *JobService {
	return &JobService{repo: repo, now: time.Now}
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// List returns one page of jobs matching the request, newest-posted first.
func (s *JobService) List(ctx context.Context, req *JobListRequest) (*JobListResult, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	city, country, region := splitLocation(req.Location)

	filter := repository.JobFilter{
		Query:        strings.TrimSpace(req.Query),
		City:         city,
		Country:      country,
		Region:       region,
		JobType:      strings.TrimSpace(req.JobType),
		LocationType: strings.TrimSpace(req.LocationType),
		PostedSince:  postedSince(req.PostedWindow, s.now()),
		SalaryMin:    req.SalaryMin,
		SalaryMax:    req.SalaryMax,
		Page:         page,
		Limit:        limit,
	}

	jobs, count, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((count + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}

	result := &JobListResult{
		Results:    jobs,
		Count:      count,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
	if page < totalPages {
		next := page + 1
		result.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		result.PreviousPage = &prev
	}
	return result, nil
}

// Get retrieves one job by its external id.
func (s *JobService) Get(ctx context.Context, externalID string) (*domain.Job, error) {
	return s.repo.GetByID(ctx, externalID)
}

// splitLocation parses the "city,country,region" composite filter. Any part
// may be omitted ("" or missing).
func splitLocation(location string) (city, country, region string) {
	if strings.TrimSpace(location) == "" {
		return "", "", ""
	}
	parts := strings.Split(location, ",")
	if len(parts) > 0 {
		city = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		country = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		region = strings.TrimSpace(parts[2])
	}
	return city, country, region
}

// postedSince resolves a relative posting-date window to an absolute cutoff.
// Unknown windows mean no filter.
func postedSince(window string, now time.Time) *time.Time {
	var d time.Duration
	switch window {
	case "last_24_hour":
		d = 24 * time.Hour
	case "last_3_days":
		d = 3 * 24 * time.Hour
	case "last_7_days":
		d = 7 * 24 * time.Hour
	default:
		return nil
	}
	since := now.Add(-d)
	return &since
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/aplika/jobboard/internal/domain"
)

// JobRepository handles job record persistence.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Upsert creates or updates a job keyed by its external id, inside one
// transaction per record. Returns created=true on first sight. CreatedAt is
// preserved across updates; UpdatedAt is refreshed on every write. The same
// id appearing twice in a batch is last-write-wins.
func (r *JobRepository) Upsert(ctx context.Context, job *domain.Job) (bool, error) {
	if job.ExternalID == "" {
		return false, errors.New("job has no external id")
	}

	created := false
	now := time.Now().UTC()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Job
		err := tx.Select("external_id", "created_at").
			First(&existing, "external_id = ?", job.ExternalID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			job.CreatedAt = now
			job.UpdatedAt = now
			return tx.Create(job).Error
		case err != nil:
			return err
		}

		job.CreatedAt = existing.CreatedAt
		job.UpdatedAt = now
		return tx.Save(job).Error
	})
	if err != nil {
		return false, fmt.Errorf("upsert job %s: %w", job.ExternalID, err)
	}
	return created, nil
}

// GetByID retrieves a job by its external id.
func (r *JobRepository) GetByID(ctx context.Context, externalID string) (*domain.Job, error) {
	var job domain.Job
	if err := r.db.WithContext(ctx).First(&job, "external_id = ?", externalID).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// DeleteOlderThan bulk-deletes jobs first seen before cutoff. Age is measured
// from CreatedAt, not from the posting date.
func (r *JobRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&domain.Job{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete jobs older than %s: %w", cutoff, res.Error)
	}
	return res.RowsAffected, nil
}

// AllLocations returns the location list of every job that has one. Feeds
// the facet cache rebuild.
func (r *JobRepository) AllLocations(ctx context.Context) ([]domain.LocationList, error) {
	var lists []domain.LocationList
	if err := r.db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("locations IS NOT NULL").
		Pluck("locations", &lists).Error; err != nil {
		return nil, fmt.Errorf("load job locations: %w", err)
	}
	return lists, nil
}

// JobFilter describes the read API's filter surface. Zero values mean
// "no filter".
type JobFilter struct {
	Query        string
	City         string
	Country      string
	Region       string
	JobType      string
	LocationType string
	PostedSince  *time.Time
	SalaryMin    *float64
	SalaryMax    *float64
	Page         int
	Limit        int
}

// Search returns one page of jobs matching the filter, newest-posted first,
// along with the total match count.
func (r *JobRepository) Search(ctx context.Context, f JobFilter) ([]domain.Job, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Job{})

	if f.Query != "" {
		needle := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(company_name) LIKE ?", needle, needle)
	}
	for field, value := range map[string]string{
		"city":    f.City,
		"country": f.Country,
		"region":  f.Region,
	} {
		if value != "" {
			q = q.Where("locations LIKE ?", locationToken(field, value))
		}
	}
	if f.JobType != "" {
		q = q.Where("LOWER(job_type) LIKE ?", "%"+strings.ToLower(f.JobType)+"%")
	}
	if f.LocationType != "" {
		q = q.Where("LOWER(location_type) LIKE ?", "%"+strings.ToLower(f.LocationType)+"%")
	}
	if f.PostedSince != nil {
		q = q.Where("date_posted >= ?", *f.PostedSince)
	}
	if f.SalaryMin != nil {
		q = q.Where("salary_min >= ?", *f.SalaryMin)
	}
	if f.SalaryMax != nil {
		q = q.Where("salary_max <= ?", *f.SalaryMax)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}

	var jobs []domain.Job
	if err := q.
		Order("date_posted DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, 0, fmt.Errorf("search jobs: %w", err)
	}
	return jobs, count, nil
}

// locationToken builds a LIKE pattern matching one key/value pair inside the
// serialized locations column. Exact value match, driver-portable.
func locationToken(field, value string) string {
	encoded, _ := json.Marshal(value)
	return fmt.Sprintf(`%%"%s":%s%%`, field, string(encoded))
}

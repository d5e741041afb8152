package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Location is one entry of a job's location list. Every field is optional;
// upstream frequently sends partial objects (country only, city only, etc.).
type Location struct {
	City     string   `json:"city,omitempty"`
	Country  string   `json:"country,omitempty"`
	Region   string   `json:"region,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	Timezone string   `json:"timezone,omitempty"`
}

// Composite joins the non-empty city, country and region parts with commas.
// A location carrying only a country yields a single-token string with no
// stray separators.
func (l Location) Composite() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.City, l.Country, l.Region} {
		if v := strings.TrimSpace(p); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ",")
}

// LocationList stores a job's locations as a JSON column.
type LocationList []Location

// Value implements the driver.Valuer interface for database serialization.
func (l LocationList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (l *LocationList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan LocationList")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, l)
}

// JSONValue stores free-form upstream JSON (categories, yoe_range,
// company_data, salary_range) without freezing its shape into columns.
type JSONValue json.RawMessage

// Value implements the driver.Valuer interface for database serialization.
func (v JSONValue) Value() (driver.Value, error) {
	if len(v) == 0 {
		return nil, nil
	}
	return string(v), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (v *JSONValue) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	switch raw := value.(type) {
	case []byte:
		*v = append((*v)[:0], raw...)
		return nil
	case string:
		*v = JSONValue(raw)
		return nil
	default:
		return errors.New("failed to scan JSONValue")
	}
}

// MarshalJSON passes the stored JSON through untouched.
func (v JSONValue) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

// UnmarshalJSON stores the raw JSON as-is.
func (v *JSONValue) UnmarshalJSON(data []byte) error {
	*v = append((*v)[:0], data...)
	return nil
}

// Job is the canonical job posting entity. ExternalID is the stable upstream
// identifier and the sole upsert key: a posting seen twice is updated in
// place, never duplicated. Records are created on first sight, mutated on
// every later sighting, and deleted by the retention sweep once CreatedAt
// falls outside the retention window.
type Job struct {
	ExternalID          string       `gorm:"type:text;primaryKey;column:external_id" json:"external_id"`
	Title               string       `gorm:"type:text" json:"title"`
	Description         string       `gorm:"type:text" json:"description"`
	ApplicationLink     string       `gorm:"type:text;not null" json:"application_link"`
	JobType             string       `gorm:"type:text;index:idx_jobs_job_type" json:"job_type"`
	LocationType        string       `gorm:"type:text;index:idx_jobs_location_type" json:"location_type"`
	Categories          JSONValue    `gorm:"type:text" json:"job_categories,omitempty"`
	YoeRange            JSONValue    `gorm:"type:text" json:"yoe_range,omitempty"`
	DatePosted          time.Time    `gorm:"not null;index:idx_jobs_date_posted" json:"date_posted"`
	CompanyName         string       `gorm:"type:text" json:"company_name"`
	CompanyLink         string       `gorm:"type:text" json:"company_link"`
	CompanyLogo         string       `gorm:"type:text" json:"company_logo"`
	CompanyData         JSONValue    `gorm:"type:text" json:"company_data,omitempty"`
	CompanySlug         string       `gorm:"type:text" json:"company_slug"`
	JobSlug             string       `gorm:"type:text" json:"job_slug"`
	RequirementsSummary string       `gorm:"type:text" json:"requirements_summary"`
	Locations           LocationList `gorm:"type:text" json:"locations"`
	SalaryRange         JSONValue    `gorm:"type:text" json:"salary_range,omitempty"`
	SalaryMin           *float64     `gorm:"index:idx_jobs_salary_min" json:"salary_min,omitempty"`
	SalaryMax           *float64     `gorm:"index:idx_jobs_salary_max" json:"salary_max,omitempty"`
	VisaSponsored       bool         `gorm:"default:false" json:"visa_sponsored"`
	Meta                string       `gorm:"type:text" json:"meta,omitempty"`
	Score               float64      `json:"score"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// TableName returns the database table name for Job.
func (Job) TableName() string {
	return "jobs"
}

package hirebase

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/aplika/jobboard/internal/domain"
)

// ErrMissingID means a raw record carries no external identifier under any
// known key. Such records are skipped, never fatal for the page.
var ErrMissingID = errors.New("record has no external id")

// fieldCandidates lists the upstream keys that may carry each canonical
// string field, in priority order. Upstream renamed several fields between
// its two schema generations; the first non-empty candidate wins.
var fieldCandidates = map[string][]string{
	"external_id":      {"_id", "id"},
	"title":            {"job_title", "title"},
	"application_link": {"application_link", "url"},
	"company_name":     {"company_name", "company"},
	"meta":             {"meta", "job_meta"},
}

// dateFormats are the literal timestamp shapes upstream is known to emit.
// First matching format wins.
var dateFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// ParseDate parses an upstream timestamp. Naive timestamps are coerced to
// UTC. Empty or unparseable input yields ok=false, never an error.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// PostedAt extracts and parses the posting date of a raw record.
func PostedAt(raw RawJob) (time.Time, bool) {
	return ParseDate(stringField(raw, "date_posted"))
}

// Normalize maps a raw upstream payload into a canonical Job. Every field is
// optional except the external id; the application link falls back to empty
// string. An absent or unparseable posting date is replaced by now, since
// DatePosted is the one required timestamp.
func Normalize(raw RawJob, now time.Time) (*domain.Job, error) {
	id := candidateField(raw, "external_id")
	if id == "" {
		return nil, ErrMissingID
	}

	job := &domain.Job{
		ExternalID:          id,
		Title:               candidateField(raw, "title"),
		Description:         stringField(raw, "description"),
		ApplicationLink:     candidateField(raw, "application_link"),
		JobType:             stringField(raw, "job_type"),
		LocationType:        stringField(raw, "location_type"),
		Categories:          jsonField(raw, "job_categories"),
		YoeRange:            jsonField(raw, "yoe_range"),
		CompanyName:         candidateField(raw, "company_name"),
		CompanyLink:         stringField(raw, "company_link"),
		CompanyLogo:         stringField(raw, "company_logo"),
		CompanyData:         jsonField(raw, "company_data"),
		CompanySlug:         stringField(raw, "company_slug"),
		JobSlug:             stringField(raw, "job_slug"),
		RequirementsSummary: stringField(raw, "requirements_summary"),
		Locations:           locationsField(raw),
		SalaryRange:         jsonField(raw, "salary_range"),
		VisaSponsored:       boolField(raw, "visa_sponsored"),
		Meta:                candidateField(raw, "meta"),
		Score:               floatField(raw, "score"),
	}

	if posted, ok := PostedAt(raw); ok {
		job.DatePosted = posted
	} else {
		job.DatePosted = now
	}

	job.SalaryMin, job.SalaryMax = salaryBounds(raw)

	return job, nil
}

// candidateField resolves a canonical field through its synonym key list.
func candidateField(raw RawJob, field string) string {
	return stringField(raw, fieldCandidates[field]...)
}

// stringField returns the first non-empty string among the given keys.
func stringField(raw RawJob, keys ...string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func boolField(raw RawJob, key string) bool {
	b, _ := raw[key].(bool)
	return b
}

// floatField tolerates numbers arriving as JSON numbers or numeric strings.
func floatField(raw RawJob, key string) float64 {
	switch v := raw[key].(type) {
	case float64:
		return v
	case string:
		var f float64
		if err := json.Unmarshal([]byte(v), &f); err == nil {
			return f
		}
	}
	return 0
}

// jsonField re-encodes an arbitrary upstream value so it round-trips through
// the store without freezing its shape.
func jsonField(raw RawJob, key string) domain.JSONValue {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return domain.JSONValue(b)
}

// locationsField decodes the location list, dropping entries that do not
// look like location objects.
func locationsField(raw RawJob) domain.LocationList {
	v, ok := raw["locations"]
	if !ok || v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var list domain.LocationList
	if err := json.Unmarshal(b, &list); err != nil {
		return nil
	}
	return list
}

// salaryBounds lifts min/max out of the salary_range object into dedicated
// columns so the read API can filter on them.
func salaryBounds(raw RawJob) (*float64, *float64) {
	rng, ok := raw["salary_range"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	var minVal, maxVal *float64
	if f, ok := rng["min"].(float64); ok {
		minVal = &f
	}
	if f, ok := rng["max"].(float64); ok {
		maxVal = &f
	}
	return minVal, maxVal
}

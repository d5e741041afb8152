package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aplika/jobboard/internal/service"
)

// JobHandler handles job listing endpoints.
type JobHandler struct {
	jobs *service.JobService
}

// NewJobHandler creates a new job handler.
func NewJobHandler(jobs *service.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// ListJobs handles GET /api/v1/jobs.
//
// Query parameters: q (title/company search), location
// ("city,country,region"), job_type, location_type, job_posted
// (last_24_hour | last_3_days | last_7_days), salary_min, salary_max,
// page, limit.
func (h *JobHandler) ListJobs(c *gin.Context) {
	req := &service.JobListRequest{
		Query:        c.Query("q"),
		Location:     c.Query("location"),
		JobType:      c.Query("job_type"),
		LocationType: c.Query("location_type"),
		PostedWindow: c.Query("job_posted"),
	}

	if v := c.Query("salary_min"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.SalaryMin = &f
		}
	}
	if v := c.Query("salary_max"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.SalaryMax = &f
		}
	}
	req.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	req.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.jobs.List(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list jobs: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pagination": gin.H{
			"count":       result.Count,
			"page":        result.Page,
			"limit":       result.Limit,
			"next":        pageLink(c, result.NextPage),
			"previous":    pageLink(c, result.PreviousPage),
			"total_pages": result.TotalPages,
		},
		"results": result.Results,
	})
}

// GetJob handles GET /api/v1/jobs/:id.
func (h *JobHandler) GetJob(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job ID is required"})
		return
	}

	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get job: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, job)
}

// pageLink rebuilds the request URL pointing at the given page. nil pages
// yield nil links.
func pageLink(c *gin.Context, page *int) *string {
	if page == nil {
		return nil
	}
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(*page))
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}

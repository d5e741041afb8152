package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aplika/jobboard/internal/service"
)

// SyncHandler exposes the manual ingestion trigger.
type SyncHandler struct {
	sync *service.SyncService
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(sync *service.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// TriggerSync handles POST /api/v1/sync.
//
// Starts an ingestion run in the background and returns its id. The run's
// outcome is observable through logs and the sync_runs table, not through
// this endpoint.
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	firstRun, _ := strconv.ParseBool(c.DefaultQuery("first_run", "false"))

	runID, err := h.sync.StartAsync(firstRun)
	if err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "A sync run is already in progress"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to start sync: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"run_id": runID})
}

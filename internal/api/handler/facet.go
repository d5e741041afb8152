package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aplika/jobboard/internal/service"
)

// FacetHandler serves the derived location facet endpoints.
type FacetHandler struct {
	facets *service.FacetService
}

// NewFacetHandler creates a new facet handler.
func NewFacetHandler(facets *service.FacetService) *FacetHandler {
	return &FacetHandler{facets: facets}
}

// ListLocations handles GET /api/v1/locations.
//
// Returns the unique "city,country,region" composites, optionally filtered
// by the search query parameter, capped at 100.
func (h *FacetHandler) ListLocations(c *gin.Context) {
	locations, err := h.facets.Locations(c.Request.Context(), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list locations: " + err.Error(),
		})
		return
	}

	if locations == nil {
		locations = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

// ListLocationField handles GET /api/v1/locations/fields.
//
// The field query parameter selects city, country or region; anything else
// is a client error. The response key is the pluralized field name.
func (h *FacetHandler) ListLocationField(c *gin.Context) {
	field := c.Query("field")

	values, err := h.facets.FieldValues(c.Request.Context(), field, c.Query("search"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidFacetField) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid field. Must be one of: city, country, region",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list " + field + " values: " + err.Error(),
		})
		return
	}

	if values == nil {
		values = []string{}
	}
	c.JSON(http.StatusOK, gin.H{field + "s": values})
}

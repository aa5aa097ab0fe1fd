package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taicc-readiness/internal/service"
)

type CatalogController struct {
	AssessmentService service.AssessmentService
}

func NewCatalogController(assessmentService service.AssessmentService) *CatalogController {
	return &CatalogController{AssessmentService: assessmentService}
}

func (cc *CatalogController) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, cc.AssessmentService.Catalog())
}

// Health reports liveness and whether sessions can run.
func (cc *CatalogController) Health(c *gin.Context) {
	body := gin.H{"status": "ok", "text_generation": true}
	if err := cc.AssessmentService.Ready(); err != nil {
		body["text_generation"] = false
		body["remediation"] = remediation
	}
	c.JSON(http.StatusOK, body)
}

type AdminController struct {
	AssessmentService service.AssessmentService
}

func NewAdminController(assessmentService service.AssessmentService) *AdminController {
	return &AdminController{AssessmentService: assessmentService}
}

// GetResults lists recently stored results with a summary. The limit query
// parameter is optional.
func (ac *AdminController) GetResults(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	results, err := ac.AssessmentService.StoredResults(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"summary": service.SummarizeResults(results),
	})
}

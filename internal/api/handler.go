package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Barczakson/inwentura-op-sub001/internal/config"
	"github.com/Barczakson/inwentura-op-sub001/internal/store"
)

// Handler serves the JSON API.
type Handler struct {
	store     *store.Store
	cfg       *config.AppConfig
	uploadDir string
}

// NewHandler creates the API handler. uploadDir is where uploaded
// spreadsheets are kept.
func NewHandler(st *store.Store, cfg *config.AppConfig, uploadDir string) *Handler {
	return &Handler{
		store:     st,
		cfg:       cfg,
		uploadDir: uploadDir,
	}
}

// RegisterRoutes registers the API routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)

	// Column detection and mapping
	router.POST("/detect", h.Detect)
	router.POST("/mappings/validate", h.ValidateMapping)

	// Ingestion
	router.POST("/import", h.Import)

	// Uploads
	router.GET("/files", h.ListFiles)
	router.GET("/files/:id", h.GetFile)
	router.GET("/files/:id/rows", h.ListFileRows)

	// Aggregated inventory
	router.GET("/aggregates", h.ListAggregates)
	router.GET("/aggregates/:id", h.GetAggregate)
	router.DELETE("/aggregates/:id", h.DeleteAggregate)
}

// GetStatus reports basic liveness and aggregate counts.
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	count, err := h.store.CountAggregates(store.AggregateQueryOptions{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"aggregates": count,
	})
}

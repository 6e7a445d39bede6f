package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Barczakson/inwentura-op-sub001/internal/store"
)

// ListAggregates returns the aggregated inventory.
// GET /api/aggregates?name=&unit=&itemId=&fileId=&limit=&offset=
func (h *Handler) ListAggregates(c *gin.Context) {
	opts := store.AggregateQueryOptions{}

	if v := c.Query("name"); v != "" {
		opts.Name = &v
	}
	if v := c.Query("unit"); v != "" {
		opts.Unit = &v
	}
	if v := c.Query("itemId"); v != "" {
		opts.ItemID = &v
	}
	if v := c.Query("fileId"); v != "" {
		opts.FileID = &v
	}
	opts.Limit = intQuery(c, "limit", 100)
	opts.Offset = intQuery(c, "offset", 0)

	records, err := h.store.ListAggregates(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query aggregates"})
		return
	}
	total, err := h.store.CountAggregates(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query aggregates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"aggregates": records,
		"total":      total,
		"limit":      opts.Limit,
		"offset":     opts.Offset,
	})
}

// GetAggregate returns one aggregate with its source files.
// GET /api/aggregates/:id
func (h *Handler) GetAggregate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid aggregate id"})
		return
	}

	record, err := h.store.GetAggregateByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "aggregate not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// DeleteAggregate removes one aggregate. This is the only way an aggregate
// disappears; ingestion never deletes.
// DELETE /api/aggregates/:id
func (h *Handler) DeleteAggregate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid aggregate id"})
		return
	}

	if err := h.store.DeleteAggregate(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "aggregate not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

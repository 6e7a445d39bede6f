package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListFiles returns upload history, newest first.
// GET /api/files?limit=&offset=
func (h *Handler) ListFiles(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	files, err := h.store.ListFiles(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query files"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// GetFile returns one upload record.
// GET /api/files/:id
func (h *Handler) GetFile(c *gin.Context) {
	file, err := h.store.GetFile(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.JSON(http.StatusOK, file)
}

// ListFileRows returns the extracted rows behind one upload, in sheet order.
// GET /api/files/:id/rows
func (h *Handler) ListFileRows(c *gin.Context) {
	if _, err := h.store.GetFile(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	rows, err := h.store.ListRowsByFile(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query rows"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

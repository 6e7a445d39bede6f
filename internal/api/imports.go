package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Barczakson/inwentura-op-sub001/internal/importer"
	"github.com/Barczakson/inwentura-op-sub001/internal/model"
	"github.com/Barczakson/inwentura-op-sub001/internal/parser"
)

// Import ingests an uploaded spreadsheet (SSE streaming response).
// POST /api/import
//
// Form fields:
//
//	file:    the .xlsx upload (required)
//	mapping: optional JSON object {field: columnIndex} overriding detection
func (h *Handler) Import(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	uploadedFile := files[0]

	if ext := filepath.Ext(uploadedFile.Filename); ext != ".xlsx" && ext != ".xlsm" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .xlsx files are supported"})
		return
	}

	var mapping *model.ColumnMapping
	if raw := c.PostForm("mapping"); raw != "" {
		mapping, err = parseMappingJSON(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	fileID := uuid.New().String()
	savedPath := filepath.Join(h.uploadDir, fileID+".xlsx")

	if err := c.SaveUploadedFile(uploadedFile, savedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}

	if err := h.store.CreateFile(fileID, uploadedFile.Filename, uploadedFile.Size); err != nil {
		os.Remove(savedPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record upload"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	coordinator := importer.NewCoordinator(h.store, h.cfg.Import)
	progressChan := coordinator.Import(c.Request.Context(), importer.ImportOptions{
		FilePath: savedPath,
		FileID:   fileID,
		Filename: uploadedFile.Filename,
		Mapping:  mapping,
	})

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// parseMappingJSON decodes and validates the manual mapping form field. Only
// structural validation happens here; bounds checking needs the sheet width
// and is done per sheet by the coordinator.
func parseMappingJSON(raw string) (*model.ColumnMapping, error) {
	var fields map[string]int
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("mapping is not a valid JSON object: %w", err)
	}
	mapping, err := parser.ParseManualMapping(fields)
	if err != nil {
		return nil, err
	}
	for _, field := range model.RequiredFields {
		if mapping.Index(field) == nil {
			return nil, fmt.Errorf("mapping is missing required field: %s", field)
		}
	}
	return &mapping, nil
}

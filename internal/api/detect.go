package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Barczakson/inwentura-op-sub001/internal/importer"
	"github.com/Barczakson/inwentura-op-sub001/internal/parser"
)

// Detect previews column detection for an uploaded spreadsheet without
// ingesting it. The client uses the result to confirm the mapping or open
// the manual correction dialog.
// POST /api/detect
func (h *Handler) Detect(c *gin.Context) {
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

	tempPath := filepath.Join(os.TempDir(),
		fmt.Sprintf("inwentura_detect_%d_%s", time.Now().UnixNano(), filepath.Base(uploadedFile.Filename)))
	if err := c.SaveUploadedFile(uploadedFile, tempPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}
	defer os.Remove(tempPath)

	detections, err := importer.Preview(tempPath, h.cfg.Import.SampleRows)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not read spreadsheet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sheets": detections})
}

// ValidateMappingRequest is the payload for manual mapping validation.
type ValidateMappingRequest struct {
	Mapping     map[string]int `json:"mapping" binding:"required"`
	HeaderCount int            `json:"headerCount" binding:"required"`
}

// ValidateMapping checks a user-edited mapping and reports every problem.
// POST /api/mappings/validate
func (h *Handler) ValidateMapping(c *gin.Context) {
	var req ValidateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	mapping, err := parser.ParseManualMapping(req.Mapping)
	if err != nil {
		c.JSON(http.StatusOK, parser.ValidationResult{
			IsValid: false,
			Errors:  []string{err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, parser.Validate(mapping, req.HeaderCount))
}

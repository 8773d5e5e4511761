package handlers

import (
	"errors"
	"net/http"

	"pos_backend/internal/services"
	"pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ImportHandler holds the import service.
type ImportHandler struct {
	importService services.ImportService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(is services.ImportService) *ImportHandler {
	return &ImportHandler{importService: is}
}

// ImportProducts accepts a multipart CSV upload and runs the import
// pipeline. Form fields: file (required), category_policy (auto_create or
// reject), strict_integers (true/false).
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Missing CSV file.", "a 'file' form field is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Could not read uploaded file.", err.Error()))
		return
	}
	defer file.Close()

	opts := services.ImportOptions{
		CategoryPolicy: c.PostForm("category_policy"),
		StrictIntegers: c.PostForm("strict_integers") == "true",
	}

	progress := func(processed, total int) {
		if total > 0 && processed%50 == 0 {
			utils.LogInfo("product import progress", map[string]interface{}{
				"processed": processed,
				"total":     total,
				"percent":   processed * 100 / total,
			})
		}
	}

	summary, err := h.importService.ImportProducts(file, opts, progress)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrImportEmptyFile):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Import file contains no data rows.", err.Error()))
		case errors.Is(err, services.ErrImportBadHeader):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Import file header is missing required columns.", err.Error()))
		case errors.Is(err, services.ErrImportMalformed):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Import file is not valid CSV.", err.Error()))
		default:
			utils.LogError(err, "ImportProducts: Error from importService.ImportProducts")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Import failed.", "Internal error"))
		}
		return
	}

	// A run that imported nothing is reported as a failure even when no row
	// produced a validation error.
	status := http.StatusOK
	if summary.SuccessCount == 0 {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, summary)
}

// DownloadTemplate serves a blank CSV template that round-trips through the
// import validator.
func (h *ImportHandler) DownloadTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="product_import_template.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(h.importService.Template()))
}

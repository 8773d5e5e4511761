package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"pos_backend/internal/models"
	"pos_backend/internal/services"
	"pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// BackupHandler holds the backup service.
type BackupHandler struct {
	backupService services.BackupService
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(bs services.BackupService) *BackupHandler {
	return &BackupHandler{backupService: bs}
}

// Export downloads the full dataset as a single JSON document. Admin only.
func (h *BackupHandler) Export(c *gin.Context) {
	doc, err := h.backupService.Export()
	if err != nil {
		utils.LogError(err, "Export: Error from backupService.Export")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to export backup.", "Internal error"))
		return
	}
	filename := fmt.Sprintf("pos_backup_%s.json", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.JSON(http.StatusOK, doc)
}

type restoreRequest struct {
	Mode     string                 `json:"mode" binding:"required,oneof=replace merge"`
	Document *models.BackupDocument `json:"document" binding:"required"`
}

// Restore loads a backup document. The mode is part of the request because
// the choice between replace and merge is made by the operator per restore.
// Admin only.
func (h *BackupHandler) Restore(c *gin.Context) {
	var req restoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Malformed backup JSON is a single top-level failure.
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid backup document: "+err.Error(), err.Error()))
		return
	}

	if err := h.backupService.Restore(req.Document, req.Mode); err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownRestoreMode), errors.Is(err, services.ErrUnsupportedBackup):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Cannot restore backup.", err.Error()))
		case errors.Is(err, services.ErrRestoreConflict):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Restore conflicts with existing records.", err.Error()))
		default:
			utils.LogError(err, "Restore: Error from backupService.Restore")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to restore backup.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Backup restored successfully", "mode": req.Mode})
}

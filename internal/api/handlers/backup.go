package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/twinvest/portfolio-ledger-backend/internal/api/response"
	"github.com/twinvest/portfolio-ledger-backend/internal/apperrors"
	"github.com/twinvest/portfolio-ledger-backend/internal/service"
)

// maxBackupBytes caps import payload size.
const maxBackupBytes = 16 << 20

// BackupHandler handles export and import of full portfolio backups.
type BackupHandler struct {
	portfolioService *service.PortfolioService
}

// NewBackupHandler creates a new BackupHandler with the provided service dependency.
func NewBackupHandler(portfolioService *service.PortfolioService) *BackupHandler {
	return &BackupHandler{
		portfolioService: portfolioService,
	}
}

// Export handles GET requests to download the full portfolio as JSON.
//
// Endpoint: GET /api/backup/export
// Response: 200 OK with the backup document as an attachment
func (h *BackupHandler) Export(w http.ResponseWriter, _ *http.Request) {
	data, filename, err := h.portfolioService.ExportBackup()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToExportBackup.Error(), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Import handles POST requests to replace the stored portfolio with a
// backup document. A rejected payload leaves the stored state untouched.
//
// Endpoint: POST /api/backup/import
// Request Body: a previously exported backup document
// Response: 204 No Content
// Error: 400 Bad Request if the payload is not a valid backup
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBackupBytes))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "failed to read request body", err.Error())
		return
	}

	if err := h.portfolioService.ImportBackup(r.Context(), data); err != nil {
		if errors.Is(err, apperrors.ErrInvalidBackup) || errors.Is(err, apperrors.ErrInvalidMarket) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidBackup.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToImportBackup.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/twinvest/portfolio-ledger-backend/internal/api/response"
	"github.com/twinvest/portfolio-ledger-backend/internal/apperrors"
	"github.com/twinvest/portfolio-ledger-backend/internal/service"
)

// TransactionHandler handles HTTP requests for the audit log.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// GetTransactions handles GET requests for the transaction log.
//
// Endpoint: GET /api/transaction?category={name}
// Response: 200 OK with []Transaction
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	categoryName := r.URL.Query().Get("category")

	transactions, err := h.transactionService.GetTransactions(categoryName)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// GetTransaction handles GET requests for a single transaction.
//
// Endpoint: GET /api/transaction/{uuid}
// Response: 200 OK with Transaction
// Error: 404 Not Found if the transaction does not exist
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "uuid")

	txn, err := h.transactionService.GetTransaction(transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransaction.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, txn)
}

// RevokeTransaction handles DELETE requests to revoke a transaction and
// reverse its ledger effect.
//
// Endpoint: DELETE /api/transaction/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the transaction does not exist
// Error: 409 Conflict if later activity depends on the revoked record
func (h *TransactionHandler) RevokeTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "uuid")

	if err := h.transactionService.RevokeTransaction(r.Context(), transactionID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrIrreversibleTransaction):
			response.RespondError(w, http.StatusConflict, apperrors.ErrIrreversibleTransaction.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to revoke transaction", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/twinvest/portfolio-ledger-backend/internal/api/request"
	"github.com/twinvest/portfolio-ledger-backend/internal/api/response"
	"github.com/twinvest/portfolio-ledger-backend/internal/apperrors"
	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
	"github.com/twinvest/portfolio-ledger-backend/internal/service"
	"github.com/twinvest/portfolio-ledger-backend/internal/validation"
)

// PortfolioHandler handles HTTP requests for the portfolio view, order
// execution, allocation targets and the capital log. It is the HTTP layer
// adapter; all ledger logic lives behind the portfolioService.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependency.
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Portfolio handles GET requests for the fully revalued portfolio view.
//
// Endpoint: GET /api/portfolio
// Response: 200 OK with CalculatedPortfolio
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	calculated, err := h.portfolioService.GetCalculatedPortfolio(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePortfolio.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, calculated)
}

// ExecuteOrder handles POST requests to execute a buy, sell or dividend order.
//
// Endpoint: POST /api/order
// Request Body: ExecuteOrderRequest
// Response: 201 Created with the appended Transaction
// Error: 400 Bad Request if validation fails or shares are insufficient
// Error: 404 Not Found if the category does not exist
// Error: 500 Internal Server Error if persistence fails
func (h *PortfolioHandler) ExecuteOrder(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ExecuteOrderRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateExecuteOrder(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	order := ledger.Order{
		Action:       ledger.Action(req.Action),
		Symbol:       req.Symbol,
		Name:         req.Name,
		Shares:       req.Shares,
		Price:        req.Price,
		ExchangeRate: req.ExchangeRate,
		TotalAmount:  req.TotalAmount,
		Fee:          req.Fee,
		Tax:          req.Tax,
		AssetID:      req.AssetID,
	}

	txn, err := h.portfolioService.ExecuteOrder(r.Context(), req.CategoryID, order)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrCategoryNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrCategoryNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrInvalidShares),
			errors.Is(err, apperrors.ErrInsufficientShares),
			errors.Is(err, apperrors.ErrAssetNotFound),
			errors.Is(err, apperrors.ErrInvalidAction):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrFailedToExecuteOrder.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToExecuteOrder.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, txn)
}

// SetAllocation handles PUT requests to replace a category's target percentage.
//
// Endpoint: PUT /api/category/{uuid}/allocation
// Request Body: SetAllocationRequest
// Response: 204 No Content
// Error: 400 Bad Request if the percentage is out of range
// Error: 404 Not Found if the category does not exist
func (h *PortfolioHandler) SetAllocation(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.SetAllocationRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetAllocation(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.portfolioService.SetAllocation(r.Context(), categoryID, req.Percent); err != nil {
		if errors.Is(err, apperrors.ErrCategoryNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrCategoryNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSetAllocation.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// CapitalLogResponse wraps the capital log with its derived total.
type CapitalLogResponse struct {
	TotalCapital float64                  `json:"totalCapital"`
	Entries      []ledger.CapitalLogEntry `json:"entries"`
}

// CapitalLog handles GET requests for the capital log and derived total.
//
// Endpoint: GET /api/capital
// Response: 200 OK with CapitalLogResponse
func (h *PortfolioHandler) CapitalLog(w http.ResponseWriter, _ *http.Request) {
	entries, total, err := h.portfolioService.GetCapitalLog()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveCapitalLog.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, CapitalLogResponse{
		TotalCapital: total,
		Entries:      entries,
	})
}

// RecordCapital handles POST requests to record a deposit or withdrawal.
//
// Endpoint: POST /api/capital
// Request Body: RecordCapitalRequest
// Response: 201 Created with the entry and new total
// Error: 400 Bad Request if validation fails
func (h *PortfolioHandler) RecordCapital(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RecordCapitalRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRecordCapital(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	entry, total, err := h.portfolioService.RecordCapital(r.Context(), ledger.CapitalEntryType(req.Type), req.Amount)
	if err != nil {
		if errors.Is(err, apperrors.ErrNegativeAmount) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrFailedToRecordCapital.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRecordCapital.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, map[string]any{
		"entry":        entry,
		"totalCapital": total,
	})
}

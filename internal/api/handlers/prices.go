package handlers

import (
	"errors"
	"net/http"

	"github.com/twinvest/portfolio-ledger-backend/internal/api/response"
	"github.com/twinvest/portfolio-ledger-backend/internal/apperrors"
	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
	"github.com/twinvest/portfolio-ledger-backend/internal/service"
)

// PriceHandler handles HTTP requests for quotes, instrument search and news.
type PriceHandler struct {
	priceService *service.PriceService
}

// NewPriceHandler creates a new PriceHandler with the provided service dependency.
func NewPriceHandler(priceService *service.PriceService) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
	}
}

// PriceResponse represents a single resolved quote.
type PriceResponse struct {
	Symbol string  `json:"symbol"`
	Market string  `json:"market"`
	Price  float64 `json:"price"`
}

// marketParam reads and validates the market query parameter.
func marketParam(r *http.Request) (ledger.Market, error) {
	market := ledger.Market(r.URL.Query().Get("market"))
	if !market.Valid() {
		return "", apperrors.ErrInvalidMarket
	}
	return market, nil
}

// GetPrice handles GET requests for one quote.
//
// Endpoint: GET /api/price?symbol={symbol}&market={TW|US}
// Response: 200 OK with PriceResponse
// Error: 400 Bad Request if symbol or market is missing or invalid
// Error: 404 Not Found if no quote could be resolved, not even stale
func (h *PriceHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		response.RespondError(w, http.StatusBadRequest, "symbol is required", "")
		return
	}

	market, err := marketParam(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidMarket.Error(), "market must be TW or US")
		return
	}

	price, err := h.priceService.GetPrice(r.Context(), symbol, market)
	if err != nil {
		if errors.Is(err, apperrors.ErrPriceNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPriceNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve price", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, PriceResponse{
		Symbol: symbol,
		Market: string(market),
		Price:  price,
	})
}

// RefreshPrices handles POST requests to re-fetch every held quote now
// instead of waiting for the next scheduled run.
//
// Endpoint: POST /api/price/refresh
// Response: 204 No Content
func (h *PriceHandler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	if err := h.priceService.RefreshAll(r.Context()); err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRefreshPrices.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Search handles GET requests to look up instrument candidates.
//
// Endpoint: GET /api/search?q={query}&market={TW|US}
// Response: 200 OK with []SearchResult, empty when nothing matched
// Error: 400 Bad Request if the query or market is missing or invalid
func (h *PriceHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		response.RespondError(w, http.StatusBadRequest, "query is required", "")
		return
	}

	market, err := marketParam(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidMarket.Error(), "market must be TW or US")
		return
	}

	results := h.priceService.SearchInstruments(r.Context(), query, market)
	response.RespondJSON(w, http.StatusOK, results)
}

// News handles GET requests for recent headlines about an instrument.
//
// Endpoint: GET /api/news?symbol={symbol}&market={TW|US}&name={name}
// Response: 200 OK with []NewsItem, empty when no feed could be read
// Error: 400 Bad Request if the symbol or market is missing or invalid
func (h *PriceHandler) News(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		response.RespondError(w, http.StatusBadRequest, "symbol is required", "")
		return
	}

	market, err := marketParam(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidMarket.Error(), "market must be TW or US")
		return
	}

	items := h.priceService.GetNews(r.Context(), symbol, market, r.URL.Query().Get("name"))
	response.RespondJSON(w, http.StatusOK, items)
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/twinvest/portfolio-ledger-backend/internal/api/handlers"
	custommiddleware "github.com/twinvest/portfolio-ledger-backend/internal/api/middleware"
	"github.com/twinvest/portfolio-ledger-backend/internal/config"
	"github.com/twinvest/portfolio-ledger-backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	portfolioService *service.PortfolioService,
	transactionService *service.TransactionService,
	priceService *service.PriceService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		portfolioHandler := handlers.NewPortfolioHandler(portfolioService)

		r.Get("/portfolio", portfolioHandler.Portfolio)
		r.Post("/order", portfolioHandler.ExecuteOrder)

		r.Route("/category/{uuid}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Put("/allocation", portfolioHandler.SetAllocation)
		})

		r.Route("/capital", func(r chi.Router) {
			r.Get("/", portfolioHandler.CapitalLog)
			r.Post("/", portfolioHandler.RecordCapital)
		})

		r.Route("/transaction", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(transactionService)
			r.Get("/", transactionHandler.GetTransactions)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", transactionHandler.GetTransaction)
				r.Delete("/", transactionHandler.RevokeTransaction)
			})
		})

		priceHandler := handlers.NewPriceHandler(priceService)
		r.Route("/price", func(r chi.Router) {
			r.Get("/", priceHandler.GetPrice)
			r.Post("/refresh", priceHandler.RefreshPrices)
		})
		r.Get("/search", priceHandler.Search)
		r.Get("/news", priceHandler.News)

		// Backup endpoints mutate or expose the whole store, so they sit
		// behind the internal API key.
		r.Route("/backup", func(r chi.Router) {
			r.Use(custommiddleware.APIKeyMiddleware)
			backupHandler := handlers.NewBackupHandler(portfolioService)
			r.Get("/export", backupHandler.Export)
			r.Post("/import", backupHandler.Import)
		})
	})

	return r
}

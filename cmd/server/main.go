package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/twinvest/portfolio-ledger-backend/internal/api"
	"github.com/twinvest/portfolio-ledger-backend/internal/config"
	"github.com/twinvest/portfolio-ledger-backend/internal/database"
	"github.com/twinvest/portfolio-ledger-backend/internal/oracle"
	"github.com/twinvest/portfolio-ledger-backend/internal/repository"
	"github.com/twinvest/portfolio-ledger-backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	capitalRepo := repository.NewCapitalRepository(db)

	// Price oracle with its TTL cache
	priceCache := oracle.NewCache(cfg.Price.CacheTTL)
	priceOracle := oracle.New(priceCache)

	// Create services
	systemService := service.NewSystemService(db)
	portfolioService := service.NewPortfolioService(
		portfolioRepo,
		capitalRepo,
		priceOracle,
	)
	transactionService := service.NewTransactionService(
		transactionRepo,
		portfolioRepo,
	)
	priceService := service.NewPriceService(
		portfolioRepo,
		priceOracle,
	)

	if err := portfolioService.EnsureSeeded(context.Background()); err != nil {
		log.Fatalf("Failed to seed default categories: %v", err)
	}

	// Scheduled quote refresh
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Price.RefreshCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := priceService.RefreshAll(ctx); err != nil {
			log.Printf("Scheduled price refresh failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Invalid refresh schedule %q: %v", cfg.Price.RefreshCron, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(systemService, portfolioService, transactionService, priceService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

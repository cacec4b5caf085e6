package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/rhashem/fruitmart/internal/account"
	"github.com/rhashem/fruitmart/internal/cart"
	"github.com/rhashem/fruitmart/internal/config"
	"github.com/rhashem/fruitmart/internal/database"
	"github.com/rhashem/fruitmart/internal/notification"
	"github.com/rhashem/fruitmart/internal/order"
	"github.com/rhashem/fruitmart/internal/product"
	"github.com/rhashem/fruitmart/pkg/logging"
	mw "github.com/rhashem/fruitmart/pkg/middleware"
)

// @title        Fruitmart API
// @version      1.0
// @description  Fruit storefront backend: cart, credit, and order settlement.
// @BasePath     /api/v1
func main() {
	logging.Setup()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("Connected to database")

	// Account feature
	accountRepo := account.NewRepository(db)
	accountService := account.NewService(accountRepo)
	accountHandler := account.NewHandler(accountService)

	// Product store (settlement collaborator; no catalog routes)
	productRepo := product.NewRepository(db)

	// Cart feature
	cartRepo := cart.NewRepository(db)
	cartService := cart.NewService(cartRepo, productRepo)
	cartHandler := cart.NewHandler(cartService)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// Order feature (settlement core, with its stores injected)
	orderRepo := order.NewRepository(db)
	orderService := order.NewService(orderRepo, accountRepo, cartRepo, notificationService)
	orderHandler := order.NewHandler(orderService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.TestAccountMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/account", accountHandler.Routes())
		r.Mount("/cart", cartHandler.Routes())
		r.Mount("/orders", orderHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	slog.Info("Server starting", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

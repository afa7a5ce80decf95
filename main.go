package main

import (
	"log"
	"net/http"
	"strings"

	"pricewatch/config"
	"pricewatch/database"
	"pricewatch/handlers"
	"pricewatch/middleware"
	"pricewatch/notify"
	"pricewatch/repository"
	"pricewatch/scheduler"
	"pricewatch/scraper"
	"pricewatch/tracker"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Initialize database
	if err := database.InitDatabase(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Create tables
	if err := database.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	productRepo := repository.NewProductRepository()
	historyRepo := repository.NewHistoryRepository()
	notificationRepo := repository.NewNotificationRepository()

	// Initialize the page fetcher. With FETCHER_USE_BROWSER a headless
	// browser takes over whenever the plain HTTP fetch is blocked.
	var fetcher scraper.Fetcher = scraper.NewHTTPFetcher(cfg.Fetcher)
	if cfg.Fetcher.UseBrowser {
		browser, err := scraper.NewBrowserFetcher()
		if err != nil {
			log.Printf("Browser fetcher unavailable, falling back to HTTP only: %v", err)
		} else {
			defer browser.Close()
			fetcher = &scraper.FallbackFetcher{Primary: fetcher, Secondary: browser}
		}
	}

	// Initialize notification dispatch
	dispatcher := notify.NewDispatcher(cfg.SMTP, cfg.WhatsApp)

	// Initialize the tracking engine
	engine := tracker.NewEngine(productRepo, historyRepo, notificationRepo, fetcher, dispatcher)

	// Initialize and start the price checker
	priceChecker := scheduler.NewPriceChecker(engine, userRepo, cfg.CheckInterval)
	priceChecker.Start()
	defer priceChecker.Stop()

	// Initialize handlers
	h := handlers.NewHandlers(engine, userRepo, notificationRepo, dispatcher)

	// Setup router
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimit))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api.HandleFunc("/users", h.CreateUser).Methods("POST")
	api.HandleFunc("/users", h.GetUsers).Methods("GET")
	api.HandleFunc("/users/{id}", h.GetUser).Methods("GET")
	api.HandleFunc("/users/{id}", h.DeleteUser).Methods("DELETE")

	api.HandleFunc("/products", h.AddProduct).Methods("POST")
	api.HandleFunc("/products", h.GetProducts).Methods("GET")
	api.HandleFunc("/products/check", h.CheckPrice).Methods("POST")
	api.HandleFunc("/products/update-all", h.UpdateAllPrices).Methods("POST")
	api.HandleFunc("/products/{id}", h.RemoveProduct).Methods("DELETE")

	api.HandleFunc("/track/check", h.RunAlertCycle).Methods("POST")

	api.HandleFunc("/history", h.GetHistory).Methods("GET")
	api.HandleFunc("/history/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/history/{id}", h.GetHistoryByID).Methods("GET")
	api.HandleFunc("/history/{id}", h.PurgeHistory).Methods("DELETE")
	api.HandleFunc("/history/{id}/stats", h.GetStatsByID).Methods("GET")

	api.HandleFunc("/notifications", h.GetNotificationSettings).Methods("GET")
	api.HandleFunc("/notifications", h.UpdateNotificationSettings).Methods("PUT")
	api.HandleFunc("/notifications/send", h.SendNotification).Methods("POST")

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	addr := cfg.Host + ":" + cfg.Port
	log.Printf("Server starting on %s", addr)
	log.Printf("   GET    /api/health - Health check")
	log.Printf("   POST   /api/users - Register a user")
	log.Printf("   POST   /api/products - Track a product")
	log.Printf("   POST   /api/products/check - Check a price now")
	log.Printf("   POST   /api/products/update-all - Refresh all prices")
	log.Printf("   POST   /api/track/check - Run an alert cycle")
	log.Printf("   GET    /api/history - Price history for a URL")
	log.Printf("   PUT    /api/notifications - Update delivery channels")

	// Start server
	log.Fatal(http.ListenAndServe(addr, c.Handler(r)))
}

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"pricewatch/models"
	"pricewatch/notify"
	"pricewatch/repository"
	"pricewatch/scraper"
	"pricewatch/tracker"
	"pricewatch/urlutil"

	"github.com/gorilla/mux"
)

type Handlers struct {
	engine           *tracker.Engine
	userRepo         *repository.UserRepository
	notificationRepo *repository.NotificationRepository
	dispatcher       *notify.Dispatcher
}

func NewHandlers(engine *tracker.Engine, userRepo *repository.UserRepository, notificationRepo *repository.NotificationRepository, dispatcher *notify.Dispatcher) *Handlers {
	return &Handlers{
		engine:           engine,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		dispatcher:       dispatcher,
	}
}

// HealthCheck returns a simple health check response
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "pricewatch",
		"version":   "1.0.0",
	}
	writeJSON(w, http.StatusOK, response)
}

// CreateUser registers a new user
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Name and email are required")
		return
	}

	user, err := h.userRepo.CreateUser(req.Name, req.Email)
	if err != nil {
		log.Printf("Failed to create user: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// GetUsers returns all registered users
func (h *Handlers) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.GetUsers()
	if err != nil {
		log.Printf("Failed to get users: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get users")
		return
	}

	if users == nil {
		users = []models.User{}
	}

	writeJSON(w, http.StatusOK, users)
}

// GetUser returns a single user
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.userRepo.GetUserByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("Failed to get user: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteUser removes a user together with their products, history and
// notification settings.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.userRepo.DeleteUser(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("Failed to delete user: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

// AddProduct starts tracking a product. The URL is fetched once
// immediately so the stored row begins with a known title and price.
func (h *Handlers) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req models.AddProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserID == 0 || req.URL == "" {
		writeError(w, http.StatusBadRequest, "user_id and url are required")
		return
	}
	if req.Threshold < 0 {
		writeError(w, http.StatusBadRequest, "Threshold must not be negative")
		return
	}
	if !urlutil.IsAmazonURL(req.URL) {
		writeError(w, http.StatusBadRequest, "Only Amazon product URLs are supported")
		return
	}

	view, err := h.engine.AddProduct(req.UserID, req.URL, req.Threshold)
	if err != nil {
		writeScrapeError(w, req.URL, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// GetProducts returns the user's active products
func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	products, err := h.engine.GetProducts(userID)
	if err != nil {
		log.Printf("Failed to get products: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get products")
		return
	}

	if products == nil {
		products = []models.Product{}
	}

	writeJSON(w, http.StatusOK, products)
}

// RemoveProduct stops tracking a product
func (h *Handlers) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	if err := h.engine.RemoveProduct(userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Printf("Failed to remove product: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to remove product")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Product removed successfully"})
}

// CheckPrice fetches a live price for a URL. If the user already
// tracks a matching product it is updated in place; an untracked URL
// just gets a one-off price preview.
func (h *Handlers) CheckPrice(w http.ResponseWriter, r *http.Request) {
	var req models.CheckPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserID == 0 || req.URL == "" {
		writeError(w, http.StatusBadRequest, "user_id and url are required")
		return
	}
	if !urlutil.IsAmazonURL(req.URL) {
		writeError(w, http.StatusBadRequest, "Only Amazon product URLs are supported")
		return
	}

	view, err := h.engine.CheckPrice(req.UserID, req.URL)
	if err != nil {
		writeScrapeError(w, req.URL, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// UpdateAllPrices refreshes every product the user tracks
func (h *Handlers) UpdateAllPrices(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	updated, err := h.engine.UpdateAllPrices(userID)
	if err != nil {
		log.Printf("Failed to update prices: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update prices")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"updated": updated,
		"count":   len(updated),
		"checked": time.Now(),
	})
}

// RunAlertCycle runs one check-and-alert pass for the user and
// reports which products crossed their thresholds.
func (h *Handlers) RunAlertCycle(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	alerted, err := h.engine.CheckAndAlert(userID)
	if err != nil {
		log.Printf("Alert cycle failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Alert cycle failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerted": alerted,
		"count":   len(alerted),
	})
}

// GetHistory returns the observation history for a tracked URL
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	entries, err := h.engine.GetHistory(userID, url, queryLimit(r))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Printf("Failed to get history: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get history")
		return
	}

	if entries == nil {
		entries = []models.PriceObservation{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// GetHistoryByID returns the observation history for a product ID
func (h *Handlers) GetHistoryByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	entries, err := h.engine.GetHistoryByID(userID, id, queryLimit(r))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Printf("Failed to get history: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get history")
		return
	}

	if entries == nil {
		entries = []models.PriceObservation{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// PurgeHistory deletes a product's observation history
func (h *Handlers) PurgeHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	if err := h.engine.PurgeHistory(userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Printf("Failed to purge history: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to purge history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "History purged successfully"})
}

// GetStats returns price statistics for a tracked URL
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	stats, err := h.engine.GetStats(userID, url)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No price history for this product")
			return
		}
		log.Printf("Failed to get stats: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// GetStatsByID returns price statistics for a product ID
func (h *Handlers) GetStatsByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.engine.GetStatsByID(userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No price history for this product")
			return
		}
		log.Printf("Failed to get stats: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// GetNotificationSettings returns the user's delivery channels
func (h *Handlers) GetNotificationSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	settings, err := h.notificationRepo.Get(userID)
	if err != nil {
		log.Printf("Failed to get notification settings: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get notification settings")
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// UpdateNotificationSettings updates the user's delivery channels.
// Omitted fields keep their current value; an explicit empty string
// disables the channel.
func (h *Handlers) UpdateNotificationSettings(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateNotificationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if err := h.notificationRepo.Upsert(req.UserID, req.Email, req.PhoneNumber); err != nil {
		log.Printf("Failed to update notification settings: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update notification settings")
		return
	}

	settings, err := h.notificationRepo.Get(req.UserID)
	if err != nil {
		log.Printf("Failed to reload notification settings: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to reload notification settings")
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// SendNotification sends a test alert over the user's configured
// channels so delivery can be verified without waiting for a drop.
func (h *Handlers) SendNotification(w http.ResponseWriter, r *http.Request) {
	var req models.SendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserID == 0 || req.Title == "" || req.URL == "" {
		writeError(w, http.StatusBadRequest, "user_id, title and url are required")
		return
	}

	settings, err := h.notificationRepo.Get(req.UserID)
	if err != nil {
		log.Printf("Failed to get notification settings: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get notification settings")
		return
	}

	emailed, messaged := h.dispatcher.Dispatch(settings, req.Title, req.URL)
	writeJSON(w, http.StatusOK, map[string]bool{
		"emailed":  emailed,
		"messaged": messaged,
	})
}

// pathID reads a numeric {name} path variable, writing a 400 on
// failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars[name], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// queryUserID reads the required user_id query parameter, writing a
// 400 on failure.
func queryUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "user_id query parameter is required")
		return 0, false
	}
	return userID, true
}

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// writeScrapeError maps fetch and extraction failures to HTTP
// statuses: an unreachable or blocked page is a 502, an unrecognized
// page layout a 422.
func writeScrapeError(w http.ResponseWriter, url string, err error) {
	var fetchErr *scraper.FetchError
	if errors.As(err, &fetchErr) {
		log.Printf("Fetch failed for %s: %v", url, err)
		writeError(w, http.StatusBadGateway, "Failed to fetch the product page")
		return
	}

	var extractionErr *scraper.ExtractionError
	if errors.As(err, &extractionErr) {
		log.Printf("Extraction failed for %s: %v", url, err)
		writeError(w, http.StatusUnprocessableEntity, "Could not read a price from the product page")
		return
	}

	log.Printf("Request failed for %s: %v", url, err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

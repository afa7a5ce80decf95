// Package tracker is the tracking and alerting engine: it checks
// product prices, records history, and fires a notification exactly
// once when a price crosses its threshold.
package tracker

import (
	"log"

	"pricewatch/models"
	"pricewatch/repository"
	"pricewatch/scraper"
	"pricewatch/urlutil"
)

// Store is the persistence collaborator for tracked products. The
// Record* methods are atomic: price update and history append commit
// together or not at all.
type Store interface {
	FindByURL(userID int64, url string) (*models.Product, error)
	FindByASIN(userID int64, asin string) (*models.Product, error)
	GetByID(userID, productID int64) (*models.Product, error)
	ListActive(userID int64) ([]models.Product, error)
	Upsert(userID int64, url, title string, threshold, price float64) (*models.Product, error)
	RecordCheck(productID int64, title string, price float64) error
	RecordAlert(productID int64, title string, price float64) error
	Deactivate(userID, productID int64) error
}

// HistoryStore reads and purges the observation history.
type HistoryStore interface {
	List(productID int64, limit int) ([]models.PriceObservation, error)
	Stats(product *models.Product) (*models.PriceStatistics, error)
	Purge(productID int64) error
}

// SettingsStore loads the user's notification channels.
type SettingsStore interface {
	Get(userID int64) (*models.NotificationSettings, error)
}

// Notifier fans an alert out to the configured channels,
// best-effort per channel.
type Notifier interface {
	Dispatch(settings *models.NotificationSettings, title, url string) (emailed, messaged bool)
}

// Engine orchestrates fetch, extraction, persistence and alerting.
// It holds no cross-call state; every operation resolves everything
// it needs from its collaborators.
type Engine struct {
	store    Store
	history  HistoryStore
	settings SettingsStore
	fetcher  scraper.Fetcher
	notifier Notifier
}

func NewEngine(store Store, history HistoryStore, settings SettingsStore, fetcher scraper.Fetcher, notifier Notifier) *Engine {
	return &Engine{
		store:    store,
		history:  history,
		settings: settings,
		fetcher:  fetcher,
		notifier: notifier,
	}
}

// fetchProduct retrieves and extracts one page, returning the product
// info together with the post-redirect URL.
func (e *Engine) fetchProduct(url string) (*scraper.ProductInfo, string, error) {
	page, err := e.fetcher.Fetch(url)
	if err != nil {
		return nil, "", err
	}
	info, err := scraper.Extract(page.HTML)
	if err != nil {
		return nil, "", err
	}
	return info, page.FinalURL, nil
}

// AddProduct starts tracking a URL for a user. The first fetch must
// succeed; on any fetch or extraction failure no row is created. The
// identity stored is the canonicalized post-redirect URL, so short
// links and decorated links collapse onto one product.
func (e *Engine) AddProduct(userID int64, url string, threshold float64) (*models.ProductView, error) {
	info, finalURL, err := e.fetchProduct(url)
	if err != nil {
		return nil, err
	}

	canonical := urlutil.Canonicalize(finalURL)
	product, err := e.store.Upsert(userID, canonical, info.Title, threshold, info.Price)
	if err != nil {
		return nil, err
	}

	view := product.View()
	return &view, nil
}

// CheckPrice fetches a fresh price for a URL. If the user tracks a
// matching product its title, price and history are updated and its
// view returned; otherwise the caller gets an ephemeral, unpersisted
// view so a price can be previewed without committing to tracking.
func (e *Engine) CheckPrice(userID int64, url string) (*models.ProductView, error) {
	info, finalURL, err := e.fetchProduct(url)
	if err != nil {
		return nil, err
	}

	product, err := e.Resolve(userID, finalURL)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return &models.ProductView{
			URL:          urlutil.Canonicalize(finalURL),
			Title:        info.Title,
			CurrentPrice: info.Price,
		}, nil
	}

	if err := e.store.RecordCheck(product.ID, info.Title, info.Price); err != nil {
		return nil, err
	}

	view := product.View()
	view.Title = info.Title
	view.CurrentPrice = info.Price
	return &view, nil
}

// UpdateAllPrices refreshes every active product the user tracks.
// A failed fetch skips that product and leaves it untouched; the
// batch always completes and returns the updated subset.
func (e *Engine) UpdateAllPrices(userID int64) ([]models.ProductView, error) {
	products, err := e.store.ListActive(userID)
	if err != nil {
		return nil, err
	}

	updated := []models.ProductView{}
	for _, product := range products {
		info, _, err := e.fetchProduct(product.URL)
		if err != nil {
			log.Printf("Skipping price update for %s: %v", product.URL, err)
			continue
		}
		if err := e.store.RecordCheck(product.ID, info.Title, info.Price); err != nil {
			log.Printf("Failed to record check for %s: %v", product.URL, err)
			continue
		}

		view := product.View()
		view.Title = info.Title
		view.CurrentPrice = info.Price
		updated = append(updated, view)
	}

	return updated, nil
}

// CheckAndAlert runs one alert cycle over the user's active products.
// Each product is fetched, its observation recorded, and when the
// price is at or below the threshold the user is notified and the
// product deactivated. Deactivation does not depend on delivery
// succeeding: a flaky transport must not cause an alert storm. Fetch
// failures skip the product — a scrape failure is not evidence of a
// price drop and never deactivates anything.
func (e *Engine) CheckAndAlert(userID int64) ([]models.AlertedProduct, error) {
	settings, err := e.settings.Get(userID)
	if err != nil {
		log.Printf("Failed to load notification settings for user %d: %v", userID, err)
		settings = nil
	}

	products, err := e.store.ListActive(userID)
	if err != nil {
		return nil, err
	}

	alerted := []models.AlertedProduct{}
	for _, product := range products {
		info, _, err := e.fetchProduct(product.URL)
		if err != nil {
			log.Printf("Skipping check for %s: %v", product.URL, err)
			continue
		}

		if info.Price > product.Threshold {
			if err := e.store.RecordCheck(product.ID, info.Title, info.Price); err != nil {
				log.Printf("Failed to record check for %s: %v", product.URL, err)
			}
			continue
		}

		log.Printf("Price drop for %s: %.2f <= %.2f", info.Title, info.Price, product.Threshold)
		emailed, messaged := e.notifier.Dispatch(settings, info.Title, product.URL)

		if err := e.store.RecordAlert(product.ID, info.Title, info.Price); err != nil {
			log.Printf("Failed to record alert for %s: %v", product.URL, err)
			continue
		}

		alerted = append(alerted, models.AlertedProduct{
			ProductID: product.ID,
			URL:       product.URL,
			Title:     info.Title,
			Price:     info.Price,
			Threshold: product.Threshold,
			Emailed:   emailed,
			Messaged:  messaged,
		})
	}

	return alerted, nil
}

// GetProducts lists the user's active products.
func (e *Engine) GetProducts(userID int64) ([]models.Product, error) {
	return e.store.ListActive(userID)
}

// RemoveProduct deactivates a product by id. History is kept.
func (e *Engine) RemoveProduct(userID, productID int64) error {
	return e.store.Deactivate(userID, productID)
}

// GetHistory lists observations for the product resolved from url.
func (e *Engine) GetHistory(userID int64, url string, limit int) ([]models.PriceObservation, error) {
	product, err := e.Resolve(userID, url)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, repository.ErrNotFound
	}
	return e.history.List(product.ID, limit)
}

// GetHistoryByID lists observations for the user's product by id.
func (e *Engine) GetHistoryByID(userID, productID int64, limit int) ([]models.PriceObservation, error) {
	product, err := e.store.GetByID(userID, productID)
	if err != nil {
		return nil, err
	}
	return e.history.List(product.ID, limit)
}

// GetStats summarizes the history of the product resolved from url.
func (e *Engine) GetStats(userID int64, url string) (*models.PriceStatistics, error) {
	product, err := e.Resolve(userID, url)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, repository.ErrNotFound
	}
	return e.history.Stats(product)
}

// GetStatsByID summarizes the history of the user's product by id.
func (e *Engine) GetStatsByID(userID, productID int64) (*models.PriceStatistics, error) {
	product, err := e.store.GetByID(userID, productID)
	if err != nil {
		return nil, err
	}
	return e.history.Stats(product)
}

// PurgeHistory deletes the full observation history of the user's
// product by id.
func (e *Engine) PurgeHistory(userID, productID int64) error {
	product, err := e.store.GetByID(userID, productID)
	if err != nil {
		return err
	}
	return e.history.Purge(product.ID)
}

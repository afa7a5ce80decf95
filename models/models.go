package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// User owns tracked products and notification settings.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Product is an Amazon product being watched for a price drop.
// URL is the canonical form (https://<host>/dp/<ASIN>) and is unique
// per user. Title and CurrentPrice stay NULL until the first
// successful fetch.
type Product struct {
	ID           int64           `json:"id" db:"id"`
	UserID       int64           `json:"user_id" db:"user_id"`
	URL          string          `json:"url" db:"url"`
	Title        sql.NullString  `json:"title" db:"title"`
	Threshold    float64         `json:"threshold" db:"threshold"`
	CurrentPrice sql.NullFloat64 `json:"current_price" db:"current_price"`
	IsActive     bool            `json:"is_active" db:"is_active"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// HasPrice returns true if the product has an observed price.
func (p *Product) HasPrice() bool {
	return p.CurrentPrice.Valid
}

// GetCurrentPrice returns the current price as float64, or 0 if NULL.
func (p *Product) GetCurrentPrice() float64 {
	if p.CurrentPrice.Valid {
		return p.CurrentPrice.Float64
	}
	return 0.0
}

// GetTitle returns the title, or "" if NULL.
func (p *Product) GetTitle() string {
	if p.Title.Valid {
		return p.Title.String
	}
	return ""
}

// View converts a persisted product to its API shape.
func (p *Product) View() ProductView {
	return ProductView{
		ID:           p.ID,
		URL:          p.URL,
		Title:        p.GetTitle(),
		Threshold:    p.Threshold,
		CurrentPrice: p.GetCurrentPrice(),
		Tracked:      true,
	}
}

// MarshalJSON renders NULL title/price as JSON null instead of the
// sql.Null* wrapper objects.
func (p *Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		*Alias
		Title        *string  `json:"title"`
		CurrentPrice *float64 `json:"current_price"`
	}{
		Alias:        (*Alias)(p),
		Title:        p.titlePtr(),
		CurrentPrice: p.currentPricePtr(),
	})
}

func (p *Product) titlePtr() *string {
	if p.Title.Valid {
		title := p.Title.String
		return &title
	}
	return nil
}

func (p *Product) currentPricePtr() *float64 {
	if p.CurrentPrice.Valid {
		price := p.CurrentPrice.Float64
		return &price
	}
	return nil
}

// PriceObservation is one append-only price history row.
type PriceObservation struct {
	ID        int64     `json:"id" db:"id"`
	ProductID int64     `json:"product_id" db:"product_id"`
	Price     float64   `json:"price" db:"price"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// NotificationSettings holds the per-user delivery channels. An empty
// field means the channel is disabled, not misconfigured.
type NotificationSettings struct {
	UserID      int64     `json:"user_id" db:"user_id"`
	Email       string    `json:"email" db:"email"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ProductView is the JSON shape returned by tracker operations. For a
// price check on an untracked URL, ID is zero and Tracked is false.
type ProductView struct {
	ID           int64   `json:"id,omitempty"`
	URL          string  `json:"url"`
	Title        string  `json:"title"`
	Threshold    float64 `json:"threshold,omitempty"`
	CurrentPrice float64 `json:"current_price"`
	Tracked      bool    `json:"tracked"`
}

// AlertedProduct reports one threshold crossing from an alert cycle.
type AlertedProduct struct {
	ProductID int64   `json:"product_id"`
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Threshold float64 `json:"threshold"`
	Emailed   bool    `json:"emailed"`
	Messaged  bool    `json:"messaged"`
}

// PriceStatistics summarizes a product's observation history.
type PriceStatistics struct {
	ProductID          int64   `json:"product_id"`
	URL                string  `json:"url"`
	Title              string  `json:"title"`
	Threshold          float64 `json:"threshold"`
	TotalEntries       int     `json:"total_entries"`
	LowestPrice        float64 `json:"lowest_price"`
	HighestPrice       float64 `json:"highest_price"`
	AveragePrice       float64 `json:"average_price"`
	FirstPrice         float64 `json:"first_price"`
	CurrentPrice       float64 `json:"current_price"`
	PriceChange        float64 `json:"price_change"`
	PriceChangePercent float64 `json:"price_change_percent"`
}

// CreateUserRequest is the payload for POST /api/users.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AddProductRequest is the payload for POST /api/products.
type AddProductRequest struct {
	UserID    int64   `json:"user_id"`
	URL       string  `json:"url"`
	Threshold float64 `json:"threshold"`
}

// CheckPriceRequest is the payload for POST /api/products/check.
type CheckPriceRequest struct {
	UserID int64  `json:"user_id"`
	URL    string `json:"url"`
}

// UpdateNotificationsRequest is the payload for PUT /api/notifications.
// Nil fields are left unchanged.
type UpdateNotificationsRequest struct {
	UserID      int64   `json:"user_id"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
}

// SendNotificationRequest is the payload for POST /api/notifications/send.
type SendNotificationRequest struct {
	UserID int64  `json:"user_id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

package repository

import (
	"fmt"

	"pricewatch/database"
	"pricewatch/models"
)

type HistoryRepository struct{}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

// Append inserts one observation. History is append-only; rows are
// only ever bulk-deleted by Purge or the product cascade.
func (r *HistoryRepository) Append(productID int64, price float64) error {
	_, err := database.DB.Exec(
		`INSERT INTO price_history (product_id, price) VALUES ($1, $2)`,
		productID, price,
	)
	if err != nil {
		return fmt.Errorf("failed to add price history: %v", err)
	}
	return nil
}

// List returns observations newest first. limit <= 0 means all.
func (r *HistoryRepository) List(productID int64, limit int) ([]models.PriceObservation, error) {
	query := `
		SELECT id, product_id, price, timestamp
		FROM price_history
		WHERE product_id = $1
		ORDER BY timestamp DESC
	`
	args := []interface{}{productID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %v", err)
	}
	defer rows.Close()

	var entries []models.PriceObservation
	for rows.Next() {
		var entry models.PriceObservation
		if err := rows.Scan(&entry.ID, &entry.ProductID, &entry.Price, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan price history: %v", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Stats computes summary statistics over the product's full history,
// oldest first. Returns ErrNotFound when there is no history yet.
func (r *HistoryRepository) Stats(product *models.Product) (*models.PriceStatistics, error) {
	query := `
		SELECT price
		FROM price_history
		WHERE product_id = $1
		ORDER BY timestamp
	`

	rows, err := database.DB.Query(query, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %v", err)
	}
	defer rows.Close()

	var prices []float64
	for rows.Next() {
		var price float64
		if err := rows.Scan(&price); err != nil {
			return nil, fmt.Errorf("failed to scan price: %v", err)
		}
		prices = append(prices, price)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read price history: %v", err)
	}
	if len(prices) == 0 {
		return nil, ErrNotFound
	}

	lowest, highest, sum := prices[0], prices[0], 0.0
	for _, price := range prices {
		if price < lowest {
			lowest = price
		}
		if price > highest {
			highest = price
		}
		sum += price
	}

	first, current := prices[0], prices[len(prices)-1]
	change := current - first
	changePercent := 0.0
	if first > 0 {
		changePercent = change / first * 100
	}

	return &models.PriceStatistics{
		ProductID:          product.ID,
		URL:                product.URL,
		Title:              product.GetTitle(),
		Threshold:          product.Threshold,
		TotalEntries:       len(prices),
		LowestPrice:        lowest,
		HighestPrice:       highest,
		AveragePrice:       sum / float64(len(prices)),
		FirstPrice:         first,
		CurrentPrice:       current,
		PriceChange:        change,
		PriceChangePercent: changePercent,
	}, nil
}

// Purge bulk-deletes the product's entire history.
func (r *HistoryRepository) Purge(productID int64) error {
	_, err := database.DB.Exec(`DELETE FROM price_history WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("failed to purge price history: %v", err)
	}
	return nil
}

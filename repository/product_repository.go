package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pricewatch/database"
	"pricewatch/models"
)

const productColumns = `id, user_id, url, title, threshold, current_price, is_active, created_at, updated_at`

type ProductRepository struct{}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

func scanProduct(row *sql.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.UserID, &p.URL, &p.Title, &p.Threshold,
		&p.CurrentPrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByURL returns the user's product with exactly this stored URL,
// or (nil, nil) when there is none.
func (r *ProductRepository) FindByURL(userID int64, url string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE user_id = $1 AND url = $2`

	product, err := scanProduct(database.DB.QueryRow(query, userID, url))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product by URL: %v", err)
	}
	return product, nil
}

// FindByASIN returns the user's first product whose stored URL
// contains the ASIN, case-insensitively, or (nil, nil). Last-resort
// match for rows stored with tracking parameters.
func (r *ProductRepository) FindByASIN(userID int64, asin string) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE user_id = $1 AND url ILIKE '%' || $2 || '%'
		ORDER BY id
		LIMIT 1
	`

	product, err := scanProduct(database.DB.QueryRow(query, userID, asin))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product by ASIN: %v", err)
	}
	return product, nil
}

// GetByID returns the user's product or ErrNotFound.
func (r *ProductRepository) GetByID(userID, productID int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND user_id = $2`

	product, err := scanProduct(database.DB.QueryRow(query, productID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %v", err)
	}
	return product, nil
}

// ListActive returns the user's active products, oldest first.
func (r *ProductRepository) ListActive(userID int64) ([]models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE user_id = $1 AND is_active = true
		ORDER BY created_at
	`

	rows, err := database.DB.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active products: %v", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(
			&p.ID, &p.UserID, &p.URL, &p.Title, &p.Threshold,
			&p.CurrentPrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %v", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// Upsert creates or revives the (user, url) product with a fresh
// title, threshold and price, and appends one history row, in a
// single transaction.
func (r *ProductRepository) Upsert(userID int64, url, title string, threshold, price float64) (*models.Product, error) {
	var product *models.Product

	err := database.WithTx(func(tx *sql.Tx) error {
		query := `
			INSERT INTO products (user_id, url, title, threshold, current_price, is_active, updated_at)
			VALUES ($1, $2, $3, $4, $5, true, $6)
			ON CONFLICT (user_id, url) DO UPDATE SET
				title = EXCLUDED.title,
				threshold = EXCLUDED.threshold,
				current_price = EXCLUDED.current_price,
				is_active = true,
				updated_at = EXCLUDED.updated_at
			RETURNING ` + productColumns

		now := time.Now().UTC()
		var p models.Product
		err := tx.QueryRow(query, userID, url, title, threshold, price, now).Scan(
			&p.ID, &p.UserID, &p.URL, &p.Title, &p.Threshold,
			&p.CurrentPrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert product: %v", err)
		}

		if _, err := tx.Exec(
			`INSERT INTO price_history (product_id, price, timestamp) VALUES ($1, $2, $3)`,
			p.ID, price, now,
		); err != nil {
			return fmt.Errorf("failed to add price history: %v", err)
		}

		product = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// RecordCheck refreshes title/price/updated_at and appends one
// history row, atomically.
func (r *ProductRepository) RecordCheck(productID int64, title string, price float64) error {
	return database.WithTx(func(tx *sql.Tx) error {
		now := time.Now().UTC()
		if _, err := tx.Exec(
			`UPDATE products SET title = $2, current_price = $3, updated_at = $4 WHERE id = $1`,
			productID, title, price, now,
		); err != nil {
			return fmt.Errorf("failed to update product price: %v", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO price_history (product_id, price, timestamp) VALUES ($1, $2, $3)`,
			productID, price, now,
		); err != nil {
			return fmt.Errorf("failed to add price history: %v", err)
		}
		return nil
	})
}

// RecordAlert deactivates the product while refreshing its final
// observed price and appending the history row, atomically. Crash
// safety: the price never commits with the active flag stale.
func (r *ProductRepository) RecordAlert(productID int64, title string, price float64) error {
	return database.WithTx(func(tx *sql.Tx) error {
		now := time.Now().UTC()
		if _, err := tx.Exec(
			`UPDATE products SET title = $2, current_price = $3, is_active = false, updated_at = $4 WHERE id = $1`,
			productID, title, price, now,
		); err != nil {
			return fmt.Errorf("failed to deactivate product: %v", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO price_history (product_id, price, timestamp) VALUES ($1, $2, $3)`,
			productID, price, now,
		); err != nil {
			return fmt.Errorf("failed to add price history: %v", err)
		}
		return nil
	})
}

// Deactivate marks the user's product inactive. Returns ErrNotFound
// when the product does not belong to the user.
func (r *ProductRepository) Deactivate(userID, productID int64) error {
	result, err := database.DB.Exec(
		`UPDATE products SET is_active = false, updated_at = $3 WHERE id = $1 AND user_id = $2`,
		productID, userID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate product: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to deactivate product: %v", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

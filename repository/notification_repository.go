package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pricewatch/database"
	"pricewatch/models"
)

type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

// Get returns the user's notification settings. A user without a
// settings row gets empty channels, which simply means nothing is
// configured yet.
func (r *NotificationRepository) Get(userID int64) (*models.NotificationSettings, error) {
	query := `
		SELECT user_id, email, phone_number, created_at, updated_at
		FROM notification_settings
		WHERE user_id = $1
	`

	var settings models.NotificationSettings
	err := database.DB.QueryRow(query, userID).Scan(
		&settings.UserID, &settings.Email, &settings.PhoneNumber,
		&settings.CreatedAt, &settings.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return &models.NotificationSettings{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to get notification settings: %v", err)
	}

	return &settings, nil
}

// Upsert updates the user's channels. Nil fields keep their stored
// value, so email and phone can be set independently.
func (r *NotificationRepository) Upsert(userID int64, email, phoneNumber *string) error {
	query := `
		INSERT INTO notification_settings (user_id, email, phone_number, updated_at)
		VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), $4)
		ON CONFLICT (user_id) DO UPDATE SET
			email = COALESCE($2, notification_settings.email),
			phone_number = COALESCE($3, notification_settings.phone_number),
			updated_at = EXCLUDED.updated_at
	`

	_, err := database.DB.Exec(query, userID, email, phoneNumber, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update notification settings: %v", err)
	}
	return nil
}

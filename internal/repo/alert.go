package repo

import (
	"time"

	"amcwallet/internal/models"
)

func (r *Repository) CreatePriceAlert(alert *models.PriceAlert) error {
	return r.db.Create(alert).Error
}

func (r *Repository) ListPriceAlertsByUser(userID string) ([]models.PriceAlert, error) {
	var alerts []models.PriceAlert
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// ListPendingPriceAlerts returns alerts that have not fired yet.
func (r *Repository) ListPendingPriceAlerts() ([]models.PriceAlert, error) {
	var alerts []models.PriceAlert
	if err := r.db.Where("triggered = ?", false).Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *Repository) MarkPriceAlertTriggered(id int64) error {
	return r.db.Model(&models.PriceAlert{}).Where("id = ?", id).
		Updates(map[string]any{"triggered": true, "updated_at": time.Now()}).Error
}

func (r *Repository) DeletePriceAlert(id int64) error {
	return r.db.Delete(&models.PriceAlert{}, id).Error
}

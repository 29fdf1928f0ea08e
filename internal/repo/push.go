package repo

import (
	"amcwallet/internal/models"

	"gorm.io/gorm/clause"
)

// SavePushSubscription upserts on the endpoint so re-subscribing from
// the same browser does not pile up rows.
func (r *Repository) SavePushSubscription(sub *models.PushSubscription) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(sub).Error
}

func (r *Repository) DeletePushSubscription(endpoint string) error {
	return r.db.Where("endpoint = ?", endpoint).Delete(&models.PushSubscription{}).Error
}

func (r *Repository) ListPushSubscriptionsByUser(userID string) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	if err := r.db.Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

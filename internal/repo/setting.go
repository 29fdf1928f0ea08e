package repo

import (
	"amcwallet/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repository) GetSetting(key string) (string, error) {
	var setting models.AppSetting
	if err := r.db.First(&setting, "key = ?", key).Error; err != nil {
		return "", err
	}
	return setting.Value, nil
}

// GetBoolSetting treats a missing key as false.
func (r *Repository) GetBoolSetting(key string) (bool, error) {
	val, err := r.GetSetting(key)
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "true", nil
}

func (r *Repository) SetSetting(key, value string) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&models.AppSetting{Key: key, Value: value}).Error
}

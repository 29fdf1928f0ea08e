package repo

import (
	"amcwallet/internal/models"
)

func (r *Repository) GetTokenConfig(symbol string) (*models.TokenConfig, error) {
	var config models.TokenConfig
	if err := r.db.First(&config, "symbol = ?", symbol).Error; err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *Repository) ListTokenConfigs() ([]models.TokenConfig, error) {
	var configs []models.TokenConfig
	if err := r.db.Order("symbol ASC").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *Repository) SaveTokenConfig(config *models.TokenConfig) error {
	return r.db.Save(config).Error
}

package repo

import (
	"time"

	"amcwallet/internal/models"
)

// SeedDefaults installs the three tracked token configs and the
// default app settings on first boot. Existing rows are left alone.
func (r *Repository) SeedDefaults() error {
	now := time.Now()
	configs := []models.TokenConfig{
		{
			Symbol:                models.SymbolAMC,
			DisplayName:           "AMC Token",
			CurrentPrice:          2.00,
			BasePrice:             2.00,
			LastUpdatedAt:         now,
			AutoMode:              models.AutoModeNone,
			ChangeRatePercent:     0,
			ChangeIntervalMinutes: 60,
			CycleDirection:        models.CycleDirectionIncrease,
			CycleIncreaseCount:    3,
			CycleCurrentCount:     0,
		},
		{Symbol: models.SymbolBTC, DisplayName: "Bitcoin"},
		{Symbol: models.SymbolETH, DisplayName: "Ethereum"},
	}

	for i := range configs {
		if err := r.db.FirstOrCreate(&configs[i], models.TokenConfig{Symbol: configs[i].Symbol}).Error; err != nil {
			return err
		}
	}

	var existing models.AppSetting
	if err := r.db.FirstOrCreate(&existing, models.AppSetting{Key: models.SettingAutoSwapFund}).Error; err != nil {
		return err
	}
	if existing.Value == "" {
		return r.SetSetting(models.SettingAutoSwapFund, "false")
	}
	return nil
}

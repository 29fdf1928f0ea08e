package repo

import (
	"time"

	"amcwallet/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repository) CreateBalance(b *models.Balance) error {
	return r.db.Create(b).Error
}

func (r *Repository) GetBalance(userID, symbol string) (*models.Balance, error) {
	var balance models.Balance
	if err := r.db.First(&balance, "user_id = ? AND symbol = ?", userID, symbol).Error; err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *Repository) ListBalancesByUser(userID string) ([]models.Balance, error) {
	var balances []models.Balance
	if err := r.db.Where("user_id = ?", userID).Order("symbol ASC").Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// AdjustBalance adds delta to the user's balance for symbol, creating
// the row at zero first when missing. Negative results are the
// caller's to guard against before calling.
func (r *Repository) AdjustBalance(userID, symbol string, delta decimal.Decimal) error {
	var balance models.Balance
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&balance, "user_id = ? AND symbol = ?", userID, symbol).Error
	if err == gorm.ErrRecordNotFound {
		balance = models.Balance{
			UserID: userID,
			Symbol: symbol,
			Amount: decimal.Zero,
		}
		if err := r.db.Create(&balance).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	balance.Amount = balance.Amount.Add(delta)
	balance.UpdatedAt = time.Now()
	return r.db.Save(&balance).Error
}

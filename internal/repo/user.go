package repo

import (
	"amcwallet/internal/models"
)

func (r *Repository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *Repository) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes the user and everything it owns. Balances,
// transactions, alerts, subscriptions and codes follow the account.
func (r *Repository) DeleteUser(id string) error {
	return r.Atomically(func(tx *Repository) error {
		if err := tx.db.Where("user_id = ?", id).Delete(&models.Balance{}).Error; err != nil {
			return err
		}
		if err := tx.db.Where("user_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.db.Where("user_id = ?", id).Delete(&models.PriceAlert{}).Error; err != nil {
			return err
		}
		if err := tx.db.Where("user_id = ?", id).Delete(&models.PushSubscription{}).Error; err != nil {
			return err
		}
		if err := tx.db.Where("user_id = ?", id).Delete(&models.OTPCode{}).Error; err != nil {
			return err
		}
		return tx.db.Delete(&models.User{}, "id = ?", id).Error
	})
}

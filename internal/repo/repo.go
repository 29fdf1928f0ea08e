package repo

import (
	"errors"

	"amcwallet/internal/models"

	"gorm.io/gorm"
)

var ErrNilDatabase = errors.New("database cannot be nil")

type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(
		&models.User{},
		&models.TokenConfig{},
		&models.Balance{},
		&models.Transaction{},
		&models.AppSetting{},
		&models.PriceAlert{},
		&models.PushSubscription{},
		&models.OTPCode{},
	)
}

// Atomically runs fn against a Repository bound to a single database
// transaction. Every read-modify-write balance mutation goes through
// here so concurrent ledger operations cannot lose updates.
func (r *Repository) Atomically(fn func(tx *Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

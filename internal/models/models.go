package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tracked symbols. AMC is the synthetic token whose price is simulated
// by the price engine; BTC and ETH track external market quotes.
const (
	SymbolAMC = "AMC"
	SymbolBTC = "BTC"
	SymbolETH = "ETH"
)

// Drift policies for the synthetic token.
const (
	AutoModeNone     = "none"
	AutoModeIncrease = "increase"
	AutoModeDecrease = "decrease"
	AutoModeCycle    = "cycle"
)

const (
	CycleDirectionIncrease = "increase"
	CycleDirectionDecrease = "decrease"
)

// Transaction types. Send debits the balance; receive and buy credit
// it; swap records the source leg of a conversion.
const (
	TxTypeSend    = "send"
	TxTypeReceive = "receive"
	TxTypeBuy     = "buy"
	TxTypeSwap    = "swap"
)

// Transactions have no pending/failed lifecycle; rows are written
// completed and never mutated.
const TxStatusCompleted = "completed"

// App setting keys.
const SettingAutoSwapFund = "auto_swap_fund"

// Price alert directions.
const (
	AlertDirectionAbove = "above"
	AlertDirectionBelow = "below"
)

// OTP purposes.
const (
	OTPPurposeSeedPhrase   = "seed_phrase"
	OTPPurposeWalletImport = "wallet_import"
)

type User struct {
	ID            string    `json:"id"             gorm:"primaryKey"`
	Email         string    `json:"email"          gorm:"uniqueIndex"`
	Name          string    `json:"name"`
	WalletAddress string    `json:"wallet_address" gorm:"uniqueIndex"`
	SeedPhrase    string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TokenConfig is the per-symbol price state. For market-tracked
// symbols only Symbol, DisplayName and BasePrice are meaningful; the
// drift fields drive the synthetic token.
type TokenConfig struct {
	Symbol                string    `json:"symbol"                  gorm:"primaryKey"`
	DisplayName           string    `json:"display_name"`
	CurrentPrice          float64   `json:"current_price"`
	BasePrice             float64   `json:"base_price"`
	LastUpdatedAt         time.Time `json:"last_updated_at"`
	AutoMode              string    `json:"auto_mode"`
	ChangeRatePercent     float64   `json:"change_rate_percent"`
	ChangeIntervalMinutes int       `json:"change_interval_minutes"`
	CycleDirection        string    `json:"cycle_direction"`
	CycleIncreaseCount    int       `json:"cycle_increase_count"`
	CycleCurrentCount     int       `json:"cycle_current_count"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Balance rows hold exact decimal amounts stored as text. One row per
// user per symbol; Amount never goes negative.
type Balance struct {
	ID        int64           `json:"id"      gorm:"primaryKey"`
	UserID    string          `json:"user_id" gorm:"uniqueIndex:idx_user_symbol"`
	Symbol    string          `json:"symbol"  gorm:"uniqueIndex:idx_user_symbol"`
	Amount    decimal.Decimal `json:"amount"  gorm:"type:text"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Transaction is an append-only movement record. UserID is nil for
// admin-initiated movements not tied to the acting party. Hash is a
// unique opaque identifier, not a cryptographic commitment.
type Transaction struct {
	ID        int64           `json:"id"        gorm:"primaryKey"`
	UserID    *string         `json:"user_id"   gorm:"index"`
	Type      string          `json:"type"      gorm:"index"`
	Amount    decimal.Decimal `json:"amount"    gorm:"type:text"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Hash      string          `json:"hash"      gorm:"uniqueIndex"`
	Date      time.Time       `json:"date"      gorm:"index"`
	CreatedAt time.Time       `json:"created_at"`
}

type AppSetting struct {
	ID    int64  `json:"id"    gorm:"primaryKey"`
	Key   string `json:"key"   gorm:"uniqueIndex"`
	Value string `json:"value"`
}

type PriceAlert struct {
	ID          int64     `json:"id"           gorm:"primaryKey"`
	UserID      string    `json:"user_id"      gorm:"index"`
	Symbol      string    `json:"symbol"       gorm:"index"`
	Direction   string    `json:"direction"` // "above" or "below"
	TargetPrice float64   `json:"target_price"`
	Triggered   bool      `json:"triggered"    gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PushSubscription struct {
	ID        int64     `json:"id"       gorm:"primaryKey"`
	UserID    string    `json:"user_id"  gorm:"index"`
	Endpoint  string    `json:"endpoint" gorm:"uniqueIndex"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}

// OTPCode is a time-boxed single-use code gating seed-phrase view and
// wallet import.
type OTPCode struct {
	ID        int64     `json:"id"         gorm:"primaryKey"`
	UserID    string    `json:"user_id"    gorm:"index"`
	Code      string    `json:"-"`
	Purpose   string    `json:"purpose"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (TokenConfig) TableName() string {
	return "token_configs"
}

func (Balance) TableName() string {
	return "balances"
}

func (Transaction) TableName() string {
	return "transactions"
}

func (AppSetting) TableName() string {
	return "app_settings"
}

func (PriceAlert) TableName() string {
	return "price_alerts"
}

func (PushSubscription) TableName() string {
	return "push_subscriptions"
}

func (OTPCode) TableName() string {
	return "otp_codes"
}

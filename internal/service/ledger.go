package service

import (
	"log/slog"
	"strings"

	"amcwallet/internal/models"
	"amcwallet/internal/repo"
	"amcwallet/pkg/clock"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidLedgerConfig = errors.New("invalid ledger config")

	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrUserNotFound        = errors.New("user not found")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrPriceUnavailable    = errors.New("price unavailable")
	// ErrRestrictedSwap is the one-way policy: the synthetic token
	// cannot be swapped back out.
	ErrRestrictedSwap = errors.New("this token cannot be swapped")
)

// PriceSource is what the ledger needs from the price engine.
type PriceSource interface {
	Prices() (map[string]PriceQuote, error)
}

// Ledger validates and executes balance transfers: funding, swaps and
// manual admin movements. Every successful operation appends exactly
// one transaction record whose amount and currency describe the source
// leg, and runs its balance mutations inside a single database
// transaction.
type Ledger struct {
	logger *slog.Logger
	repo   *repo.Repository
	prices PriceSource
	clock  clock.Clock
}

type LedgerOption func(*Ledger)

func WithLedgerLogger(l *slog.Logger) LedgerOption {
	return func(s *Ledger) {
		s.logger = l
	}
}

func WithLedgerRepo(r *repo.Repository) LedgerOption {
	return func(s *Ledger) {
		s.repo = r
	}
}

func WithLedgerPrices(p PriceSource) LedgerOption {
	return func(s *Ledger) {
		s.prices = p
	}
}

func WithLedgerClock(c clock.Clock) LedgerOption {
	return func(s *Ledger) {
		s.clock = c
	}
}

func (s *Ledger) IsValid() error {
	switch {
	case s.logger == nil:
		return errors.Wrap(ErrInvalidLedgerConfig, "logger cannot be nil")
	case s.repo == nil:
		return errors.Wrap(ErrInvalidLedgerConfig, "repo cannot be nil")
	case s.prices == nil:
		return errors.Wrap(ErrInvalidLedgerConfig, "prices cannot be nil")
	case s.clock == nil:
		return errors.Wrap(ErrInvalidLedgerConfig, "clock cannot be nil")
	default:
		return nil
	}
}

func NewLedger(opts ...LedgerOption) (*Ledger, error) {
	s := &Ledger{
		clock: clock.New(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.IsValid(); err != nil {
		return nil, err
	}
	return s, nil
}

type FundResult struct {
	Success          bool                `json:"success"`
	Transaction      *models.Transaction `json:"transaction"`
	Swapped          bool                `json:"swapped"`
	OriginalCurrency string              `json:"originalCurrency"`
	OriginalAmount   decimal.Decimal     `json:"originalAmount"`
	FinalCurrency    string              `json:"finalCurrency"`
	FinalAmount      decimal.Decimal     `json:"finalAmount"`
}

type SwapResult struct {
	Success     bool                `json:"success"`
	Transaction *models.Transaction `json:"transaction"`
	Received    decimal.Decimal     `json:"received"`
}

// Fund credits amount of symbol to the user. With the auto-swap
// setting on, funding in a market-tracked symbol is converted into the
// synthetic token at current prices; when either price is missing the
// swap is abandoned and the credit lands in the original symbol.
func (s *Ledger) Fund(userID, symbol string, amount decimal.Decimal) (*FundResult, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	user, err := s.repo.GetUserByID(userID)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user")
	}

	if _, err := s.repo.GetTokenConfig(symbol); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAssetNotFound
		}
		return nil, errors.Wrap(err, "failed to load token config")
	}

	autoSwap, err := s.repo.GetBoolSetting(models.SettingAutoSwapFund)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read auto-swap setting")
	}

	finalSymbol := symbol
	finalAmount := amount
	swapped := false

	if autoSwap && symbol != models.SymbolAMC {
		from, amc, priceErr := s.pricePair(symbol, models.SymbolAMC)
		if priceErr != nil {
			// documented fallback: abandon the swap, credit directly
			s.logger.Warn("auto-swap fell back to direct credit",
				"user", userID, "symbol", symbol, "error", priceErr)
		} else {
			// conversion stays in decimal so funding 0.1 BTC at
			// 50000/2 lands exactly 2500 AMC
			finalAmount = amount.Mul(decimal.NewFromFloat(from)).Div(decimal.NewFromFloat(amc))
			finalSymbol = models.SymbolAMC
			swapped = true
		}
	}

	txType := models.TxTypeReceive
	if swapped {
		txType = models.TxTypeSwap
	}

	tx := &models.Transaction{
		UserID:   &user.ID,
		Type:     txType,
		Amount:   amount, // source leg
		Currency: symbol,
		Status:   models.TxStatusCompleted,
		From:     "funding",
		To:       user.WalletAddress,
		Hash:     newTxHash(),
		Date:     s.clock.Now(),
	}

	err = s.repo.Atomically(func(r *repo.Repository) error {
		if err := r.AdjustBalance(userID, finalSymbol, finalAmount); err != nil {
			return err
		}
		return r.CreateTransaction(tx)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to apply funding")
	}

	return &FundResult{
		Success:          true,
		Transaction:      tx,
		Swapped:          swapped,
		OriginalCurrency: symbol,
		OriginalAmount:   amount,
		FinalCurrency:    finalSymbol,
		FinalAmount:      finalAmount,
	}, nil
}

// Swap converts amount of fromSymbol into toSymbol at the current
// price ratio. The synthetic token is one-way: swapping out of it is
// rejected with ErrRestrictedSwap regardless of amounts.
func (s *Ledger) Swap(userID, fromSymbol, toSymbol string, amount decimal.Decimal) (*SwapResult, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if fromSymbol == models.SymbolAMC && toSymbol != models.SymbolAMC {
		return nil, ErrRestrictedSwap
	}

	user, err := s.repo.GetUserByID(userID)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user")
	}

	from, to, err := s.pricePair(fromSymbol, toSymbol)
	if err != nil {
		return nil, err
	}

	received := amount.Mul(decimal.NewFromFloat(from)).Div(decimal.NewFromFloat(to))

	tx := &models.Transaction{
		UserID:   &user.ID,
		Type:     models.TxTypeSwap,
		Amount:   amount, // source leg
		Currency: fromSymbol,
		Status:   models.TxStatusCompleted,
		From:     fromSymbol,
		To:       toSymbol,
		Hash:     newTxHash(),
		Date:     s.clock.Now(),
	}

	err = s.repo.Atomically(func(r *repo.Repository) error {
		balance, err := r.GetBalance(userID, fromSymbol)
		if err == gorm.ErrRecordNotFound {
			return ErrAssetNotFound
		}
		if err != nil {
			return err
		}
		if balance.Amount.LessThan(amount) {
			return ErrInsufficientBalance
		}
		if err := r.AdjustBalance(userID, fromSymbol, amount.Neg()); err != nil {
			return err
		}
		if err := r.AdjustBalance(userID, toSymbol, received); err != nil {
			return err
		}
		return r.CreateTransaction(tx)
	})
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) || errors.Is(err, ErrInsufficientBalance) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to apply swap")
	}

	return &SwapResult{Success: true, Transaction: tx, Received: received}, nil
}

// Apply records a manual admin movement, debiting or crediting per the
// transaction type: send debits, receive and buy credit.
func (s *Ledger) Apply(userID, txType, symbol string, amount decimal.Decimal, from, to string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	user, err := s.repo.GetUserByID(userID)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user")
	}

	var delta decimal.Decimal
	switch txType {
	case models.TxTypeSend:
		delta = amount.Neg()
	case models.TxTypeReceive, models.TxTypeBuy:
		delta = amount
	default:
		return nil, errors.Errorf("unsupported transaction type: %s", txType)
	}

	if from == "" {
		from = user.WalletAddress
	}
	if to == "" {
		to = user.WalletAddress
	}

	tx := &models.Transaction{
		UserID:   &user.ID,
		Type:     txType,
		Amount:   amount,
		Currency: symbol,
		Status:   models.TxStatusCompleted,
		From:     from,
		To:       to,
		Hash:     newTxHash(),
		Date:     s.clock.Now(),
	}

	err = s.repo.Atomically(func(r *repo.Repository) error {
		if delta.IsNegative() {
			balance, err := r.GetBalance(userID, symbol)
			if err == gorm.ErrRecordNotFound {
				return ErrAssetNotFound
			}
			if err != nil {
				return err
			}
			if balance.Amount.LessThan(amount) {
				return ErrInsufficientBalance
			}
		}
		if err := r.AdjustBalance(userID, symbol, delta); err != nil {
			return err
		}
		return r.CreateTransaction(tx)
	})
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) || errors.Is(err, ErrInsufficientBalance) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to apply transaction")
	}

	return tx, nil
}

// pricePair resolves both legs or reports ErrPriceUnavailable.
func (s *Ledger) pricePair(fromSymbol, toSymbol string) (float64, float64, error) {
	prices, err := s.prices.Prices()
	if err != nil {
		return 0, 0, errors.Wrap(ErrPriceUnavailable, err.Error())
	}

	from, ok := prices[fromSymbol]
	if !ok || from.Price <= 0 {
		return 0, 0, errors.Wrapf(ErrPriceUnavailable, "no price for %s", fromSymbol)
	}
	to, ok := prices[toSymbol]
	if !ok || to.Price <= 0 {
		return 0, 0, errors.Wrapf(ErrPriceUnavailable, "no price for %s", toSymbol)
	}
	return from.Price, to.Price, nil
}

// newTxHash mints the decorative unique identifier stored on each
// transaction row.
func newTxHash() string {
	return "0x" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

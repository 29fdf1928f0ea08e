package controller

import (
	"crypto/rand"
	"encoding/hex"
	"math"
	"math/big"
	"net/http"
	"strings"
	"time"

	"amcwallet/internal/models"
	"amcwallet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fundRequest struct {
	UserID   string          `json:"user_id"  binding:"required"`
	Currency string          `json:"currency" binding:"required"`
	Amount   decimal.Decimal `json:"amount"   binding:"required"`
}

// Fund godoc
// @Summary Fund a user wallet
// @Description Credit a user, auto-swapping into the synthetic token when enabled
// @Tags admin
// @Accept json
// @Produce json
// @Param funding body fundRequest true "Funding request"
// @Success 200 {object} service.FundResult
// @Failure 400 {object} controller.APIError
// @Failure 404 {object} controller.APIError
// @Router /api/admin/fund [post]
func (c *Controller) Fund(ctx *gin.Context) {
	var req fundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "invalid input", err.Error())
		return
	}

	result, err := c.ledger.Fund(req.UserID, req.Currency, req.Amount)
	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, result)
	case errors.Is(err, service.ErrInvalidAmount):
		badRequest(ctx, "amount must be positive")
	case errors.Is(err, service.ErrUserNotFound):
		notFound(ctx, "user not found")
	case errors.Is(err, service.ErrAssetNotFound):
		notFound(ctx, "asset not found")
	default:
		c.logger.Error("funding failed", "user", req.UserID, "error", err)
		internalError(ctx, "failed to fund wallet")
	}
}

// tokenConfigUpdate carries the admin's partial edit; nil fields keep
// their stored values.
type tokenConfigUpdate struct {
	DisplayName           *string  `json:"display_name"`
	CurrentPrice          *float64 `json:"current_price"`
	BasePrice             *float64 `json:"base_price"`
	AutoMode              *string  `json:"auto_mode"`
	ChangeRatePercent     *float64 `json:"change_rate_percent"`
	ChangeIntervalMinutes *int     `json:"change_interval_minutes"`
	CycleIncreaseCount    *int     `json:"cycle_increase_count"`
	CycleDirection        *string  `json:"cycle_direction"`
	CycleCurrentCount     *int     `json:"cycle_current_count"`
}

func (u *tokenConfigUpdate) validate() error {
	if u.AutoMode != nil {
		switch *u.AutoMode {
		case models.AutoModeNone, models.AutoModeIncrease, models.AutoModeDecrease, models.AutoModeCycle:
		default:
			return errors.Errorf("unknown auto mode: %s", *u.AutoMode)
		}
	}
	if u.CurrentPrice != nil && (*u.CurrentPrice <= 0 || math.IsInf(*u.CurrentPrice, 0) || math.IsNaN(*u.CurrentPrice)) {
		return errors.New("current_price must be positive and finite")
	}
	if u.BasePrice != nil && (*u.BasePrice <= 0 || math.IsInf(*u.BasePrice, 0) || math.IsNaN(*u.BasePrice)) {
		return errors.New("base_price must be positive and finite")
	}
	if u.ChangeRatePercent != nil && (*u.ChangeRatePercent <= 0 || math.IsNaN(*u.ChangeRatePercent)) {
		return errors.New("change_rate_percent must be positive")
	}
	if u.ChangeIntervalMinutes != nil && *u.ChangeIntervalMinutes <= 0 {
		return errors.New("change_interval_minutes must be positive")
	}
	if u.CycleIncreaseCount != nil && *u.CycleIncreaseCount < 1 {
		return errors.New("cycle_increase_count must be at least 1")
	}
	if u.CycleDirection != nil {
		switch *u.CycleDirection {
		case models.CycleDirectionIncrease, models.CycleDirectionDecrease:
		default:
			return errors.Errorf("unknown cycle direction: %s", *u.CycleDirection)
		}
	}
	if u.CycleCurrentCount != nil && *u.CycleCurrentCount < 0 {
		return errors.New("cycle_current_count cannot be negative")
	}
	return nil
}

// UpdateTokenConfig godoc
// @Summary Update the synthetic token simulation
// @Description Partial update of the synthetic token's price simulation; omitted fields are unchanged
// @Tags admin
// @Accept json
// @Produce json
// @Param symbol path string true "Token symbol (AMC)"
// @Param config body tokenConfigUpdate true "Fields to change"
// @Success 200 {object} models.TokenConfig
// @Failure 400 {object} controller.APIError
// @Failure 404 {object} controller.APIError
// @Router /api/admin/token-configs/{symbol} [put]
func (c *Controller) UpdateTokenConfig(ctx *gin.Context) {
	symbol := ctx.Param("symbol")

	config, err := c.repo.GetTokenConfig(symbol)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(ctx, "token not found")
			return
		}
		internalError(ctx, "failed to load token config")
		return
	}

	if symbol != models.SymbolAMC {
		badRequest(ctx, "only the synthetic token is configurable")
		return
	}

	var update tokenConfigUpdate
	if err := ctx.ShouldBindJSON(&update); err != nil {
		badRequestWithDetails(ctx, "invalid input", err.Error())
		return
	}
	if err := update.validate(); err != nil {
		badRequest(ctx, err.Error())
		return
	}

	if update.DisplayName != nil {
		config.DisplayName = *update.DisplayName
	}
	if update.CurrentPrice != nil {
		config.CurrentPrice = *update.CurrentPrice
	}
	if update.BasePrice != nil {
		config.BasePrice = *update.BasePrice
	}
	if update.ChangeRatePercent != nil {
		config.ChangeRatePercent = *update.ChangeRatePercent
	}
	if update.ChangeIntervalMinutes != nil {
		config.ChangeIntervalMinutes = *update.ChangeIntervalMinutes
	}
	if update.CycleIncreaseCount != nil {
		config.CycleIncreaseCount = *update.CycleIncreaseCount
	}
	if update.AutoMode != nil && *update.AutoMode != config.AutoMode {
		config.AutoMode = *update.AutoMode
		config.CycleDirection = models.CycleDirectionIncrease
		config.CycleCurrentCount = 0
	}
	// explicit cycle fields win over the mode-change reset
	if update.CycleDirection != nil {
		config.CycleDirection = *update.CycleDirection
	}
	if update.CycleCurrentCount != nil {
		config.CycleCurrentCount = *update.CycleCurrentCount
	}

	// drift restarts from the moment of the edit
	config.LastUpdatedAt = time.Now()

	if err := c.repo.SaveTokenConfig(config); err != nil {
		internalError(ctx, "failed to save token config")
		return
	}

	ctx.JSON(http.StatusOK, config)
}

// ListTokenConfigs godoc
// @Summary List token configurations
// @Tags admin
// @Produce json
// @Success 200 {array} models.TokenConfig
// @Router /api/admin/token-configs [get]
func (c *Controller) ListTokenConfigs(ctx *gin.Context) {
	configs, err := c.repo.ListTokenConfigs()
	if err != nil {
		internalError(ctx, "failed to fetch token configs")
		return
	}
	ctx.JSON(http.StatusOK, configs)
}

// GetAppSettings godoc
// @Summary Read app settings
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /api/admin/app-settings [get]
func (c *Controller) GetAppSettings(ctx *gin.Context) {
	autoSwap, err := c.repo.GetBoolSetting(models.SettingAutoSwapFund)
	if err != nil {
		internalError(ctx, "failed to read settings")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{models.SettingAutoSwapFund: autoSwap})
}

type appSettingsUpdate struct {
	AutoSwapFund *bool `json:"auto_swap_fund"`
}

// UpdateAppSettings godoc
// @Summary Update app settings
// @Tags admin
// @Accept json
// @Produce json
// @Param settings body appSettingsUpdate true "Settings to change"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} controller.APIError
// @Router /api/admin/app-settings [put]
func (c *Controller) UpdateAppSettings(ctx *gin.Context) {
	var update appSettingsUpdate
	if err := ctx.ShouldBindJSON(&update); err != nil {
		badRequestWithDetails(ctx, "invalid input", err.Error())
		return
	}

	if update.AutoSwapFund != nil {
		value := "false"
		if *update.AutoSwapFund {
			value = "true"
		}
		if err := c.repo.SetSetting(models.SettingAutoSwapFund, value); err != nil {
			internalError(ctx, "failed to save settings")
			return
		}
	}

	c.GetAppSettings(ctx)
}

type createUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"  binding:"required"`
}

// CreateUser godoc
// @Summary Provision a demo user
// @Description Creates a user with a generated wallet address and seed phrase plus zero balances
// @Tags admin
// @Accept json
// @Produce json
// @Param user body createUserRequest true "User data"
// @Success 201 {object} models.User
// @Failure 400 {object} controller.APIError
// @Router /api/admin/users [post]
func (c *Controller) CreateUser(ctx *gin.Context) {
	var req createUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "invalid input", err.Error())
		return
	}

	if _, err := c.repo.GetUserByEmail(req.Email); err == nil {
		badRequest(ctx, "email already in use")
		return
	}

	user := &models.User{
		ID:            uuid.NewString(),
		Email:         req.Email,
		Name:          req.Name,
		WalletAddress: newWalletAddress(),
		SeedPhrase:    newSeedPhrase(),
	}

	if err := c.repo.CreateUser(user); err != nil {
		internalError(ctx, "failed to create user")
		return
	}

	for _, symbol := range []string{models.SymbolAMC, models.SymbolBTC, models.SymbolETH} {
		if err := c.repo.CreateBalance(&models.Balance{
			UserID: user.ID,
			Symbol: symbol,
			Amount: decimal.Zero,
		}); err != nil {
			c.logger.Error("failed to seed balance", "user", user.ID, "symbol", symbol, "error", err)
		}
	}

	ctx.JSON(http.StatusCreated, user)
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Success 200 {array} models.User
// @Router /api/admin/users [get]
func (c *Controller) ListUsers(ctx *gin.Context) {
	users, err := c.repo.ListUsers()
	if err != nil {
		internalError(ctx, "failed to fetch users")
		return
	}
	ctx.JSON(http.StatusOK, users)
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Removes the user and cascades to balances, transactions, alerts and subscriptions
// @Tags admin
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} controller.APIError
// @Router /api/admin/users/{id} [delete]
func (c *Controller) DeleteUser(ctx *gin.Context) {
	id := ctx.Param("id")

	if _, err := c.repo.GetUserByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(ctx, "user not found")
			return
		}
		internalError(ctx, "failed to load user")
		return
	}

	if err := c.repo.DeleteUser(id); err != nil {
		internalError(ctx, "failed to delete user")
		return
	}

	ctx.Status(http.StatusNoContent)
}

type manualTransactionRequest struct {
	UserID   string          `json:"user_id"  binding:"required"`
	Type     string          `json:"type"     binding:"required"`
	Currency string          `json:"currency" binding:"required"`
	Amount   decimal.Decimal `json:"amount"   binding:"required"`
	From     string          `json:"from"`
	To       string          `json:"to"`
}

// CreateTransaction godoc
// @Summary Record a manual transaction
// @Description Applies a send/receive/buy movement to the user's balance
// @Tags admin
// @Accept json
// @Produce json
// @Param transaction body manualTransactionRequest true "Transaction data"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} controller.APIError
// @Failure 404 {object} controller.APIError
// @Router /api/admin/transactions [post]
func (c *Controller) CreateTransaction(ctx *gin.Context) {
	var req manualTransactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "invalid input", err.Error())
		return
	}

	tx, err := c.ledger.Apply(req.UserID, req.Type, req.Currency, req.Amount, req.From, req.To)
	switch {
	case err == nil:
		ctx.JSON(http.StatusCreated, tx)
	case errors.Is(err, service.ErrInvalidAmount):
		badRequest(ctx, "amount must be positive")
	case errors.Is(err, service.ErrUserNotFound):
		notFound(ctx, "user not found")
	case errors.Is(err, service.ErrAssetNotFound):
		notFound(ctx, "asset not found")
	case errors.Is(err, service.ErrInsufficientBalance):
		badRequest(ctx, "insufficient balance")
	default:
		badRequest(ctx, err.Error())
	}
}

// seedWords is a deliberately small demo vocabulary; the generated
// phrases are opaque strings, not real key material.
var seedWords = []string{
	"amber", "basin", "cedar", "delta", "ember", "fable", "gleam", "harbor",
	"indigo", "juniper", "kestrel", "lumen", "meadow", "nectar", "onyx",
	"pebble", "quartz", "raven", "saffron", "timber", "umber", "velvet",
	"willow", "zephyr",
}

func newWalletAddress() string {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "0x" + strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return "0x" + hex.EncodeToString(buf)
}

func newSeedPhrase() string {
	words := make([]string, 12)
	for i := range words {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(seedWords))))
		if err != nil {
			words[i] = seedWords[i%len(seedWords)]
			continue
		}
		words[i] = seedWords[n.Int64()]
	}
	return strings.Join(words, " ")
}

package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"amcwallet/internal/models"
	"amcwallet/internal/repo"
	"amcwallet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "admin-secret"
)

type stubPrices struct {
	prices map[string]service.PriceQuote
}

func (s *stubPrices) Prices() (map[string]service.PriceQuote, error) {
	return s.prices, nil
}

type stubMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *stubMailer) SendAsync(to, subject, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
}

type ControllerTestSuite struct {
	suite.Suite
	repo   *repo.Repository
	router *gin.Engine
	mailer *stubMailer

	adminCookie *http.Cookie
	createdUser *models.User
	alertID     int64
}

func (s *ControllerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)

	repository, err := repo.New(db)
	s.Require().NoError(err)
	s.Require().NoError(repository.Migrate())
	s.Require().NoError(repository.SeedDefaults())
	s.repo = repository

	prices := &stubPrices{prices: map[string]service.PriceQuote{
		models.SymbolAMC: {Symbol: models.SymbolAMC, Name: "AMC Token", Price: 2},
		models.SymbolBTC: {Symbol: models.SymbolBTC, Name: "Bitcoin", Price: 50000},
		models.SymbolETH: {Symbol: models.SymbolETH, Name: "Ethereum", Price: 3000},
	}}

	ledger, err := service.NewLedger(
		service.WithLedgerLogger(slog.Default()),
		service.WithLedgerRepo(repository),
		service.WithLedgerPrices(prices),
	)
	s.Require().NoError(err)

	s.mailer = &stubMailer{}

	passHash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	s.Require().NoError(err)

	ctrl, err := New(
		WithLogger(slog.Default()),
		WithRepository(repository),
		WithLedger(ledger),
		WithPriceEngine(prices),
		WithMailer(s.mailer),
		WithAdminAuth([]byte("test-secret"), testAdminEmail, string(passHash)),
	)
	s.Require().NoError(err)

	s.router = gin.New()
	api := s.router.Group("/api")

	api.GET("/prices", ctrl.ListPrices)
	api.GET("/prices/:symbol", ctrl.GetPrice)
	api.POST("/swap", ctrl.Swap)
	api.GET("/users/:id/balances", ctrl.ListBalances)
	api.GET("/users/:id/transactions", ctrl.ListTransactions)
	api.GET("/users/:id/alerts", ctrl.ListAlerts)
	api.POST("/alerts", ctrl.CreateAlert)
	api.DELETE("/alerts/:id", ctrl.DeleteAlert)
	api.POST("/otp/request", ctrl.RequestOTP)
	api.POST("/otp/verify", ctrl.VerifyOTP)
	api.POST("/push/subscribe", ctrl.SubscribePush)
	api.DELETE("/push/subscribe", ctrl.UnsubscribePush)

	admin := api.Group("/admin")
	admin.POST("/login", ctrl.AdminLogin)
	admin.POST("/logout", ctrl.AdminLogout)

	protected := admin.Group("")
	protected.Use(ctrl.RequireAdmin())
	protected.POST("/fund", ctrl.Fund)
	protected.GET("/token-configs", ctrl.ListTokenConfigs)
	protected.PUT("/token-configs/:symbol", ctrl.UpdateTokenConfig)
	protected.GET("/app-settings", ctrl.GetAppSettings)
	protected.PUT("/app-settings", ctrl.UpdateAppSettings)
	protected.POST("/users", ctrl.CreateUser)
	protected.GET("/users", ctrl.ListUsers)
	protected.DELETE("/users/:id", ctrl.DeleteUser)
	protected.POST("/transactions", ctrl.CreateTransaction)
}

func (s *ControllerTestSuite) request(method, path string, payload any, admin bool) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		s.Require().NoError(err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		s.Require().NotNil(s.adminCookie, "admin session not established")
		req.AddCookie(s.adminCookie)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// Prices

func (s *ControllerTestSuite) Test01_Prices_List() {
	w := s.request(http.MethodGet, "/api/prices", nil, false)
	s.Equal(http.StatusOK, w.Code)

	var prices map[string]service.PriceQuote
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &prices))
	s.Len(prices, 3)
	s.Equal(2.0, prices[models.SymbolAMC].Price)
}

func (s *ControllerTestSuite) Test02_Prices_GetBySymbol() {
	w := s.request(http.MethodGet, "/api/prices/BTC", nil, false)
	s.Equal(http.StatusOK, w.Code)

	var quote service.PriceQuote
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &quote))
	s.Equal(50000.0, quote.Price)
}

func (s *ControllerTestSuite) Test03_Prices_UnknownSymbol() {
	w := s.request(http.MethodGet, "/api/prices/DOGE", nil, false)
	s.Equal(http.StatusNotFound, w.Code)
}

// Admin auth

func (s *ControllerTestSuite) Test10_Admin_LoginBadCredentials() {
	w := s.request(http.MethodPost, "/api/admin/login",
		gin.H{"email": testAdminEmail, "password": "wrong"}, false)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *ControllerTestSuite) Test11_Admin_ProtectedWithoutSession() {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *ControllerTestSuite) Test12_Admin_Login() {
	w := s.request(http.MethodPost, "/api/admin/login",
		gin.H{"email": testAdminEmail, "password": testAdminPassword}, false)
	s.Require().Equal(http.StatusOK, w.Code)

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == adminCookieName {
			s.adminCookie = cookie
		}
	}
	s.Require().NotNil(s.adminCookie)
}

// Users

func (s *ControllerTestSuite) Test20_Admin_CreateUser() {
	w := s.request(http.MethodPost, "/api/admin/users",
		gin.H{"email": "demo@example.com", "name": "Demo User"}, true)
	s.Require().Equal(http.StatusCreated, w.Code)

	var user models.User
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &user))
	s.NotEmpty(user.ID)
	s.True(len(user.WalletAddress) > 2 && user.WalletAddress[:2] == "0x")
	s.createdUser = &user

	balances, err := s.repo.ListBalancesByUser(user.ID)
	s.Require().NoError(err)
	s.Len(balances, 3)
	for _, b := range balances {
		s.True(b.Amount.IsZero())
	}
}

func (s *ControllerTestSuite) Test21_Admin_CreateUserDuplicateEmail() {
	w := s.request(http.MethodPost, "/api/admin/users",
		gin.H{"email": "demo@example.com", "name": "Other"}, true)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ControllerTestSuite) Test22_Admin_ListUsers() {
	w := s.request(http.MethodGet, "/api/admin/users", nil, true)
	s.Equal(http.StatusOK, w.Code)

	var users []models.User
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &users))
	s.Len(users, 1)
}

// Token config

func (s *ControllerTestSuite) Test30_Admin_UpdateTokenConfigPartial() {
	rate := 10.0
	mode := models.AutoModeCycle
	w := s.request(http.MethodPut, "/api/admin/token-configs/AMC",
		gin.H{"auto_mode": mode, "change_rate_percent": rate}, true)
	s.Require().Equal(http.StatusOK, w.Code)

	var config models.TokenConfig
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &config))
	s.Equal(mode, config.AutoMode)
	s.Equal(rate, config.ChangeRatePercent)
	// untouched fields keep their seeded values
	s.Equal(2.0, config.CurrentPrice)
	s.Equal(60, config.ChangeIntervalMinutes)
}

func (s *ControllerTestSuite) Test31_Admin_UpdateTokenConfigMarketSymbol() {
	w := s.request(http.MethodPut, "/api/admin/token-configs/BTC",
		gin.H{"change_rate_percent": 5.0}, true)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ControllerTestSuite) Test32_Admin_UpdateTokenConfigUnknownSymbol() {
	w := s.request(http.MethodPut, "/api/admin/token-configs/DOGE",
		gin.H{"change_rate_percent": 5.0}, true)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ControllerTestSuite) Test33_Admin_UpdateTokenConfigInvalidMode() {
	w := s.request(http.MethodPut, "/api/admin/token-configs/AMC",
		gin.H{"auto_mode": "chaotic"}, true)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ControllerTestSuite) Test34_Admin_UpdateTokenConfigCycleFields() {
	w := s.request(http.MethodPut, "/api/admin/token-configs/AMC",
		gin.H{"cycle_direction": "decrease", "cycle_current_count": 2}, true)
	s.Require().Equal(http.StatusOK, w.Code)

	var config models.TokenConfig
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &config))
	s.Equal(models.CycleDirectionDecrease, config.CycleDirection)
	s.Equal(2, config.CycleCurrentCount)

	w = s.request(http.MethodPut, "/api/admin/token-configs/AMC",
		gin.H{"cycle_direction": "sideways"}, true)
	s.Equal(http.StatusBadRequest, w.Code)
}

// Settings

func (s *ControllerTestSuite) Test40_Admin_AppSettingsDefault() {
	w := s.request(http.MethodGet, "/api/admin/app-settings", nil, true)
	s.Equal(http.StatusOK, w.Code)

	var settings map[string]bool
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &settings))
	s.False(settings[models.SettingAutoSwapFund])
}

func (s *ControllerTestSuite) Test41_Admin_AppSettingsUpdate() {
	w := s.request(http.MethodPut, "/api/admin/app-settings",
		gin.H{"auto_swap_fund": true}, true)
	s.Equal(http.StatusOK, w.Code)

	var settings map[string]bool
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &settings))
	s.True(settings[models.SettingAutoSwapFund])
}

// Funding and swapping

func (s *ControllerTestSuite) Test50_Admin_FundAutoSwaps() {
	s.Require().NotNil(s.createdUser)

	w := s.request(http.MethodPost, "/api/admin/fund",
		gin.H{"user_id": s.createdUser.ID, "currency": "BTC", "amount": "0.1"}, true)
	s.Require().Equal(http.StatusOK, w.Code)

	var result service.FundResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.True(result.Success)
	s.True(result.Swapped)
	s.Equal(models.SymbolAMC, result.FinalCurrency)
	s.True(result.FinalAmount.Equal(decimal.NewFromInt(2500)))
}

func (s *ControllerTestSuite) Test51_Admin_FundDirect() {
	// auto-swap back off, then fund BTC directly for the swap tests
	w := s.request(http.MethodPut, "/api/admin/app-settings",
		gin.H{"auto_swap_fund": false}, true)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodPost, "/api/admin/fund",
		gin.H{"user_id": s.createdUser.ID, "currency": "BTC", "amount": "0.5"}, true)
	s.Require().Equal(http.StatusOK, w.Code)

	var result service.FundResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.False(result.Swapped)
	s.Equal(models.SymbolBTC, result.FinalCurrency)
}

func (s *ControllerTestSuite) Test52_Swap() {
	w := s.request(http.MethodPost, "/api/swap",
		gin.H{"user_id": s.createdUser.ID, "from": "BTC", "to": "ETH", "amount": "0.3"}, false)
	s.Require().Equal(http.StatusOK, w.Code)

	var result service.SwapResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.True(result.Success)
	s.True(result.Received.Equal(decimal.NewFromInt(5)), "got %s", result.Received)
}

func (s *ControllerTestSuite) Test53_Swap_RestrictedFromSynthetic() {
	w := s.request(http.MethodPost, "/api/swap",
		gin.H{"user_id": s.createdUser.ID, "from": "AMC", "to": "BTC", "amount": "1"}, false)
	s.Require().Equal(http.StatusForbidden, w.Code)

	var apiErr APIError
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &apiErr))
	s.True(apiErr.Restricted)
}

func (s *ControllerTestSuite) Test54_Swap_InsufficientBalance() {
	w := s.request(http.MethodPost, "/api/swap",
		gin.H{"user_id": s.createdUser.ID, "from": "ETH", "to": "BTC", "amount": "1000"}, false)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ControllerTestSuite) Test55_Balances() {
	w := s.request(http.MethodGet, fmt.Sprintf("/api/users/%s/balances", s.createdUser.ID), nil, false)
	s.Require().Equal(http.StatusOK, w.Code)

	var balances []models.Balance
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &balances))

	bySymbol := make(map[string]decimal.Decimal)
	for _, b := range balances {
		bySymbol[b.Symbol] = b.Amount
	}
	s.True(bySymbol[models.SymbolAMC].Equal(decimal.NewFromInt(2500)))
	s.True(bySymbol[models.SymbolBTC].Equal(decimal.RequireFromString("0.2")))
	s.True(bySymbol[models.SymbolETH].Equal(decimal.NewFromInt(5)))
}

func (s *ControllerTestSuite) Test56_Transactions() {
	w := s.request(http.MethodGet, fmt.Sprintf("/api/users/%s/transactions", s.createdUser.ID), nil, false)
	s.Require().Equal(http.StatusOK, w.Code)

	var result repo.TransactionListResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	// auto-swap fund, direct fund, one swap
	s.EqualValues(3, result.Total)
}

func (s *ControllerTestSuite) Test57_Transactions_TypeFilter() {
	w := s.request(http.MethodGet,
		fmt.Sprintf("/api/users/%s/transactions?type=swap", s.createdUser.ID), nil, false)
	s.Require().Equal(http.StatusOK, w.Code)

	var result repo.TransactionListResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.EqualValues(2, result.Total)
	for _, tx := range result.Transactions {
		s.Equal(models.TxTypeSwap, tx.Type)
	}
}

func (s *ControllerTestSuite) Test58_Admin_ManualTransaction() {
	w := s.request(http.MethodPost, "/api/admin/transactions",
		gin.H{"user_id": s.createdUser.ID, "type": "send", "currency": "ETH", "amount": "2"}, true)
	s.Require().Equal(http.StatusCreated, w.Code)

	balance, err := s.repo.GetBalance(s.createdUser.ID, models.SymbolETH)
	s.Require().NoError(err)
	s.True(balance.Amount.Equal(decimal.NewFromInt(3)))
}

func (s *ControllerTestSuite) Test59_Admin_FundUnknownCurrency() {
	w := s.request(http.MethodPost, "/api/admin/fund",
		gin.H{"user_id": s.createdUser.ID, "currency": "DOGE", "amount": "1"}, true)
	s.Equal(http.StatusNotFound, w.Code)
}

// Alerts

func (s *ControllerTestSuite) Test60_Alert_Create() {
	w := s.request(http.MethodPost, "/api/alerts",
		gin.H{"user_id": s.createdUser.ID, "symbol": "BTC", "direction": "above", "target_price": 60000.0}, false)
	s.Require().Equal(http.StatusCreated, w.Code)

	var alert models.PriceAlert
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &alert))
	s.NotZero(alert.ID)
	s.alertID = alert.ID
}

func (s *ControllerTestSuite) Test61_Alert_BadDirection() {
	w := s.request(http.MethodPost, "/api/alerts",
		gin.H{"user_id": s.createdUser.ID, "symbol": "BTC", "direction": "sideways", "target_price": 1.0}, false)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ControllerTestSuite) Test62_Alert_ListAndDelete() {
	w := s.request(http.MethodGet, fmt.Sprintf("/api/users/%s/alerts", s.createdUser.ID), nil, false)
	s.Require().Equal(http.StatusOK, w.Code)

	var alerts []models.PriceAlert
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &alerts))
	s.Len(alerts, 1)

	w = s.request(http.MethodDelete, fmt.Sprintf("/api/alerts/%d", s.alertID), nil, false)
	s.Equal(http.StatusNoContent, w.Code)
}

// OTP

func (s *ControllerTestSuite) Test70_OTP_RequestSendsMail() {
	w := s.request(http.MethodPost, "/api/otp/request",
		gin.H{"user_id": s.createdUser.ID, "purpose": "seed_phrase"}, false)
	s.Require().Equal(http.StatusAccepted, w.Code)
	s.Contains(s.mailer.sent, "demo@example.com")
}

func (s *ControllerTestSuite) Test71_OTP_VerifyRevealsSeedPhrase() {
	s.Require().NoError(s.repo.CreateOTPCode(&models.OTPCode{
		UserID:    s.createdUser.ID,
		Code:      "123456",
		Purpose:   models.OTPPurposeSeedPhrase,
		ExpiresAt: time.Now().Add(time.Minute),
	}))

	w := s.request(http.MethodPost, "/api/otp/verify",
		gin.H{"user_id": s.createdUser.ID, "purpose": "seed_phrase", "code": "123456"}, false)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.NotEmpty(resp["seed_phrase"])

	// single use
	w = s.request(http.MethodPost, "/api/otp/verify",
		gin.H{"user_id": s.createdUser.ID, "purpose": "seed_phrase", "code": "123456"}, false)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ControllerTestSuite) Test72_OTP_BadPurpose() {
	w := s.request(http.MethodPost, "/api/otp/request",
		gin.H{"user_id": s.createdUser.ID, "purpose": "password_reset"}, false)
	s.Equal(http.StatusBadRequest, w.Code)
}

// Push

func (s *ControllerTestSuite) Test80_Push_SubscribeAndUnsubscribe() {
	w := s.request(http.MethodPost, "/api/push/subscribe", gin.H{
		"user_id":  s.createdUser.ID,
		"endpoint": "https://push.example/sub",
		"keys":     gin.H{"p256dh": "key", "auth": "secret"},
	}, false)
	s.Require().Equal(http.StatusCreated, w.Code)

	subs, err := s.repo.ListPushSubscriptionsByUser(s.createdUser.ID)
	s.Require().NoError(err)
	s.Len(subs, 1)

	w = s.request(http.MethodDelete, "/api/push/subscribe",
		gin.H{"endpoint": "https://push.example/sub"}, false)
	s.Equal(http.StatusNoContent, w.Code)

	subs, err = s.repo.ListPushSubscriptionsByUser(s.createdUser.ID)
	s.Require().NoError(err)
	s.Empty(subs)
}

// Cleanup

func (s *ControllerTestSuite) Test90_Admin_DeleteUserCascades() {
	w := s.request(http.MethodDelete, "/api/admin/users/"+s.createdUser.ID, nil, true)
	s.Require().Equal(http.StatusNoContent, w.Code)

	balances, err := s.repo.ListBalancesByUser(s.createdUser.ID)
	s.Require().NoError(err)
	s.Empty(balances)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/users/%s/balances", s.createdUser.ID), nil, false)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ControllerTestSuite) Test91_Admin_DeleteUserNotFound() {
	w := s.request(http.MethodDelete, "/api/admin/users/missing", nil, true)
	s.Equal(http.StatusNotFound, w.Code)
}

func TestControllers(t *testing.T) {
	suite.Run(t, new(ControllerTestSuite))
}

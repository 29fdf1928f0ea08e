package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"amcwallet/internal/controller"
	"amcwallet/internal/repo"
	"amcwallet/internal/service"

	"github.com/gin-gonic/gin"
)

var (
	ErrNilEngine       = errors.New("engine is required")
	ErrNilLogger       = errors.New("logger is required")
	ErrNilRepository   = errors.New("repository is required")
	ErrNilLedger       = errors.New("ledger is required")
	ErrNilPriceEngine  = errors.New("price engine is required")
	ErrNilQuoteChannel = errors.New("quote channel is required")
)

type AdminAuth struct {
	JWTSecret    []byte
	Email        string
	PasswordHash string
}

type Handler struct {
	engine      *gin.Engine
	logger      *slog.Logger
	repository  *repo.Repository
	ledger      *service.Ledger
	priceEngine service.PriceSource
	mailer      service.EmailSender
	quoteCh     <-chan []byte
	quoteCHSet  bool
	adminAuth   *AdminAuth
}

func (h *Handler) IsValid() error {
	switch {
	case h.engine == nil:
		return ErrNilEngine
	case h.logger == nil:
		return ErrNilLogger
	case h.repository == nil:
		return ErrNilRepository
	case h.ledger == nil:
		return ErrNilLedger
	case h.priceEngine == nil:
		return ErrNilPriceEngine
	case h.quoteCHSet && h.quoteCh == nil:
		return ErrNilQuoteChannel
	default:
		return nil
	}
}

type Option func(*Handler)

func WithEngine(engine *gin.Engine) Option {
	return func(h *Handler) {
		h.engine = engine
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

func WithRepository(repository *repo.Repository) Option {
	return func(h *Handler) {
		h.repository = repository
	}
}

func WithLedger(l *service.Ledger) Option {
	return func(h *Handler) {
		h.ledger = l
	}
}

func WithPriceEngine(e service.PriceSource) Option {
	return func(h *Handler) {
		h.priceEngine = e
	}
}

func WithMailer(m service.EmailSender) Option {
	return func(h *Handler) {
		h.mailer = m
	}
}

func WithQuoteChannel(ch <-chan []byte) Option {
	return func(h *Handler) {
		h.quoteCh = ch
		h.quoteCHSet = true
	}
}

func WithAdminAuth(auth AdminAuth) Option {
	return func(h *Handler) {
		h.adminAuth = &auth
	}
}

func New(opts ...Option) (*Handler, error) {
	h := &Handler{}
	for _, opt := range opts {
		opt(h)
	}
	if err := h.IsValid(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Handler) Setup() error {
	ctrlOpts := []controller.Option{
		controller.WithLogger(h.logger),
		controller.WithRepository(h.repository),
		controller.WithLedger(h.ledger),
		controller.WithPriceEngine(h.priceEngine),
	}
	if h.mailer != nil {
		ctrlOpts = append(ctrlOpts, controller.WithMailer(h.mailer))
	}
	if h.adminAuth != nil {
		ctrlOpts = append(ctrlOpts, controller.WithAdminAuth(
			h.adminAuth.JWTSecret, h.adminAuth.Email, h.adminAuth.PasswordHash))
	}

	ctrl, err := controller.New(ctrlOpts...)
	if err != nil {
		return err
	}

	h.engine.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := h.engine.Group("/api")

	prices := api.Group("/prices")
	if h.quoteCh != nil {
		prices.GET("/stream", controller.SSEQuotes(h.quoteCh))
	}
	prices.GET("", ctrl.ListPrices)
	prices.GET("/:symbol", ctrl.GetPrice)

	api.POST("/swap", ctrl.Swap)

	users := api.Group("/users")
	users.GET("/:id/balances", ctrl.ListBalances)
	users.GET("/:id/transactions", ctrl.ListTransactions)
	users.GET("/:id/alerts", ctrl.ListAlerts)

	alerts := api.Group("/alerts")
	alerts.POST("", ctrl.CreateAlert)
	alerts.DELETE("/:id", ctrl.DeleteAlert)

	otp := api.Group("/otp")
	otp.POST("/request", ctrl.RequestOTP)
	otp.POST("/verify", ctrl.VerifyOTP)

	pushGroup := api.Group("/push")
	pushGroup.POST("/subscribe", ctrl.SubscribePush)
	pushGroup.DELETE("/subscribe", ctrl.UnsubscribePush)

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

	return nil
}

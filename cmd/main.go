package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"amcwallet/internal/handler"
	"amcwallet/internal/repo"
	"amcwallet/internal/service"
	"amcwallet/pkg/database"
	"amcwallet/pkg/integrations/mailer"
	"amcwallet/pkg/integrations/memcache"
	"amcwallet/pkg/integrations/mempubsub"
	"amcwallet/pkg/integrations/push"
	"amcwallet/pkg/integrations/quotes"
	"amcwallet/pkg/utils"

	"github.com/gin-gonic/gin"
)

// @title AMC Wallet API
// @version 1.0
// @description Demo cryptocurrency wallet backend with a simulated token

// @host localhost:8080
// @BasePath /

func main() {
	utils.LoadEnv()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPath := utils.GetEnv("DB_PATH", "./data/amcwallet.db")
	db, err := database.New(database.WithPath(dbPath))
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	repository, err := repo.New(db.Get())
	if err != nil {
		log.Fatal("Failed to create repository:", err)
	}

	if err := repository.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	if err := repository.SeedDefaults(); err != nil {
		log.Fatal("Failed to seed defaults:", err)
	}

	engine, err := service.NewPriceEngine(
		service.WithPriceEngineLogger(logger),
		service.WithPriceEngineRepo(repository),
		service.WithPriceEngineFetcher(quotes.NewQuoteService()),
	)
	if err != nil {
		log.Fatal("Failed to create price engine:", err)
	}

	ledger, err := service.NewLedger(
		service.WithLedgerLogger(logger),
		service.WithLedgerRepo(repository),
		service.WithLedgerPrices(engine),
	)
	if err != nil {
		log.Fatal("Failed to create ledger:", err)
	}

	var mailSender service.EmailSender
	if host := os.Getenv("SMTP_HOST"); host != "" {
		m, err := mailer.New(
			mailer.WithLogger(logger),
			mailer.WithSMTP(host,
				atoiOr(utils.GetEnv("SMTP_PORT", "587"), 587),
				os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD")),
			mailer.WithFrom(utils.GetEnv("SMTP_FROM", "noreply@amcwallet.local")),
		)
		if err != nil {
			log.Fatal("Failed to create mailer:", err)
		}
		mailSender = m
	} else {
		logger.Warn("SMTP_HOST not set, email delivery disabled")
	}

	var pushSender service.PushNotifier
	if pub := os.Getenv("VAPID_PUBLIC_KEY"); pub != "" {
		p, err := push.New(
			push.WithLogger(logger),
			push.WithVAPIDKeys(pub, os.Getenv("VAPID_PRIVATE_KEY")),
			push.WithSubscriber(utils.GetEnv("VAPID_SUBSCRIBER", "admin@amcwallet.local")),
		)
		if err != nil {
			log.Fatal("Failed to create push sender:", err)
		}
		pushSender = p
	} else {
		logger.Warn("VAPID_PUBLIC_KEY not set, push delivery disabled")
	}

	quoteCache := memcache.New[string, service.PriceQuote]()
	quoteCh := make(chan []byte, 10)
	sseCh := make(chan []byte, 10)
	quotePublisher := mempubsub.New(
		mempubsub.WithChannel(quoteCh),
		mempubsub.WithContext(ctx),
		mempubsub.WithTopic("quotes"),
		mempubsub.WithLogger(logger),
		mempubsub.WithHandler(func(data []byte) error {
			select {
			case sseCh <- data:
			default:
				logger.Warn("sseCh full, dropping message")
			}
			return nil
		}),
	)
	if err := quotePublisher.Subscribe(); err != nil {
		log.Fatal("Failed to start quote subscriber:", err)
	}

	liveQuoteSvc, err := service.NewLiveQuoteService(
		service.WithLiveQuoteContext(ctx),
		service.WithLiveQuoteLogger(logger),
		service.WithLiveQuoteCache(quoteCache),
		service.WithLiveQuoteEngine(engine),
		service.WithLiveQuotePublisher(quotePublisher),
	)
	if err != nil {
		log.Fatal("Failed to create live quote service:", err)
	}

	alertOpts := []service.AlertOption{
		service.WithAlertContext(ctx),
		service.WithAlertLogger(logger),
		service.WithAlertCache(quoteCache),
		service.WithAlertRepo(repository),
	}
	if mailSender != nil {
		alertOpts = append(alertOpts, service.WithAlertMailer(mailSender))
	}
	if pushSender != nil {
		alertOpts = append(alertOpts, service.WithAlertNotifier(pushSender))
	}
	alertSvc, err := service.NewAlertService(alertOpts...)
	if err != nil {
		log.Fatal("Failed to create alert service:", err)
	}

	if err := liveQuoteSvc.Start(); err != nil {
		log.Fatal("Failed to start live quote service:", err)
	}
	if err := alertSvc.Start(); err != nil {
		log.Fatal("Failed to start alert service:", err)
	}

	r := gin.Default()

	handlerOpts := []handler.Option{
		handler.WithEngine(r),
		handler.WithLogger(logger),
		handler.WithRepository(repository),
		handler.WithLedger(ledger),
		handler.WithPriceEngine(engine),
		handler.WithQuoteChannel(sseCh),
	}
	if mailSender != nil {
		handlerOpts = append(handlerOpts, handler.WithMailer(mailSender))
	}
	if secret := os.Getenv("ADMIN_JWT_SECRET"); secret != "" {
		handlerOpts = append(handlerOpts, handler.WithAdminAuth(handler.AdminAuth{
			JWTSecret:    []byte(secret),
			Email:        utils.GetEnv("ADMIN_EMAIL", "admin@amcwallet.local"),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		}))
	} else {
		logger.Warn("ADMIN_JWT_SECRET not set, admin API disabled")
	}

	h, err := handler.New(handlerOpts...)
	if err != nil {
		log.Fatal("Failed to create handler:", err)
	}
	if err := h.Setup(); err != nil {
		log.Fatal("Failed to setup routes:", err)
	}

	port := utils.GetEnv("APP_PORT", "8080")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("shutting down...")
		cancel()
		liveQuoteSvc.Stop()
		alertSvc.Stop()
		os.Exit(0)
	}()

	logger.Info("starting amcwallet", "port", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

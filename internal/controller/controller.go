package controller

import (
	"log/slog"

	"amcwallet/internal/repo"
	"amcwallet/internal/service"
)

type Controller struct {
	logger *slog.Logger
	repo   *repo.Repository
	ledger *service.Ledger
	engine service.PriceSource
	mailer service.EmailSender

	jwtSecret     []byte
	adminEmail    string
	adminPassHash string
}

type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

func WithRepository(r *repo.Repository) Option {
	return func(c *Controller) {
		c.repo = r
	}
}

func WithLedger(l *service.Ledger) Option {
	return func(c *Controller) {
		c.ledger = l
	}
}

func WithPriceEngine(e service.PriceSource) Option {
	return func(c *Controller) {
		c.engine = e
	}
}

func WithMailer(m service.EmailSender) Option {
	return func(c *Controller) {
		c.mailer = m
	}
}

func WithAdminAuth(jwtSecret []byte, email, passwordHash string) Option {
	return func(c *Controller) {
		c.jwtSecret = jwtSecret
		c.adminEmail = email
		c.adminPassHash = passwordHash
	}
}

// IsValid requires the core collaborators; mailer and admin auth stay
// optional so partial deployments still serve the public surface.
func (c *Controller) IsValid() error {
	switch {
	case c.logger == nil:
		return ErrNilLogger
	case c.repo == nil:
		return ErrNilRepository
	case c.ledger == nil:
		return ErrNilLedger
	case c.engine == nil:
		return ErrNilPriceEngine
	default:
		return nil
	}
}

func New(opts ...Option) (*Controller, error) {
	c := &Controller{}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.IsValid(); err != nil {
		return nil, err
	}
	return c, nil
}

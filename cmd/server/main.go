package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/capitalstack/directory/internal/config"
	"github.com/capitalstack/directory/internal/domain"
	"github.com/capitalstack/directory/internal/handler"
	"github.com/capitalstack/directory/internal/metrics"
	appMiddleware "github.com/capitalstack/directory/internal/middleware"
	"github.com/capitalstack/directory/internal/repository"
	"github.com/capitalstack/directory/internal/service"
	"github.com/capitalstack/directory/pkg/notify"
	"github.com/capitalstack/directory/pkg/payment"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

const healthCountsTTL = 30 * time.Second

func main() {
	log := logrus.New()

	if err := config.LoadDotEnv(); err != nil {
		log.WithError(err).Fatal("config error")
	}
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config error")
	}
	configureLogger(log, cfg)

	ctx := context.Background()

	db, err := repository.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database error")
	}
	defer db.Close()

	if err := repository.RunMigrations(ctx, db, log); err != nil {
		log.WithError(err).Fatal("migration error")
	}
	log.Info("database connected and migrated")

	registry := metrics.NewRegistry()
	m := metrics.New(registry)

	catalog := domain.NewCatalog(cfg.Stripe.Prices)

	userRepo := repository.NewUserRepository(db)
	buyerRepo := repository.NewBuyerRepository(db)
	contactRepo := repository.NewContactRepository(db)
	savedRepo := repository.NewSavedRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.AdminEmail, cfg.AdminPassword, userRepo, log)
	if err := authSvc.SeedAdmin(ctx); err != nil {
		log.WithError(err).Fatal("admin seed error")
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.SendGrid.APIKey != "" {
		notifier = notify.NewSendGrid(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.AppURL+"/settings/billing")
	} else {
		log.Info("SENDGRID_API_KEY not set, payment notices disabled")
	}
	if cfg.Stripe.SecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY not set, checkout and portal sessions will fail")
	}
	if cfg.Stripe.WebhookSecret == "" {
		log.Warn("STRIPE_WEBHOOK_SECRET not set, every billing webhook will be rejected")
	}
	gateway := payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)

	billingSvc := service.NewBillingService(gateway, userRepo, catalog, notifier, m, log, cfg.AppURL)
	directorySvc := service.NewDirectoryService(buyerRepo, contactRepo, auditRepo, m, log)
	savedSvc := service.NewSavedService(savedRepo)
	userSvc := service.NewUserService(userRepo, auditRepo)
	systemSvc := service.NewSystemService(statsRepo, healthCountsTTL, log)

	authHandler := handler.NewAuthHandler(authSvc, userSvc)
	userHandler := handler.NewUserHandler(userSvc)
	directoryHandler := handler.NewDirectoryHandler(directorySvc)
	savedHandler := handler.NewSavedHandler(savedSvc)
	billingHandler := handler.NewBillingHandler(billingSvc)
	plansHandler := handler.NewPlansHandler(catalog)
	healthHandler := handler.NewHealthHandler(systemSvc)
	adminHandler := handler.NewAdminHandler(systemSvc, authSvc)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(appMiddleware.Recovery(log))
	r.Use(appMiddleware.Logger(log))
	r.Use(appMiddleware.Metrics(m))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global rate limiter (20 req/sec per IP, burst of 40)
	globalRL := appMiddleware.NewRateLimiter(20, 40)
	r.Use(globalRL.Middleware())

	if cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler(registry))
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/health", healthHandler.Check)
		r.Get("/plans", plansHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.StrictRateLimiter())
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		// Billing provider callbacks, authenticated by signature
		r.Post("/webhooks/stripe", billingHandler.Webhook)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.Auth(authSvc))

			r.Get("/auth/me", authHandler.Me)

			r.Get("/user", userHandler.Profile)
			r.Patch("/user", userHandler.UpdateProfile)
			r.Get("/user/usage", userHandler.Usage)

			r.Get("/buyers", directoryHandler.ListBuyers)
			r.Get("/buyers/export", directoryHandler.ExportBuyers)
			r.Get("/contacts", directoryHandler.ListContacts)
			r.Get("/contacts/export", directoryHandler.ExportContacts)

			r.Get("/saved/buyers", savedHandler.ListBuyers)
			r.Post("/saved/buyers", savedHandler.SaveBuyer)
			r.Get("/saved/contacts", savedHandler.ListContacts)
			r.Post("/saved/contacts", savedHandler.SaveContact)

			r.Post("/billing/checkout", billingHandler.Checkout)
			r.Post("/billing/portal", billingHandler.Portal)

			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.AdminOnly)
				r.Get("/admin/stats", adminHandler.GetStats)
				r.Get("/admin/users", adminHandler.ListUsers)
			})
		})
	})

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Error("shutdown error")
		}
	}()

	log.WithField("addr", addr).Info("CapitalStack directory API listening")
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server error")
	}
}

func configureLogger(log *logrus.Logger, cfg *config.Config) {
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL, using info")
	}
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	// handler.Error logs through the package-level logger.
	logrus.SetLevel(log.GetLevel())
	logrus.SetFormatter(log.Formatter)
}

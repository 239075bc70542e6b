package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/motoescola/backoffice/internal/config"
	"github.com/motoescola/backoffice/internal/infra/auth"
	"github.com/motoescola/backoffice/internal/infra/cache"
	"github.com/motoescola/backoffice/internal/infra/database"
	"github.com/motoescola/backoffice/internal/infra/http/handlers"
	"github.com/motoescola/backoffice/internal/infra/mail"
	"github.com/motoescola/backoffice/internal/infra/queue"
	"github.com/motoescola/backoffice/internal/infra/worker"
	"github.com/motoescola/backoffice/internal/logger"
	"github.com/motoescola/backoffice/internal/usecase"
)

func main() {
	cfg := config.Load()
	logger.Init("leads-api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Logger.Fatalf("❌ Falha ao conectar no Postgres: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Logger.Fatalf("❌ %v", err)
	}

	// 1. Repositórios
	leadRepo := cache.NewCachedLeadRepository(
		database.NewLeadRepository(db),
		cache.NewRedisClient(cfg.RedisURL),
		cfg.CacheTTL,
	)
	historyRepo := database.NewStatusHistoryRepository(db)

	// 2. Fila e e-mail
	mailSender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom, cfg.StaffEmail)

	var (
		publisher usecase.LeadEventPublisher
		broker    *queue.RabbitMQ
	)
	broker, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Logger.Warnf("⚠️ RabbitMQ indisponível, seguindo sem eventos: %v", err)
	} else {
		defer broker.Close()
		publisher = queue.NewPublisher(broker.Ch)

		// canal próprio para o consumidor
		consumerCh, err := broker.Conn.Channel()
		if err != nil {
			logger.Logger.Fatalf("❌ Falha ao abrir canal do worker: %v", err)
		}
		go func() {
			if err := queue.NewWorker(consumerCh, mailSender).Start(ctx, queue.NotificationQueue); err != nil {
				logger.Logger.Errorf("❌ Worker de notificação parou: %v", err)
			}
		}()
	}

	go func() {
		digest := worker.NewStaleLeadWorker(leadRepo, mailSender, cfg.StaleLeadCron, cfg.StaleLeadAfter)
		if err := digest.Start(ctx); err != nil {
			logger.Logger.Errorf("❌ %v", err)
		}
	}()

	// 3. UseCases
	hub := handlers.NewHub(cfg.CORSOrigins)
	defer hub.Close()

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	captureUC := usecase.NewCaptureLeadUseCase(leadRepo, publisher, hub)
	manageUC := usecase.NewManageLeadUseCase(leadRepo, historyRepo, publisher, hub)
	loginUC := usecase.NewLoginUseCase(cfg.AdminUser, cfg.AdminPassword, tokens)

	// 4. Handlers
	limiter := handlers.NewRateLimiter(10, time.Minute) // 10 req/min por IP
	defer limiter.Close()

	health := handlers.NewHealthHandler(db, nil, nil)
	if broker != nil {
		health.RabbitMQ = broker
	}
	if leadRepo.Enabled() {
		health.Cache = leadRepo
	}

	router := handlers.Router{
		Leads:          handlers.NewLeadHandler(captureUC, manageUC, limiter),
		Auth:           handlers.NewAuthHandler(loginUC),
		Health:         health,
		Hub:            hub,
		Tokens:         tokens,
		AllowedOrigins: cfg.CORSOrigins,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Logger.Infof("🔥 Server de leads rodando na porta %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatalf("❌ %v", err)
		}
	}()

	<-ctx.Done()
	logger.Logger.Info("⚠️ Encerrando...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Errorf("❌ Shutdown: %v", err)
	}
}

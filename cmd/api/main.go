package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	httpadp "medquote-backend/internal/adapter/http"
	mw "medquote-backend/internal/adapter/middleware"
	"medquote-backend/internal/adapter/repository/mysql"
	"medquote-backend/internal/config"
	"medquote-backend/internal/infrastructure/cache"
	"medquote-backend/internal/infrastructure/db"
	"medquote-backend/internal/infrastructure/logger"
	"medquote-backend/internal/infrastructure/metrics"
	"medquote-backend/internal/infrastructure/payment"
	"medquote-backend/internal/infrastructure/queue"
	"medquote-backend/internal/usecase/access"
	"medquote-backend/internal/usecase/admin"
	"medquote-backend/internal/usecase/catalog"
	"medquote-backend/internal/usecase/credit"
	"medquote-backend/internal/usecase/notification"
	"medquote-backend/internal/usecase/quotation"
	"medquote-backend/internal/usecase/registration"
	"medquote-backend/internal/usecase/rfq"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(cfg.AppEnv, cfg.LogLevel); err != nil {
		panic(err)
	}
	log := logger.L()
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), gormlogger.Warn)
	if err != nil {
		log.Fatal("mysql", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB, cfg.AutoQuoteWorkers)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	tx := mysql.NewGormUoW(gdb)
	repos := tx.Repos()
	notes := mysql.NewNotificationRepository(gdb)
	settings := mysql.NewSettingRepository(gdb)

	guard := access.NewGuard(repos.Users, repos.Hospitals, repos.Suppliers)
	if err := guard.BootstrapAdmins(ctx, cfg.AdminIdentities); err != nil {
		log.Fatal("bootstrap admins", zap.Error(err))
	}

	notifier := notification.NewDispatcher(repos.Users, notes, notification.LogMailer{})
	jobs := queue.NewRedisQueue(rdb, queue.AutoQuotationKey)

	registrationUC := registration.NewUsecase(tx, guard, registration.Options{
		StartingCredits: cfg.StartingCredits,
		CodeMaxAttempts: cfg.HospitalCodeMaxAttempts,
	})
	rfqUC := rfq.NewUsecase(tx, repos, guard, jobs, notifier)
	quotationUC := quotation.NewUsecase(tx, repos, guard, settings, notifier, quotation.Options{
		LowCreditThreshold: cfg.LowCreditThreshold,
	})
	catalogUC := catalog.NewUsecase(tx, repos, guard)
	creditUC := credit.NewUsecase(tx, repos, guard, settings, payment.NewSimulatedProvider(cfg.CheckoutBaseURL))
	adminUC := admin.NewUsecase(tx, repos, guard, settings, creditUC, jobs, notifier)
	notificationUC := notification.NewUsecase(guard, notes)

	worker := queue.NewWorker(jobs, func(ctx context.Context, rfqID string) error {
		_, err := quotationUC.AutoGenerate(ctx, rfqID)
		return err
	}, cfg.AutoQuoteWorkers, cfg.AutoQuoteMaxAttempts)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal("mysql handle", zap.Error(err))
	}
	handlers := httpadp.Handlers{
		Health: httpadp.NewHandler(
			httpadp.Check{Name: "mysql", Ping: sqlDB.PingContext},
			httpadp.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		),
		Registration: httpadp.NewRegistrationHandler(registrationUC, guard),
		RFQ:          httpadp.NewRFQHandler(rfqUC),
		Quotation:    httpadp.NewQuotationHandler(quotationUC),
		Catalog:      httpadp.NewCatalogHandler(catalogUC),
		Credit:       httpadp.NewCreditHandler(creditUC, cfg.PaymentWebhookSecret),
		Admin:        httpadp.NewAdminHandler(adminUC),
		Notification: httpadp.NewNotificationHandler(notificationUC),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Recover())
	e.Use(mw.RequestID())
	e.Use(logger.Middleware())
	e.Use(metrics.Middleware())
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	httpadp.Register(e, handlers,
		mw.Auth([]byte(cfg.JWTSecret), cfg.JWTIssuer),
		mw.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second),
	)

	go func() {
		addr := ":" + cfg.AppPort
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	<-workerDone
}

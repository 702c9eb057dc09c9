package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/kursadbilgin/cosmos-provisioner/internal/config"
	"github.com/kursadbilgin/cosmos-provisioner/internal/handler"
	"github.com/kursadbilgin/cosmos-provisioner/internal/notifier"
	"github.com/kursadbilgin/cosmos-provisioner/internal/observability"
	"github.com/kursadbilgin/cosmos-provisioner/internal/provisioner"
	"github.com/kursadbilgin/cosmos-provisioner/internal/service"
	"github.com/kursadbilgin/cosmos-provisioner/internal/status"
	"github.com/kursadbilgin/cosmos-provisioner/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		logger.Fatal("azure credential initialization failed", zap.Error(err))
	}

	prov, err := provisioner.NewAzureProvisioner(cred, cfg.AzureSubscriptionID, cfg.AzureResourceGroup, logger)
	if err != nil {
		logger.Fatal("provisioner initialization failed", zap.Error(err))
	}

	sender, err := newSender(cfg)
	if err != nil {
		logger.Fatal("notification sender initialization failed", zap.Error(err))
	}

	notify := notifier.New(sender, cfg.AzureSubscriptionID, cfg.AzureResourceGroup, logger)
	notify.SetMetrics(metrics)

	statuses := status.NewStore()

	orchestrator, err := service.NewOrchestrator(statuses, prov, notify, cfg.WorkerConcurrency, cfg.OperationTimeout, logger)
	if err != nil {
		logger.Fatal("orchestrator initialization failed", zap.Error(err))
	}
	orchestrator.SetMetrics(metrics)

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, orchestrator.Running)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	if err := handler.RegisterAccountRoutes(app, orchestrator); err != nil {
		logger.Fatal("route registration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, groupCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return orchestrator.Start(groupCtx)
	})

	g.Go(func() error {
		logger.Info("cosmos-provisioner api started", zap.Int("port", cfg.APIPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			return fmt.Errorf("http listener failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("service stopped with error", zap.Error(err))
	}
}

func newSender(cfg *config.Config) (notifier.Sender, error) {
	if cfg.NotifierKind == config.NotifierWebhook {
		return notifier.NewWebhookSender(cfg.WebhookNotifyURL)
	}
	return notifier.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.NotifyAddress)
}

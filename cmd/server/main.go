package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pos-agent/config"
	"pos-agent/internal/api"
	"pos-agent/internal/apiclient"
	"pos-agent/internal/auth"
	"pos-agent/internal/broker"
	"pos-agent/internal/csrf"
	"pos-agent/internal/notify"
	"pos-agent/internal/receipt"
	"pos-agent/internal/service"
	"pos-agent/internal/session"
	"pos-agent/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting POS agent", zap.String("api", cfg.API.BaseURL))

	tp, err := util.InitTracer("pos-agent", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	sess, err := session.New(cfg.API.BaseURL, session.Options{
		SessionCookie:        cfg.Auth.SessionCookie,
		CSRFCookie:           cfg.Auth.CSRFCookie,
		CSRFHeader:           cfg.Auth.CSRFHeader,
		AuthFailureThreshold: cfg.Auth.AuthFailureThreshold,
	})
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	var publisher broker.Publisher = broker.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicPOS)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	httpClient := apiclient.NewHTTPClient(sess)
	bootstrap := csrf.NewBootstrap(httpClient, sess)
	navigator := session.NewPendingNavigator()
	client := apiclient.NewClient(httpClient, sess, bootstrap, navigator,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLoginPath(cfg.Auth.LoginPath),
		apiclient.WithSessionEvents(publisher),
	)

	notifications := notify.NewCenter(0)
	formatter := receipt.NewFormatter(receipt.Business{
		Name:    cfg.Receipt.BusinessName,
		Address: cfg.Receipt.BusinessAddress,
		Phone:   cfg.Receipt.BusinessPhone,
	}, cfg.Receipt.Currency, cfg.Receipt.TimeZone)
	renderer := receipt.NewPNGRenderer(cfg.Receipt.Dir, cfg.Receipt.SettleDelay, formatter)

	provider := auth.NewProvider(client, sess, bootstrap, navigator, cfg.Auth.LoginPath)
	inventoryService := service.NewInventoryService(client, notifications)
	orderService := service.NewOrderService(client, renderer, notifications, publisher)
	reportService := service.NewReportService(client, renderer, notifications, cfg.Receipt.Currency)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(api.Deps{
		Provider:      provider,
		Inventory:     inventoryService,
		Orders:        orderService,
		Reports:       reportService,
		Notifications: notifications,
		Navigator:     navigator,
		LoginPath:     cfg.Auth.LoginPath,
	})
	handler.SetupRoutes(router)

	initCtx, initCancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
	state := provider.Initialize(initCtx)
	initCancel()
	logger.Info("Session initialized", zap.String("state", string(state)))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

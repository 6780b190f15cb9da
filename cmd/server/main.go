package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"teleport-backend/internal/config"
	apphttp "teleport-backend/internal/http"
	"teleport-backend/internal/notify"
	"teleport-backend/internal/repository/sqlite"
	"teleport-backend/internal/service"
	"teleport-backend/internal/signaling"
	"teleport-backend/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	tokenRepo := sqlite.NewTokenRepository(db)
	taskRepo := sqlite.NewTaskRepository(db)
	cardRepo := sqlite.NewCardRepository(db)
	chatRepo := sqlite.NewChatRepository(db)

	for name, init := range map[string]func(context.Context) error{
		"users":  userRepo.Init,
		"tokens": tokenRepo.Init,
		"tasks":  taskRepo.Init,
		"cards":  cardRepo.Init,
		"chats":  chatRepo.Init,
	} {
		if err := init(ctx); err != nil {
			logger.Fatalf("init %s repository: %v", name, err)
		}
	}

	dispatcher := notify.NewDispatcher(notify.Config{
		Workers:   cfg.Notify.Workers,
		QueueSize: cfg.Notify.QueueSize,
		Email: notify.NewEmailSender(notify.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			From:     cfg.Mail.From,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
		}),
		SMS:    notify.NewSMSSender(cfg.SMS.From, logger),
		Logger: logger,
	})
	dispatcher.Start(ctx)

	tokenService := service.NewTokenService(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTTLHours)*time.Hour,
	)
	userService := service.NewUserService(userRepo, tokenRepo, tokenService, dispatcher)
	taskService := service.NewTaskService(taskRepo, userRepo)
	cardService := service.NewCardService(cardRepo)
	chatService := service.NewChatService(chatRepo, userRepo)

	relay := signaling.NewRelay(signaling.NewRegistry(), logger)

	storageSvc := buildStorage(ctx, cfg, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		tokenService,
		taskService,
		cardService,
		chatService,
		relay,
		storageSvc,
		cfg.Storage.Bucket,
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	dispatcher.Shutdown()

	logger.Info("bye")
}

// buildStorage returns nil when no bucket is configured; avatar endpoints
// then report storage as unavailable instead of failing startup.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) storage.Service {
	if cfg.Storage.Bucket == "" {
		logger.Warn("storage bucket not configured, avatar uploads disabled")
		return nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		logger.Fatalf("load aws config: %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client)
}

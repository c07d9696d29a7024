package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/karen-colon/b3-backend-social-net/internal/config"
	"github.com/karen-colon/b3-backend-social-net/internal/database"
	"github.com/karen-colon/b3-backend-social-net/internal/handler"
	"github.com/karen-colon/b3-backend-social-net/internal/logger"
	"github.com/karen-colon/b3-backend-social-net/internal/queue"
	"github.com/karen-colon/b3-backend-social-net/internal/redis"
	"github.com/karen-colon/b3-backend-social-net/internal/repository"
	"github.com/karen-colon/b3-backend-social-net/internal/service"
	"github.com/karen-colon/b3-backend-social-net/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.LogLevel)
	log := logger.For("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	// 3. Optional activity stream
	var publisher queue.Publisher
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		publisher = queue.NewPublisher(redisClient.Client)
		log.Info("Activity events enabled")

		if cfg.ActivityWorkers > 0 {
			workerCfg := worker.DefaultManagerConfig()
			workerCfg.WorkerCount = cfg.ActivityWorkers
			manager := worker.NewManager(queue.NewConsumer(redisClient.Client), worker.NewHandler(), workerCfg)
			if err := manager.Start(ctx); err != nil {
				return fmt.Errorf("failed to start activity workers: %w", err)
			}
			defer manager.Stop()
		}
	} else {
		log.Info("REDIS_URL not set, activity events disabled")
	}

	// 4. Repositories and services
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	publicationRepo := repository.NewPublicationRepository(db)
	replyRepo := repository.NewReplyRepository(db)

	tokenService, err := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL())
	if err != nil {
		return err
	}
	userService := service.NewUserService(userRepo, cfg.DefaultAvatar)
	followService := service.NewFollowService(followRepo, userRepo, publicationRepo, publisher)
	publicationService := service.NewPublicationService(publicationRepo, followService, publisher)
	replyService := service.NewReplyService(replyRepo, publicationRepo, userRepo, publisher)

	var media handler.MediaUploader
	if cfg.StorageConfigured() {
		mediaService, err := service.NewMediaService(ctx, cfg)
		if err != nil {
			return err
		}
		media = mediaService
	} else {
		log.Warn("Object storage not configured, uploads disabled")
	}

	// 5. Handlers and routes
	router := NewRouter(RouterConfig{
		UserHandler:        handler.NewUserHandler(userService, followService, tokenService, media),
		PublicationHandler: handler.NewPublicationHandler(publicationService, media),
		FollowHandler:      handler.NewFollowHandler(followService),
		ReplyHandler:       handler.NewReplyHandler(replyService),
		TokenVerifier:      tokenService,
		AllowedOrigins:     cfg.Origins(),
	})

	// 6. Serve until signalled
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return <-errCh
}

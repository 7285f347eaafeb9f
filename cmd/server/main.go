package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codecamp/internal/api"
	"codecamp/internal/app/service"
	"codecamp/internal/app/worker"
	"codecamp/internal/common/security"
	"codecamp/internal/domain/repository"
	"codecamp/internal/platform/config"
	"codecamp/internal/platform/database"
	"codecamp/internal/platform/judge0"
	"codecamp/internal/platform/logger"
	"codecamp/internal/platform/queue"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// 1. Load Configuration
	config.Load()
	cfg := config.AppConfig

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, OutputPath: cfg.LogOutput}); err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger.Info(ctx, "configuration loaded", zap.String("port", cfg.APIPort))

	// 2. Initialize JWT
	security.InitJWT()

	// 3. Initialize Database
	if err := database.Connect(); err != nil {
		logger.Fatal(ctx, "database connection failed", zap.Error(err))
	}
	defer database.Close()
	if err := database.EnsureIndexes(ctx, database.DB); err != nil {
		logger.Fatal(ctx, "index creation failed", zap.Error(err))
	}

	// 4. Initialize Redis
	if err := queue.ConnectRedis(); err != nil {
		logger.Fatal(ctx, "redis connection failed", zap.Error(err))
	}
	defer queue.CloseRedis()

	// 5. Initialize Repositories
	userRepo := repository.NewMongoUserRepository(database.DB)
	problemRepo := repository.NewMongoProblemRepository(database.DB)
	notificationRepo := repository.NewMongoNotificationRepository(database.DB)
	failureLog := repository.NewMongoFailureLog(database.DB)
	tx := repository.NewTransactor(database.Client, cfg.MongoTransactions)
	if !cfg.MongoTransactions {
		logger.Warn(ctx, "mongo transactions disabled, stats and problem counters are written sequentially")
	}

	judge := judge0.NewClient(judge0.Options{
		BaseURL:         cfg.Judge0URL,
		APIKey:          cfg.Judge0APIKey,
		APIHost:         cfg.Judge0APIHost,
		PollInterval:    cfg.Judge0PollInterval,
		DefaultDeadline: cfg.Judge0Deadline,
		CPUTimeLimit:    cfg.Judge0CPUTimeLimit,
		MemoryLimit:     cfg.Judge0MemoryLimit,
	})
	if err := judge.Configured(); err != nil {
		// submissions answer 503 until the key is set
		logger.Warn(ctx, "judge0 is not configured", zap.Error(err))
	}

	// 6. Initialize Services
	notificationQueue := queue.NewTaskQueue(queue.RDB, cfg.NotificationQueueName)
	notificationService := service.NewNotificationService(notificationQueue, notificationRepo, failureLog)
	submissionService := service.NewSubmissionService(
		userRepo,
		problemRepo,
		tx,
		service.NewEvaluator(judge, cfg.Judge0CaseDeadline),
		queue.NewLocker(queue.RDB, "lock:submission:"),
		notificationService,
		service.SubmissionConfig{Deadline: cfg.SubmissionDeadline, LockTTL: cfg.SubmissionLockTTL},
	)

	// 7. Notification worker (goroutine)
	notificationWorker := worker.NewNotificationWorker(notificationQueue, notificationService, cfg.NotificationMaxAttempts)
	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		notificationWorker.Start(workerCtx)
	}()

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(api.Services{
		Auth:         service.NewAuthService(userRepo),
		User:         service.NewUserService(userRepo),
		Problem:      service.NewProblemService(problemRepo),
		Submission:   submissionService,
		Notification: notificationService,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 160 * time.Second, // above the router's request timeout
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info(ctx, "server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "could not listen", zap.String("addr", server.Addr), zap.Error(err))
		}
	}()

	<-stop // Wait for interrupt signal

	logger.Info(ctx, "shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server shutdown failed", zap.Error(err))
	}

	workerCancel() // in-flight submissions may still enqueue until Shutdown returns
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		logger.Warn(ctx, "notification worker did not stop in time")
	}

	logger.Info(ctx, "server and worker stopped gracefully")
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/snapplace/server/internal/auth"
	"github.com/snapplace/server/internal/config"
	"github.com/snapplace/server/internal/database"
	"github.com/snapplace/server/internal/email"
	httpServer "github.com/snapplace/server/internal/http"
	"github.com/snapplace/server/internal/logging"
	"github.com/snapplace/server/internal/place"
	"github.com/snapplace/server/internal/push"
	"github.com/snapplace/server/internal/user"
	"github.com/snapplace/server/internal/vote"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Apply schema migrations
	if err := database.Migrate(context.Background(), db.DB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize Redis connection
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	codeRepo := auth.NewCodeRepository(db)
	placeRepo := place.NewRepository(db)
	voteRepo := vote.NewRepository(db)
	pushRepo := push.NewRepository(db)
	sessionStore := auth.NewSessionStore(redisClient)

	// Initialize PASETO service
	pasetoService, err := auth.NewPasetoService(cfg.Auth.PasetoKey)
	if err != nil {
		return fmt.Errorf("failed to initialize PASETO service: %w", err)
	}

	// Initialize external services
	emailService := email.NewService(cfg.Email.ResendAPIKey, cfg.Email.FromAddress)
	captchaVerifier := auth.NewGoogleCaptchaVerifier(cfg.Captcha.Secret, cfg.Captcha.VerifyURL)
	notifier := push.NewWebPushNotifier(
		pushRepo,
		logger,
		cfg.Push.Subscriber,
		cfg.Push.VAPIDPublicKey,
		cfg.Push.VAPIDPrivateKey,
	)

	// Initialize domain services
	authService := auth.NewService(
		userRepo,
		codeRepo,
		emailService,
		sessionStore,
		captchaVerifier,
		pasetoService,
		logger,
		cfg.Auth.SessionDuration,
		cfg.Auth.CodeDuration,
	)
	voteService := vote.NewService(voteRepo, placeRepo, userRepo, notifier, logger)

	// Initialize HTTP handlers
	authHandler := auth.NewHandler(authService)
	placeHandler := place.NewHandler(placeRepo)
	voteHandler := vote.NewHandler(voteService)
	pushHandler := push.NewHandler(pushRepo, cfg.Push.VAPIDPublicKey)

	// Initialize router
	router := httpServer.NewRouter(httpServer.RouterDeps{
		Config:       cfg,
		Logger:       logger,
		AuthHandler:  authHandler,
		PlaceHandler: placeHandler,
		VoteHandler:  voteHandler,
		PushHandler:  pushHandler,
		Tokens:       pasetoService,
		Sessions:     sessionStore,
	})

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

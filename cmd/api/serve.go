package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/redmonkez12/go-accounts-api/internal/account"
	"github.com/redmonkez12/go-accounts-api/internal/auth"
	"github.com/redmonkez12/go-accounts-api/internal/avatar"
	"github.com/redmonkez12/go-accounts-api/internal/config"
	"github.com/redmonkez12/go-accounts-api/internal/database"
	"github.com/redmonkez12/go-accounts-api/internal/email"
	httpServer "github.com/redmonkez12/go-accounts-api/internal/http"
	"github.com/redmonkez12/go-accounts-api/internal/logging"
	"github.com/redmonkez12/go-accounts-api/internal/ratelimit"
)

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")

	return cmd
}

func run(ctx context.Context, migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"token_format", cfg.Auth.TokenFormat,
	)

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if migrate || cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	// RATE_LIMIT_IP=0 runs without Redis
	var rateLimiter auth.RateLimiter
	if cfg.RateLimit.IPLimit > 0 {
		redisClient, err := initRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer redisClient.Close()
		rateLimiter = ratelimit.NewLimiter(redisClient, cfg.RateLimit)
	} else {
		logger.Warn("rate limiting disabled")
	}

	accounts := account.NewRepository(db)

	tokenService, err := initTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	avatars, static, err := initAvatarStorage(ctx, cfg.Avatar)
	if err != nil {
		return fmt.Errorf("failed to initialize avatar storage: %w", err)
	}

	emailService := email.NewService(cfg.Email, cfg.Server.BaseURL)

	authService := auth.NewService(
		accounts,
		initPasswordHasher(cfg.Auth),
		auth.NewRandomTokenGenerator(32),
		tokenService,
		emailService,
		avatars,
		logger,
	)

	authHandler := auth.NewHandler(authService, rateLimiter, cfg.Avatar.MaxUploadBytes)
	authMiddleware := auth.NewMiddleware(tokenService, accounts)

	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, static, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		if err := authService.Wait(shutdownCtx); err != nil {
			logger.Warn("verification emails still in flight at shutdown", "error", err)
		}
	}

	return nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

func initTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	if cfg.TokenFormat == config.TokenFormatJWT {
		return auth.NewJWTService(cfg.JWTSecret)
	}
	return auth.NewPasetoService(cfg.PasetoKey)
}

func initPasswordHasher(cfg config.AuthConfig) auth.PasswordHasher {
	if cfg.PasswordHasher == config.HasherBcrypt {
		return auth.NewBcryptHasher(cfg.BcryptCost)
	}
	return auth.NewArgon2Hasher(auth.DefaultArgon2Params)
}

// initAvatarStorage returns the storage and, for local storage, the
// directory the router should serve
func initAvatarStorage(ctx context.Context, cfg config.AvatarConfig) (auth.AvatarStorage, *httpServer.StaticDir, error) {
	if cfg.Storage == config.AvatarStorageS3 {
		s, err := avatar.NewS3Storage(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}

	s, err := avatar.NewLocalStorage(cfg.Dir, cfg.URLPrefix)
	if err != nil {
		return nil, nil, err
	}
	return s, &httpServer.StaticDir{URLPrefix: s.URLPrefix(), Dir: s.Dir()}, nil
}

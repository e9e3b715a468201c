package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/expenzo/expenzo-server/internal/application/port"
	"github.com/expenzo/expenzo-server/internal/application/service"
	"github.com/expenzo/expenzo-server/internal/auth"
	"github.com/expenzo/expenzo-server/internal/config"
	"github.com/expenzo/expenzo-server/internal/infrastructure/external/countries"
	"github.com/expenzo/expenzo-server/internal/infrastructure/external/fxrate"
	"github.com/expenzo/expenzo-server/internal/infrastructure/external/receipt"
	"github.com/expenzo/expenzo-server/internal/infrastructure/persistence/repository"
	httpserver "github.com/expenzo/expenzo-server/internal/interfaces/http"
	"github.com/expenzo/expenzo-server/internal/report"
	"github.com/expenzo/expenzo-server/pkg/database"
	"github.com/expenzo/expenzo-server/pkg/utils"
)

func main() {
	// Local development secrets live in .env; missing file is fine.
	gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Expenzo server",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		logger.Fatal("Failed to create upload directory", zap.Error(err))
	}

	// Repositories
	companyRepo := repository.NewCompanyRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)
	expenseRepo := repository.NewExpenseRepository(db, logger)
	analyticsRepo := repository.NewAnalyticsRepository(db, logger)

	// External providers
	rateClient := fxrate.NewClient(fxrate.Config{
		BaseURL: cfg.Exchange.BaseURL,
		Timeout: cfg.Exchange.Timeout,
	}, logger)
	countryClient := countries.NewClient(countries.Config{
		BaseURL: cfg.Countries.BaseURL,
		Timeout: cfg.Countries.Timeout,
	}, logger)

	var extractor port.ReceiptExtractor = receipt.Disabled{}
	if cfg.OpenAI.APIKey != "" {
		extractor = receipt.NewExtractor(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
	} else {
		logger.Warn("OPENAI_API_KEY not set, receipt extraction disabled")
	}

	// Application services
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(userRepo, companyRepo, countryClient, tokens, db, logger)
	userService := service.NewUserService(userRepo, logger)
	companyService := service.NewCompanyService(companyRepo)
	expenseService := service.NewExpenseService(expenseRepo, companyRepo, userRepo, rateClient, extractor, db, logger)
	analyticsService := service.NewAnalyticsService(analyticsRepo, expenseRepo, companyRepo, report.NewExporter(logger), logger)

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			UploadDir:    cfg.Uploads.Dir,
		},
		authService,
		userService,
		companyService,
		expenseService,
		analyticsService,
		userRepo,
		tokens,
		countryClient,
		rateClient,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down server...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

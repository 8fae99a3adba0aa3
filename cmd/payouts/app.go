package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/flmarket/payouts/internal/auth"
	"github.com/flmarket/payouts/internal/config"
	"github.com/flmarket/payouts/internal/handlers"
	"github.com/flmarket/payouts/internal/migrations"
	"github.com/flmarket/payouts/internal/notify"
	"github.com/flmarket/payouts/internal/services"
	"github.com/flmarket/payouts/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// App структура для управления приложением и его зависимостями.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	dbPool *pgxpool.Pool
	echo   *echo.Echo

	// Handlers
	userHandler       *handlers.UserHandler
	withdrawalHandler *handlers.WithdrawalHandler
	adminHandler      *handlers.AdminHandler
}

// NewApp создаёт и инициализирует новое приложение.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: logger,
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initDependencies(); err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	app.initServer()

	return app, nil
}

// initDatabase инициализирует подключение к базе данных и выполняет миграции.
func (app *App) initDatabase(ctx context.Context) error {
	if app.cfg.DatabaseURI == "" {
		return fmt.Errorf("DATABASE_URI is required")
	}

	// Применение миграций
	app.logger.Info("running database migrations")
	sqlDB, err := sql.Open("pgx", app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to open database connection: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.Run(sqlDB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.logger.Info("migrations completed successfully")

	// Подключение к базе данных через pgxpool
	dbPool, err := pgxpool.New(ctx, app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		return fmt.Errorf("unable to ping database: %w", err)
	}

	app.dbPool = dbPool
	app.logger.Info("successfully connected to database")

	return nil
}

// initDependencies инициализирует все зависимости приложения (storage, services, handlers).
func (app *App) initDependencies() error {
	// Storage layer
	txRunner := storage.NewPgxTxRunner(app.dbPool)
	userStorage := storage.NewPostgresUserStorage(app.dbPool)
	walletStorage := storage.NewPostgresWalletStorage(app.dbPool)
	withdrawalStorage := storage.NewPostgresWithdrawalStorage(app.dbPool)
	transactionStorage := storage.NewPostgresTransactionStorage(app.dbPool)

	// Диспетчер доменных событий
	notifiers := []notify.Notifier{notify.NewLogNotifier(app.logger)}
	if app.cfg.TelegramToken != "" && app.cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegramNotifier(app.cfg.TelegramToken, app.cfg.TelegramChatID)
		if err != nil {
			// Канал опциональный: без него события останутся в логе
			app.logger.Warn("telegram notifier disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, tg)
			app.logger.Info("telegram notifier enabled")
		}
	}
	dispatcher := notify.NewDispatcher(app.logger, notifiers...)

	// Service layer
	userService := services.NewUserService(userStorage, walletStorage, app.cfg.JWTSecret, app.cfg.TokenExpiration)
	ledgerService := services.NewLedgerService(txRunner, walletStorage, transactionStorage, dispatcher)
	withdrawalService := services.NewWithdrawalService(
		txRunner, walletStorage, withdrawalStorage, transactionStorage,
		dispatcher, app.logger, app.cfg.DefaultCurrency,
	)

	// Handler layer
	app.userHandler = handlers.NewUserHandler(userService, ledgerService)
	app.withdrawalHandler = handlers.NewWithdrawalHandler(withdrawalService)
	app.adminHandler = handlers.NewAdminHandler(withdrawalService, ledgerService)

	return nil
}

// initServer инициализирует HTTP-сервер и настраивает маршруты.
func (app *App) initServer() {
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	// Публичные маршруты (не требуют аутентификации)
	e.POST("/api/user/register", app.userHandler.Register)
	e.POST("/api/user/login", app.userHandler.Login)

	// Защищённые маршруты (требуют аутентификации)
	protected := e.Group("/api/user")
	protected.Use(auth.JWTMiddleware(app.cfg.JWTSecret))
	protected.GET("/balance", app.userHandler.GetBalance)
	protected.GET("/transactions", app.userHandler.GetTransactions)
	protected.POST("/withdrawals", app.withdrawalHandler.Create)
	protected.GET("/withdrawals", app.withdrawalHandler.List)
	protected.GET("/withdrawals/:id", app.withdrawalHandler.Get)

	// Маршруты администратора
	admin := e.Group("/api/admin")
	admin.Use(auth.JWTMiddleware(app.cfg.JWTSecret))
	admin.Use(auth.AdminOnly())
	admin.GET("/withdrawals", app.adminHandler.ListWithdrawals)
	admin.POST("/withdrawals/:id/approve", app.adminHandler.Approve)
	admin.POST("/withdrawals/:id/reject", app.adminHandler.Reject)
	admin.POST("/withdrawals/:id/complete", app.adminHandler.Complete)
	admin.POST("/wallets/:user_id/credit", app.adminHandler.CreditWallet)

	app.echo = e
}

// Start запускает приложение.
func (app *App) Start(ctx context.Context) error {
	app.logger.Info("starting server", zap.String("address", app.cfg.RunAddress))
	if err := app.echo.Start(app.cfg.RunAddress); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// Shutdown корректно завершает работу приложения.
func (app *App) Shutdown(ctx context.Context) error {
	app.logger.Info("shutting down server")

	if err := app.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if app.dbPool != nil {
		app.dbPool.Close()
	}

	app.logger.Info("server gracefully stopped")
	return nil
}

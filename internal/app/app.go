package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pledgeline/pledgeline/internal/config"
	"github.com/pledgeline/pledgeline/internal/db"
	"github.com/pledgeline/pledgeline/internal/repository"
	"github.com/pledgeline/pledgeline/internal/service"
)

type App struct {
	Cfg           *config.Config
	DB            *sqlx.DB
	AuthService   *service.AuthService
	GoalService   *service.GoalService
	DerailService *service.DerailService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	goalRepository := repository.NewGoalRepository(database)
	checkInRepository := repository.NewCheckInRepository(database)
	segmentRepository := repository.NewSegmentRepository(database)
	transactionRepository := repository.NewTransactionRepository(database)

	// Services
	location := cfg.Location()
	authService := service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry)
	goalService := service.NewGoalService(
		goalRepository,
		checkInRepository,
		segmentRepository,
		transactionRepository,
		location,
	)
	derailService := service.NewDerailService(
		goalRepository,
		checkInRepository,
		segmentRepository,
		location,
		cfg.SweepConcurrency,
	)

	return &App{
		Cfg:           cfg,
		DB:            database,
		AuthService:   authService,
		GoalService:   goalService,
		DerailService: derailService,
	}, nil
}

func (a *App) Close() error {
	return db.Close(a.DB)
}

// Package cli wires the application context for keel's command-line surface.
package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/keelbrowser/keel/internal/application/usecase"
	"github.com/keelbrowser/keel/internal/config"
	"github.com/keelbrowser/keel/internal/domain/repository"
	"github.com/keelbrowser/keel/internal/infrastructure/persistence/sqlite"
	"github.com/keelbrowser/keel/internal/logging"
)

// App bundles the initialized configuration, store and use cases shared by
// all subcommands.
type App struct {
	Config *config.Config

	Places  repository.PlaceRepository
	Visits  repository.VisitRepository
	Tabs    repository.TabRepository
	Windows repository.WindowRepository

	HistoryPageUC   *usecase.GetHistoryPageUseCase
	DeleteHistoryUC *usecase.DeleteHistoryUseCase
	BookmarkUC      *usecase.BookmarkPlaceUseCase

	db  *sql.DB
	ctx context.Context
}

// NewApp loads configuration, opens the session database and builds the use
// cases.
func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewFromConfigValues(cfg.Logging.Level, cfg.Logging.Format)
	ctx := logging.WithContext(context.Background(), logger)

	db, err := sqlite.NewConnection(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	places := sqlite.NewPlaceRepository(db)
	visits := sqlite.NewVisitRepository(db)

	return &App{
		Config:          cfg,
		Places:          places,
		Visits:          visits,
		Tabs:            sqlite.NewTabRepository(db),
		Windows:         sqlite.NewWindowRepository(db),
		HistoryPageUC:   usecase.NewGetHistoryPageUseCase(visits),
		DeleteHistoryUC: usecase.NewDeleteHistoryUseCase(visits),
		BookmarkUC:      usecase.NewBookmarkPlaceUseCase(places),
		db:              db,
		ctx:             ctx,
	}, nil
}

// Ctx returns the app context carrying the logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// SchemaVersion reports the applied migration version of the session store.
func (a *App) SchemaVersion() (int64, error) {
	return sqlite.GetMigrationStatus(a.db)
}

// Close releases the database.
func (a *App) Close() error {
	return sqlite.Close(a.db)
}

package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Migrator накатывает goose-миграции при старте процесса
type Migrator struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

func NewMigrator(pool *pgxpool.Pool, path string, logger *zap.Logger) (*Migrator, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}

	// goose работает только с database/sql; пулом управляет main
	return &Migrator{
		db:     stdlib.OpenDBFromPool(pool),
		path:   path,
		logger: logger,
	}, nil
}

// Run применяет недостающие миграции и логирует итоговую версию схемы
func (m *Migrator) Run(ctx context.Context) error {
	if err := goose.UpContext(ctx, m.db, m.path); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, m.db)
	if err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	m.logger.Info("✅ Migrations applied", zap.Int64("schema_version", version))
	return nil
}

// Close освобождает соединение мигратора; пул продолжает жить
func (m *Migrator) Close() error {
	return m.db.Close()
}

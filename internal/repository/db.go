package repository

import (
	"context"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/equiplend/invoice-pipeline/internal/common"
)

// Open connects to Postgres, applies pool settings and migrates the schema.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database")

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConns)
	}

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := sqlDB.PingContext(pingCtx); err != nil {
		logger.Error("database ping failed", "error", err)
		return nil, err
	}

	if err := db.WithContext(ctx).AutoMigrate(
		&EntityRecord{}, &InvoiceRecord{}, &InvoiceItemRecord{},
	); err != nil {
		logger.Error("schema migration failed", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return db, nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
			return
		}
	}
	logger.Info("database connections closed")
}

package db

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/config"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

// Open connects through the pgx stdlib driver and hands the pool to gorm.
func Open(cfg *config.Config) (*gorm.DB, error) {
	pgxCfg, err := pgx.ParseConfig(cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	sqlDB := stdlib.OpenDB(*pgxCfg)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		PrepareStmt: true,
		TranslateError: true,
		Logger:      logger.Default.LogMode(logger.Warn),
		NowFunc:     func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return gdb, nil
}

// Migrate creates or updates every table and backfills company timezones.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	res := gdb.Model(&models.Company{}).
		Where("timezone IS NULL OR timezone = ''").
		Update("timezone", timezone.DefaultTimezone)
	if res.Error != nil {
		return fmt.Errorf("backfill timezone: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		zap.L().Info("backfilled company timezone", zap.Int64("rows", res.RowsAffected))
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dom/cyprine-heroes/internal/repository"
)

// NewConnection opens the database, retrying with exponential backoff until
// the server accepts connections or timeout elapses, then migrates the schema.
func NewConnection(ctx context.Context, databaseURL string, timeout time.Duration, log *zap.SugaredLogger) (*gorm.DB, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = timeout

	var db *gorm.DB
	connect := func() error {
		conn, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Warn),
			TranslateError: true,
		})
		if err != nil {
			return err
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return err
		}
		db = conn
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Warnw("database not ready, retrying", "error", err, "wait", wait)
	}

	if err := backoff.RetryNotify(connect, backoff.WithContext(policy, ctx), notify); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the tables backing the repositories.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&heroRecord{})
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Hero: NewHeroRepository(db),
	}
}

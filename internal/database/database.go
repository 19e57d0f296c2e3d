package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/originhub/originhub-api/internal/config"
	"github.com/originhub/originhub-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrDatabaseUnavailable is returned when the database did not answer a ping
// within the readiness window.
var ErrDatabaseUnavailable = errors.New("database unavailable")

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Open prepares the connection pool without requiring the server to be up, so
// the API can start in degraded mode and fail per request instead.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Warn),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// WaitForReady polls p every interval until it answers or timeout elapses.
func WaitForReady(ctx context.Context, p Pinger, interval, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	attempt := 0
	for {
		attempt++
		pingCtx, pingCancel := context.WithTimeout(ctx, interval)
		err := p.PingContext(pingCtx)
		pingCancel()
		if err == nil {
			slog.Info("database ready", "attempts", attempt)
			return nil
		}
		slog.Warn("database not ready", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w after %s: %v", ErrDatabaseUnavailable, timeout, err)
		case <-ticker.C:
		}
	}
}

// RetryUntilReady keeps polling p in rounds of retryWindow until it answers,
// then runs onReady once. It returns ctx.Err() if ctx ends first.
func RetryUntilReady(ctx context.Context, p Pinger, interval, retryWindow time.Duration, onReady func() error) error {
	for {
		if err := WaitForReady(ctx, p, interval, retryWindow); err == nil {
			return onReady()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// Migrate runs AutoMigrate for every persisted model.
func Migrate(db *gorm.DB) error {
	if err := automigrate(db); err != nil {
		return err
	}
	// Delivery bodies are no longer stored.
	if m := db.Migrator(); m.HasColumn(&models.WebhookEvent{}, "payload") {
		if err := m.DropColumn(&models.WebhookEvent{}, "payload"); err != nil {
			return fmt.Errorf("drop webhook_events.payload: %w", err)
		}
	}
	return nil
}

func automigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Idea{},
		&models.IdeaUpvote{},
		&models.Comment{},
		&models.Chat{},
		&models.Message{},
		&models.WebhookEvent{},
		&models.SystemLog{},
	)
}

// Ping checks connectivity for health reporting.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

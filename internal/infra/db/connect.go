package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applogger "propfirm_server/internal/infra/logger"
)

// zerologWriter adapts zerolog.Logger to the gorm logger.Writer interface.
type zerologWriter struct {
	logger zerolog.Logger
}

func (w *zerologWriter) Printf(format string, v ...interface{}) {
	w.logger.Warn().Msg(fmt.Sprintf(format, v...))
}

// Connect opens the database behind the DSN. A postgres:// or postgresql://
// DSN selects the postgres driver; anything else is treated as a sqlite file
// path. TranslateError is enabled so unique-index violations surface as
// gorm.ErrDuplicatedKey regardless of driver.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn required")
	}

	gormLogger := applogger.For("gorm")
	newLogger := logger.New(
		&zerologWriter{logger: gormLogger},
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	cfg := &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	}

	var (
		gormDB *gorm.DB
		err    error
	)
	if isPostgresDSN(dsn) {
		gormDB, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		if dirErr := ensureDirectory(dsn); dirErr != nil {
			return nil, dirErr
		}
		gormDB, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("underlying db: %w", err)
	}

	configurePool(sqlDB, isPostgresDSN(dsn))

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		if err := sqlDB.PingContext(pingCtx); err == nil {
			return gormDB, nil
		}
		if i < maxRetries-1 {
			time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
		}
	}

	_ = sqlDB.Close()
	return nil, fmt.Errorf("ping database: failed after %d retries", maxRetries)
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

func configurePool(db *sql.DB, pg bool) {
	if pg {
		db.SetMaxIdleConns(10)
		db.SetMaxOpenConns(25)
		db.SetConnMaxIdleTime(5 * time.Minute)
		db.SetConnMaxLifetime(time.Hour)
		return
	}

	// sqlite: a single writer connection avoids SQLITE_BUSY under concurrent
	// transitions.
	db.SetMaxIdleConns(1)
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(0)
}

func ensureDirectory(dsn string) error {
	path := sqliteFilePath(dsn)
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sqlite directory: %w", err)
	}
	return nil
}

func sqliteFilePath(dsn string) string {
	if dsn == ":memory:" {
		return ""
	}

	trimmed := strings.TrimPrefix(dsn, "file:")
	trimmed = strings.TrimPrefix(trimmed, "//")

	if idx := strings.IndexRune(trimmed, '?'); idx >= 0 {
		trimmed = trimmed[:idx]
	}

	if trimmed == "" || trimmed == ":memory:" {
		return ""
	}

	return trimmed
}

package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taicc-readiness/internal/config"
	"taicc-readiness/internal/model"
)

// InitDBFromConfig opens the results database described by cfg.DB and
// migrates its schema. It returns nil, nil when the database is disabled.
func InitDBFromConfig(cfg *config.APIConfig) (*gorm.DB, error) {
	if !cfg.DB.Initialize {
		return nil, nil
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.DB.Driver, err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	pool := cfg.DB.Pool
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate creates or updates the tables owned by this service.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&model.AssessmentResult{}); err != nil {
		return fmt.Errorf("failed to migrate results schema: %w", err)
	}
	return nil
}

func dialectorFor(cfg *config.APIConfig) (gorm.Dialector, error) {
	d := cfg.DB
	switch strings.ToLower(d.Driver) {
	case "postgres", "postgresql":
		tz := cfg.Context.TimeZone
		if tz == "" {
			tz = "UTC"
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
			d.Host, d.Port, d.Username, d.Password.Value, d.Names.TAICC, d.SSLMode, tz)
		return postgres.Open(dsn), nil
	case "sqlite", "sqlite3":
		name := d.Names.TAICC
		if name == "" {
			name = "taicc.db"
		}
		return sqlite.Open(name), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", d.Driver)
	}
}

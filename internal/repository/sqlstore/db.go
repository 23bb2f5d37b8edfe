package sqlstore

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jwalitptl/homecare-api/internal/config"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// NewDB opens and pings a pooled connection for the configured driver.
func NewDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return db, nil
}

// DSN builds the driver specific connection string.
func DSN(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.Collation = "utf8mb4_unicode_ci"
		mc.InterpolateParams = true
		// Report matched rather than changed rows so an update that leaves a
		// row untouched is not mistaken for a missing row.
		mc.ClientFoundRows = true
		mc.Params = map[string]string{"charset": "utf8mb4"}
		if cfg.ConnectTimeout > 0 {
			mc.Timeout = cfg.ConnectTimeout
		}
		return mc.FormatDSN(), nil
	case DriverPostgres:
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			sslMode,
		), nil
	}
	return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

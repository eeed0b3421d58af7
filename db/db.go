package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"quickcart-emporium/logger"
)

// DB holds the database connection used by the shared response cache.
// It stays nil when no cache database is configured.
var DB *sql.DB

// InitDB opens and pings the Postgres database at connStr
func InitDB(ctx context.Context, connStr string) error {
	if connStr == "" {
		return fmt.Errorf("cache database connection string is empty")
	}

	conn, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB = conn
	logger.Log.Infof("✓ Cache database connection established successfully")
	return nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// Package db opens the relational connection for the database store
// backend and keeps its schema current.
package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/router-for-me/MailRelayGateway/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects using the dialect implied by the DSN: postgres for
// postgres:// or postgresql:// connection strings, sqlite otherwise.
func Open(dsn string) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("db: empty dsn")
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	conn, errOpen := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if errOpen != nil {
		return nil, fmt.Errorf("db: open: %w", errOpen)
	}
	return conn, nil
}

// Migrate runs schema migrations for the document table.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errAutoMigrate := conn.AutoMigrate(&models.Document{}); errAutoMigrate != nil {
		return fmt.Errorf("db: automigrate: %w", errAutoMigrate)
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"gotriage/internal/config"
)

const settingsModule = "triage"

type MySQL struct {
	DB *sql.DB
}

func NewMySQL(ctx context.Context, cfg config.DatabaseConfig) (*MySQL, error) {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=Local",
		cfg.User, cfg.Password, cfg.Host, port, cfg.Name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQL{DB: db}, nil
}

func (m *MySQL) Close() error {
	return m.DB.Close()
}

// GetAPICredentials reads the upstream API key and base URL from the
// settings table. Missing rows leave the fields empty.
func (m *MySQL) GetAPICredentials(ctx context.Context) (*config.APICredentials, error) {
	creds := &config.APICredentials{}

	rows, err := m.DB.QueryContext(ctx, `
		SELECT field, value
		FROM settings
		WHERE module = ?
		AND field IN ('api_key', 'base_url')
	`, settingsModule)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			continue
		}
		switch field {
		case "api_key":
			creds.APIKey = value
		case "base_url":
			creds.BaseURL = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	return creds, nil
}

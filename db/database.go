package db

import (
	"database/sql"
	"fmt"
	"log"

	"MashFM/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB initializes the schema owned by the raw-SQL side: users and source
// tracks. Composition and mixdown tables are migrated by the GORM side.
func InitDB() error {
	if err := createUsersTable(); err != nil {
		return err
	}
	if err := createSourceTracksTable(); err != nil {
		return err
	}
	log.Println("Database initialization completed.")
	return nil
}

func createUsersTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		display_name VARCHAR(100),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`
	if _, err := DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	log.Println("Users table initialized successfully (or already exists).")
	return nil
}

func createSourceTracksTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS source_tracks (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT,
		title VARCHAR(255) NOT NULL,
		artist VARCHAR(255),
		asset_id VARCHAR(36) NOT NULL,
		file_path VARCHAR(767) NOT NULL,
		duration DOUBLE,
		bpm INT,
		key_name VARCHAR(32),
		status VARCHAR(16),
		has_stems BOOLEAN DEFAULT FALSE,
		stem_assets TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_user_source_tracks FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT uq_user_asset UNIQUE (user_id, asset_id)
	);
	`
	if _, err := DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create source_tracks table: %w", err)
	}
	log.Println("Source tracks table initialized successfully (or already exists).")
	return nil
}

package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"matserver/config"
	"matserver/models"
)

// Repository loads and saves the whole document. Implementations never merge:
// Save replaces whatever was stored before.
type Repository interface {
	Load(ctx context.Context) (*models.Database, error)
	Save(ctx context.Context, doc *models.Database) error
	Ping(ctx context.Context) error
	Close() error
}

// OpenRepository builds the Repository selected by cfg.StoreDriver.
func OpenRepository(cfg *config.Config) (Repository, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite, config.DriverPostgres:
		return OpenSQLRepository(cfg.StoreDriver, cfg.DatabaseDSN)
	case config.DriverFile, "":
		return NewFileRepository(cfg.DbFilePath, cfg.EnableBackup), nil
	default:
		return nil, fmt.Errorf("unknown store driver '%s'", cfg.StoreDriver)
	}
}

// emptyDocument is what a store with no data yet looks like.
func emptyDocument() *models.Database {
	return &models.Database{
		Users:    []models.User{},
		Feedback: []json.RawMessage{},
	}
}

// FileRepository keeps the document as an indented JSON file.
type FileRepository struct {
	path   string
	backup bool
}

// NewFileRepository returns a repository over the JSON file at path. When
// backup is set, the previous file is kept as path+".bak" on every save.
func NewFileRepository(path string, backup bool) *FileRepository {
	log.Printf("INFO: Using JSON file store: %s", path)
	return &FileRepository{path: path, backup: backup}
}

// Load reads the document. A missing or empty file yields an empty document;
// a file that cannot be parsed is an error so that it is never overwritten
// with an empty state.
func (r *FileRepository) Load(ctx context.Context) (*models.Database, error) {
	fileData, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("DEBUG: Database file '%s' not found. Using empty document.", r.path)
			return emptyDocument(), nil
		}
		return nil, fmt.Errorf("failed to read database file '%s': %w", r.path, err)
	}
	if len(fileData) == 0 {
		return emptyDocument(), nil
	}

	doc := emptyDocument()
	if err := json.Unmarshal(fileData, doc); err != nil {
		log.Printf("CRITICAL: Failed to parse JSON data from database file '%s': %v", r.path, err)
		return nil, fmt.Errorf("failed to parse database file '%s': %w", r.path, err)
	}
	// The file may carry null for either collection.
	if doc.Users == nil {
		doc.Users = []models.User{}
	}
	if doc.Feedback == nil {
		doc.Feedback = []json.RawMessage{}
	}
	return doc, nil
}

// Save writes the document through a temporary file and an atomic rename.
func (r *FileRepository) Save(ctx context.Context, doc *models.Database) error {
	jsonData, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal database state: %w", err)
	}

	tempFilePath := r.path + ".tmp"
	backupFilePath := r.path + ".bak"

	if err := os.WriteFile(tempFilePath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temporary database file '%s': %w", tempFilePath, err)
	}

	if r.backup {
		if _, err := os.Stat(r.path); err == nil {
			if err := os.Rename(r.path, backupFilePath); err != nil {
				log.Printf("WARN: Failed to rename '%s' to '%s' for backup: %v. Proceeding with save.", r.path, backupFilePath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("WARN: Error checking status of DB file '%s' before backup: %v", r.path, err)
		}
	}

	if err := os.Rename(tempFilePath, r.path); err != nil {
		_ = os.Remove(tempFilePath)
		return fmt.Errorf("failed to rename '%s' to '%s': %w", tempFilePath, r.path, err)
	}

	log.Printf("DEBUG: Saved database state to %s (%d users)", r.path, len(doc.Users))
	return nil
}

// Ping reports whether the directory holding the file is usable.
func (r *FileRepository) Ping(ctx context.Context) error {
	dir := filepath.Dir(r.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("database directory '%s': %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("database directory '%s' is not a directory", dir)
	}
	return nil
}

// Close is a no-op; every Save already reached the disk.
func (r *FileRepository) Close() error { return nil }

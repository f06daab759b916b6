package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"matserver/config"
	"matserver/models"
)

// documentRowID is the primary key of the only row the table ever holds.
const documentRowID = 1

// documentRow stores the whole document as one JSON value.
type documentRow struct {
	ID        uint           `gorm:"primaryKey;autoIncrement:false"`
	Body      datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (documentRow) TableName() string { return "documents" }

// SQLRepository keeps the document in a single row of a SQL table.
type SQLRepository struct {
	db *gorm.DB
}

// OpenSQLRepository connects with the given driver ("sqlite" or "postgres")
// and prepares the table.
func OpenSQLRepository(driver, dsn string) (*SQLRepository, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported SQL driver '%s'", driver)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	repo, err := NewSQLRepository(gormDB)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: Using %s document store", driver)
	return repo, nil
}

// NewSQLRepository wraps an open connection and migrates the documents table.
func NewSQLRepository(gormDB *gorm.DB) (*SQLRepository, error) {
	if err := gormDB.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("automigrate documents: %w", err)
	}
	return &SQLRepository{db: gormDB}, nil
}

// Load reads the document row; no row yet means an empty document.
func (r *SQLRepository) Load(ctx context.Context) (*models.Database, error) {
	var row documentRow
	err := r.db.WithContext(ctx).First(&row, documentRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return emptyDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	doc := emptyDocument()
	if err := json.Unmarshal(row.Body, doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc.Users == nil {
		doc.Users = []models.User{}
	}
	if doc.Feedback == nil {
		doc.Feedback = []json.RawMessage{}
	}
	return doc, nil
}

// Save upserts the document row.
func (r *SQLRepository) Save(ctx context.Context, doc *models.Database) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	row := documentRow{ID: documentRowID, Body: datatypes.JSON(body), UpdatedAt: time.Now().UTC()}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Ping checks the underlying connection.
func (r *SQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (r *SQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

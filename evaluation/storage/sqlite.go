// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/evalgate/evalgate/evaluation"
)

// statsColumn stores one run's full stats as a JSON text column.
// Implements driver.Valuer and sql.Scanner.
type statsColumn evaluation.RunStats

// Value implements driver.Valuer.
func (s statsColumn) Value() (driver.Value, error) {
	b, err := json.Marshal(evaluation.RunStats(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *statsColumn) Scan(value any) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal stats value: %T", value)
	}
	return json.Unmarshal(bytes, (*evaluation.RunStats)(s))
}

// runRecord is the gorm model for one stored run. The autoincrement ID
// preserves append order.
type runRecord struct {
	ID    uint        `gorm:"primaryKey;autoIncrement"`
	RunID string      `gorm:"uniqueIndex;size:64"`
	Stats statsColumn `gorm:"type:text"`
}

func (runRecord) TableName() string { return "eval_runs" }

// SQLiteHistory stores run history in a SQLite database. Safe for
// concurrent use and shared between processes.
type SQLiteHistory struct {
	db *gorm.DB
}

// NewSQLiteHistory opens (creating if needed) the SQLite database at path
// and migrates the run table.
func NewSQLiteHistory(path string) (*SQLiteHistory, error) {
	if path == "" {
		return nil, ErrInvalidInput
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.AutoMigrate(&runRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate run table: %w", err)
	}
	return &SQLiteHistory{db: db}, nil
}

// Append implements History.
func (s *SQLiteHistory) Append(ctx context.Context, stats evaluation.RunStats) error {
	if stats.RunID == "" {
		return ErrInvalidInput
	}
	record := runRecord{
		RunID: stats.RunID,
		Stats: statsColumn(stats),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	return nil
}

// LoadAll implements History.
func (s *SQLiteHistory) LoadAll(ctx context.Context) ([]evaluation.RunStats, error) {
	var records []runRecord
	if err := s.db.WithContext(ctx).Order("id asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}
	runs := make([]evaluation.RunStats, 0, len(records))
	for _, r := range records {
		runs = append(runs, evaluation.RunStats(r.Stats))
	}
	return runs, nil
}

// Close releases the underlying database connection.
func (s *SQLiteHistory) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Package history persists the commands submitted at the prompt so they
// survive across sessions.
package history

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Manager stores and retrieves submitted command lines in a sqlite
// database.
type Manager struct {
	db *gorm.DB
}

// Entry is one submitted command line.
type Entry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`

	Command   string `gorm:"index"`
	SessionID string `gorm:"index"`
}

// NewManager opens (creating if needed) the history database at
// dbFilePath and migrates the schema.
func NewManager(dbFilePath string) (*Manager, error) {
	// busy_timeout covers concurrent sessions sharing the file;
	// synchronous(1) is NORMAL mode; temp_store(2) keeps temp files in
	// memory.
	connectionString := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=synchronous(1)&_pragma=temp_store(2)", dbFilePath)

	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}

	// SQLite serializes writes anyway, so one connection is enough.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Manager{db: db}, nil
}

// Close releases the database connection.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Append records a submitted command line for the session.
func (m *Manager) Append(command string, sessionID string) (*Entry, error) {
	entry := Entry{
		Command:   command,
		SessionID: sessionID,
	}
	if result := m.db.Create(&entry); result.Error != nil {
		return nil, result.Error
	}
	return &entry, nil
}

// Recent returns up to limit entries ordered oldest first, so the caller
// can feed them straight into an up-arrow history buffer.
func (m *Manager) Recent(limit int) ([]Entry, error) {
	var entries []Entry
	result := m.db.Order("created_at desc").Limit(limit).Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}
	return lo.Reverse(entries), nil
}

// RecentByPrefix returns up to limit entries whose command starts with
// prefix, ordered oldest first like Recent, so prefix-filtered history
// navigation walks them the same way.
func (m *Manager) RecentByPrefix(prefix string, limit int) ([]Entry, error) {
	var entries []Entry
	result := m.db.Where("command LIKE ?", prefix+"%").
		Order("created_at desc").
		Limit(limit).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}
	return lo.Reverse(entries), nil
}

// Reset deletes all stored history.
func (m *Manager) Reset() error {
	if result := m.db.Exec("DELETE FROM entries"); result.Error != nil {
		return result.Error
	}
	return nil
}

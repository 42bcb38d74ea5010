// Package storage persists the identity of the game being played so a
// restarted client picks it up again.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/zappabad/solotrader/internal/game"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	keyGameID    = "game_id"
	keyGameSetup = "game_setup"
)

// Entry is one key-value row.
type Entry struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

// Store is a small key-value table in a local SQLite file.
type Store struct {
	db *gorm.DB
}

// Saved is the game remembered from an earlier run.
type Saved struct {
	ID       game.ID
	Settings game.Settings
}

// Open opens (creating if needed) the database at path. An empty path uses
// the user config directory.
func Open(path string) (*Store, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// DefaultPath is <user config dir>/solotrader/solotrader.db.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "solotrader", "solotrader.db"), nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Put stores value under key, replacing any earlier value.
func (s *Store) Put(key, value string) error {
	return s.db.Save(&Entry{Key: key, Value: value}).Error
}

// Get returns the value under key. A missing key is not an error.
func (s *Store) Get(key string) (string, bool, error) {
	var e Entry
	err := s.db.Where(&Entry{Key: key}).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

// Delete removes key.
func (s *Store) Delete(key string) error {
	return s.db.Delete(&Entry{Key: key}).Error
}

// SaveCurrentGame remembers the game just created.
func (s *Store) SaveCurrentGame(id game.ID, settings game.Settings) error {
	setup, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&Entry{Key: keyGameID, Value: string(id)}).Error; err != nil {
			return err
		}
		return tx.Save(&Entry{Key: keyGameSetup, Value: string(setup)}).Error
	})
}

// CurrentGame returns the remembered game, if any.
func (s *Store) CurrentGame() (Saved, bool, error) {
	id, ok, err := s.Get(keyGameID)
	if err != nil || !ok || id == "" {
		return Saved{}, false, err
	}
	saved := Saved{ID: game.ID(id)}

	setup, ok, err := s.Get(keyGameSetup)
	if err != nil {
		return Saved{}, false, err
	}
	if ok {
		if err := json.Unmarshal([]byte(setup), &saved.Settings); err != nil {
			return Saved{}, false, fmt.Errorf("decode settings: %w", err)
		}
	}
	return saved, true, nil
}

// ForgetCurrentGame clears the remembered game.
func (s *Store) ForgetCurrentGame() error {
	if err := s.Delete(keyGameID); err != nil {
		return err
	}
	return s.Delete(keyGameSetup)
}

package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pathwise/tutorengine/internal/logger"
)

// ErrNotFound is returned when a referenced record does not exist. The
// engine surfaces it to callers and never fabricates a record in its place.
var ErrNotFound = errors.New("store: record not found")

// Store holds the gorm handle and provides access to repositories.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open connects to the SQLite database at dsn and runs auto-migration.
func Open(dsn string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&masteryScoreRow{},
		&questionResponseRow{},
		&learningSessionRow{},
	); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// DB returns the underlying gorm handle for raw queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// MasteryScores returns the mastery score repository.
func (s *Store) MasteryScores() *MasteryScoreRepo {
	return &MasteryScoreRepo{db: s.db, log: s.log.With("repo", "mastery")}
}

// Responses returns the append-only question response repository.
func (s *Store) Responses() *ResponseRepo {
	return &ResponseRepo{db: s.db, log: s.log.With("repo", "responses")}
}

// Sessions returns the learning session repository.
func (s *Store) Sessions() *SessionRepo {
	return &SessionRepo{db: s.db, log: s.log.With("repo", "sessions")}
}

// DefaultDBPath resolves the database file path in priority order:
// TUTOR_DB env var, $XDG_DATA_HOME/tutorengine/tutor.db,
// ~/.local/share/tutorengine/tutor.db.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("TUTOR_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "tutorengine", "tutor.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

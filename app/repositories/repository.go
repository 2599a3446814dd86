package repositories

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// Repository owns the badger handle and the per-entity repositories built on it.
type Repository struct {
	db       *badger.DB
	dbPath   string
	isTestDB bool

	Users       *BadgerUserRepository
	Groups      *BadgerGroupRepository
	Posts       *BadgerPostRepository
	Comments    *BadgerCommentRepository
	Follows     *BadgerFollowRepository
	ResetTokens *BadgerResetTokenRepository
}

// NewRepository opens the database at path. An empty path or "test_db" opens a
// throwaway database in a fresh temporary directory that Close removes.
func NewRepository(path string) (*Repository, error) {
	isTest := false
	if path == "" || path == "test_db" {
		tempPath, err := os.MkdirTemp("", "yatube_test_db_")
		if err != nil {
			return nil, fmt.Errorf("error creating temp dir: %w", err)
		}
		path = tempPath
		isTest = true
	}
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	if isTest {
		opts = opts.WithSyncWrites(false)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", path, err)
	}
	repo := NewRepositoryWithDB(db)
	repo.dbPath = path
	repo.isTestDB = isTest
	return repo, nil
}

// NewRepositoryWithDB wraps an already opened database.
func NewRepositoryWithDB(db *badger.DB) *Repository {
	return &Repository{
		db:          db,
		Users:       NewBadgerUserRepository(db),
		Groups:      NewBadgerGroupRepository(db),
		Posts:       NewBadgerPostRepository(db),
		Comments:    NewBadgerCommentRepository(db),
		Follows:     NewBadgerFollowRepository(db),
		ResetTokens: NewBadgerResetTokenRepository(db),
	}
}

// DB exposes the underlying handle for backup and restore.
func (r *Repository) DB() *badger.DB {
	return r.db
}

// Close closes the database and removes it when it was a throwaway test database.
func (r *Repository) Close() error {
	if err := r.db.Close(); err != nil {
		return err
	}
	if r.isTestDB {
		if err := os.RemoveAll(r.dbPath); err != nil {
			return fmt.Errorf("failed to cleanup test database: %w", err)
		}
	}
	return nil
}

// Clear drops every key.
func (r *Repository) Clear() error {
	return r.db.DropAll()
}

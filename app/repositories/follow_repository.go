package repositories

import (
	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerFollowRepository implements FollowRepository using BadgerDB.
// Each edge is written twice: follow:<user>:<author> holds the record and
// follower:<author>:<user> is the reverse index.
type BadgerFollowRepository struct {
	db *badger.DB
}

// NewBadgerFollowRepository creates a new BadgerFollowRepository
func NewBadgerFollowRepository(db *badger.DB) *BadgerFollowRepository {
	return &BadgerFollowRepository{db: db}
}

// Create stores a follow edge; an existing edge yields ErrDuplicate
func (r *BadgerFollowRepository) Create(follow *models.Follow) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := pairKey(FollowKeyPrefix, follow.UserID, follow.AuthorID)
		found, err := exists(txn, key)
		if err != nil {
			return err
		}
		if found {
			return ErrDuplicate
		}
		if err := setEntity(txn, key, follow); err != nil {
			return err
		}
		return txn.Set(pairKey(FollowerKeyPrefix, follow.AuthorID, follow.UserID), nil)
	})
}

// Delete removes a follow edge; a missing edge yields ErrNotFound
func (r *BadgerFollowRepository) Delete(userID, authorID int) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := pairKey(FollowKeyPrefix, userID, authorID)
		found, err := exists(txn, key)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(pairKey(FollowerKeyPrefix, authorID, userID))
	})
}

// Exists reports whether userID follows authorID
func (r *BadgerFollowRepository) Exists(userID, authorID int) (bool, error) {
	var found bool
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = exists(txn, pairKey(FollowKeyPrefix, userID, authorID))
		return err
	})
	return found, err
}

// ListAuthorIDs returns the ids of the authors userID follows
func (r *BadgerFollowRepository) ListAuthorIDs(userID int) ([]int, error) {
	var ids []int
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		ids, err = collectIDs(txn, pairPrefix(FollowKeyPrefix, userID))
		return err
	})
	return ids, err
}

// ListFollowerIDs returns the ids of the users following authorID
func (r *BadgerFollowRepository) ListFollowerIDs(authorID int) ([]int, error) {
	var ids []int
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		ids, err = collectIDs(txn, pairPrefix(FollowerKeyPrefix, authorID))
		return err
	})
	return ids, err
}

// DeleteAllFor removes every edge where userID is either side
func (r *BadgerFollowRepository) DeleteAllFor(userID int) error {
	return update(r.db, func(txn *badger.Txn) error {
		authors, err := collectIDs(txn, pairPrefix(FollowKeyPrefix, userID))
		if err != nil {
			return err
		}
		for _, authorID := range authors {
			if err := txn.Delete(pairKey(FollowKeyPrefix, userID, authorID)); err != nil {
				return err
			}
			if err := txn.Delete(pairKey(FollowerKeyPrefix, authorID, userID)); err != nil {
				return err
			}
		}

		followers, err := collectIDs(txn, pairPrefix(FollowerKeyPrefix, userID))
		if err != nil {
			return err
		}
		for _, followerID := range followers {
			if err := txn.Delete(pairKey(FollowKeyPrefix, followerID, userID)); err != nil {
				return err
			}
			if err := txn.Delete(pairKey(FollowerKeyPrefix, userID, followerID)); err != nil {
				return err
			}
		}
		return nil
	})
}

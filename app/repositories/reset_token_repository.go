package repositories

import (
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerResetTokenRepository keeps password reset tokens as expiring badger entries
type BadgerResetTokenRepository struct {
	db *badger.DB
}

// NewBadgerResetTokenRepository creates a new BadgerResetTokenRepository
func NewBadgerResetTokenRepository(db *badger.DB) *BadgerResetTokenRepository {
	return &BadgerResetTokenRepository{db: db}
}

func userTokenKey(userID int, token string) []byte {
	return append(pairPrefix(ResetUserKeyPrefix, userID), token...)
}

// Create stores token for userID; badger drops it once ttl elapses
func (r *BadgerResetTokenRepository) Create(token string, userID int, ttl time.Duration) error {
	return update(r.db, func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(ResetKeyPrefix+token), []byte(strconv.Itoa(userID))).WithTTL(ttl)
		if err := txn.SetEntry(entry); err != nil {
			return err
		}
		return txn.SetEntry(badger.NewEntry(userTokenKey(userID, token), nil).WithTTL(ttl))
	})
}

// Get returns the user id the token was issued for
func (r *BadgerResetTokenRepository) Get(token string) (int, error) {
	var userID int
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ResetKeyPrefix + token))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			userID, err = strconv.Atoi(string(val))
			return err
		})
	})
	return userID, err
}

// Delete consumes a token
func (r *BadgerResetTokenRepository) Delete(token string) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := []byte(ResetKeyPrefix + token)
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		var userID int
		err = item.Value(func(val []byte) error {
			userID, err = strconv.Atoi(string(val))
			return err
		})
		if err != nil {
			return err
		}
		if err := txn.Delete(userTokenKey(userID, token)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// DeleteAllFor revokes every outstanding token issued for userID
func (r *BadgerResetTokenRepository) DeleteAllFor(userID int) error {
	return update(r.db, func(txn *badger.Txn) error {
		prefix := pairPrefix(ResetUserKeyPrefix, userID)
		for _, key := range keysWithPrefix(txn, prefix) {
			token := string(key[len(prefix):])
			if err := txn.Delete([]byte(ResetKeyPrefix + token)); err != nil {
				return err
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

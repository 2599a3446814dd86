package repositories

import (
	"strconv"
	"strings"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// userRecord is the stored form of a user; the email and password hash are kept
// out of the public JSON encoding of models.User.
type userRecord struct {
	models.User
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"password_hash"`
}

func toRecord(user *models.User) userRecord {
	return userRecord{User: *user, Email: user.Email, PasswordHash: user.PasswordHash}
}

func (r userRecord) toUser() *models.User {
	user := r.User
	user.Email = r.Email
	user.PasswordHash = r.PasswordHash
	return &user
}

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

func usernameKey(username string) []byte {
	return []byte(UsernameKeyPrefix + username)
}

// Create creates a new user, rejecting taken usernames with ErrDuplicate
func (r *BadgerUserRepository) Create(user *models.User) error {
	return update(r.db, func(txn *badger.Txn) error {
		taken, err := exists(txn, usernameKey(user.Username))
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicate
		}

		id, err := getNextID(txn, UserSeqKey)
		if err != nil {
			return err
		}
		user.ID = id

		if err := setEntity(txn, idKey(UserKeyPrefix, id), toRecord(user)); err != nil {
			return err
		}
		return txn.Set(usernameKey(user.Username), []byte(strconv.Itoa(id)))
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(id int) (*models.User, error) {
	var rec userRecord
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(UserKeyPrefix, id), &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.toUser(), nil
}

// GetByUsername retrieves a user through the username index
func (r *BadgerUserRepository) GetByUsername(username string) (*models.User, error) {
	var rec userRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey(username))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var id int
		err = item.Value(func(val []byte) error {
			id, err = strconv.Atoi(string(val))
			return err
		})
		if err != nil {
			return err
		}
		return getEntity(txn, idKey(UserKeyPrefix, id), &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.toUser(), nil
}

// FindByEmail returns every user registered with email, compared case-insensitively
func (r *BadgerUserRepository) FindByEmail(email string) ([]*models.User, error) {
	var users []*models.User
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(UserKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec userRecord
			if err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &rec)
			}); err != nil {
				return err
			}
			if rec.Email != "" && strings.EqualFold(rec.Email, email) {
				users = append(users, rec.toUser())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Update updates an existing user, keeping the username index in sync
func (r *BadgerUserRepository) Update(user *models.User) error {
	return update(r.db, func(txn *badger.Txn) error {
		var existing userRecord
		if err := getEntity(txn, idKey(UserKeyPrefix, user.ID), &existing); err != nil {
			return err
		}
		if existing.Username != user.Username {
			taken, err := exists(txn, usernameKey(user.Username))
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicate
			}
			if err := txn.Delete(usernameKey(existing.Username)); err != nil {
				return err
			}
			if err := txn.Set(usernameKey(user.Username), []byte(strconv.Itoa(user.ID))); err != nil {
				return err
			}
		}
		return setEntity(txn, idKey(UserKeyPrefix, user.ID), toRecord(user))
	})
}

// Delete deletes a user and its username index entry
func (r *BadgerUserRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		var existing userRecord
		if err := getEntity(txn, idKey(UserKeyPrefix, id), &existing); err != nil {
			return err
		}
		if err := txn.Delete(usernameKey(existing.Username)); err != nil {
			return err
		}
		return txn.Delete(idKey(UserKeyPrefix, id))
	})
}

// Count returns the number of registered users
func (r *BadgerUserRepository) Count() (int, error) {
	var ids []int
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		ids, err = collectIDs(txn, []byte(UserKeyPrefix))
		return err
	})
	return len(ids), err
}

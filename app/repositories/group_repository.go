package repositories

import (
	"sort"
	"strconv"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerGroupRepository implements GroupRepository using BadgerDB
type BadgerGroupRepository struct {
	db *badger.DB
}

// NewBadgerGroupRepository creates a new BadgerGroupRepository
func NewBadgerGroupRepository(db *badger.DB) *BadgerGroupRepository {
	return &BadgerGroupRepository{db: db}
}

func slugKey(slug string) []byte {
	return []byte(GroupSlugKeyPrefix + slug)
}

// Create creates a new group; slugs are unique
func (r *BadgerGroupRepository) Create(group *models.Group) error {
	return update(r.db, func(txn *badger.Txn) error {
		taken, err := exists(txn, slugKey(group.Slug))
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicate
		}

		id, err := getNextID(txn, GroupSeqKey)
		if err != nil {
			return err
		}
		group.ID = id

		if err := setEntity(txn, idKey(GroupKeyPrefix, id), group); err != nil {
			return err
		}
		return txn.Set(slugKey(group.Slug), []byte(strconv.Itoa(id)))
	})
}

// GetByID retrieves a group by ID
func (r *BadgerGroupRepository) GetByID(id int) (*models.Group, error) {
	var group models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(GroupKeyPrefix, id), &group)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetBySlug retrieves a group through the slug index
func (r *BadgerGroupRepository) GetBySlug(slug string) (*models.Group, error) {
	var group models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(slugKey(slug))
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
		return getEntity(txn, idKey(GroupKeyPrefix, id), &group)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// List returns every group ordered by title
func (r *BadgerGroupRepository) List() ([]*models.Group, error) {
	var groups []*models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(GroupKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var group models.Group
			if err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &group)
			}); err != nil {
				return err
			}
			groups = append(groups, &group)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Title < groups[j].Title
	})
	return groups, nil
}

// Update updates an existing group, keeping the slug index in sync
func (r *BadgerGroupRepository) Update(group *models.Group) error {
	return update(r.db, func(txn *badger.Txn) error {
		var existing models.Group
		if err := getEntity(txn, idKey(GroupKeyPrefix, group.ID), &existing); err != nil {
			return err
		}
		if existing.Slug != group.Slug {
			taken, err := exists(txn, slugKey(group.Slug))
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicate
			}
			if err := txn.Delete(slugKey(existing.Slug)); err != nil {
				return err
			}
			if err := txn.Set(slugKey(group.Slug), []byte(strconv.Itoa(group.ID))); err != nil {
				return err
			}
		}
		return setEntity(txn, idKey(GroupKeyPrefix, group.ID), group)
	})
}

// Delete deletes a group and its slug index entry
func (r *BadgerGroupRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		var existing models.Group
		if err := getEntity(txn, idKey(GroupKeyPrefix, id), &existing); err != nil {
			return err
		}
		if err := txn.Delete(slugKey(existing.Slug)); err != nil {
			return err
		}
		return txn.Delete(idKey(GroupKeyPrefix, id))
	})
}

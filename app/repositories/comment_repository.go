package repositories

import (
	"strconv"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// commentKey resolves the primary key of a comment through the id index.
func commentKey(txn *badger.Txn, id int) ([]byte, error) {
	item, err := txn.Get(idKey(CommentIDKeyPrefix, id))
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var postID int
	err = item.Value(func(val []byte) error {
		postID, err = strconv.Atoi(string(val))
		return err
	})
	if err != nil {
		return nil, err
	}
	return pairKey(CommentKeyPrefix, postID, id), nil
}

// Create creates a new comment
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	return update(r.db, func(txn *badger.Txn) error {
		// Get next ID
		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		comment.ID = id

		c := *comment
		c.Author = nil

		// Save comment with post ID in key for efficient listing
		if err := setEntity(txn, pairKey(CommentKeyPrefix, comment.PostID, id), &c); err != nil {
			return err
		}
		return txn.Set(idKey(CommentIDKeyPrefix, id), []byte(strconv.Itoa(comment.PostID)))
	})
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		key, err := commentKey(txn, id)
		if err != nil {
			return err
		}
		return getEntity(txn, key, &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost retrieves all comments for a post, oldest first
func (r *BadgerCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := pairPrefix(CommentKeyPrefix, postID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var comment models.Comment
			if err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &comment)
			}); err != nil {
				return err
			}
			comments = append(comments, &comment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Update updates an existing comment
func (r *BadgerCommentRepository) Update(comment *models.Comment) error {
	return update(r.db, func(txn *badger.Txn) error {
		key, err := commentKey(txn, comment.ID)
		if err != nil {
			return err
		}
		c := *comment
		c.Author = nil
		return setEntity(txn, key, &c)
	})
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		key, err := commentKey(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(idKey(CommentIDKeyPrefix, id)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// DeleteByPost deletes every comment on a post
func (r *BadgerCommentRepository) DeleteByPost(postID int) error {
	return update(r.db, func(txn *badger.Txn) error {
		for _, key := range keysWithPrefix(txn, pairPrefix(CommentKeyPrefix, postID)) {
			id, err := trailingID(key)
			if err != nil {
				return err
			}
			if err := txn.Delete(idKey(CommentIDKeyPrefix, id)); err != nil {
				return err
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteByAuthor deletes every comment written by authorID
func (r *BadgerCommentRepository) DeleteByAuthor(authorID int) error {
	return update(r.db, func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		var doomed []models.Comment
		var keys [][]byte
		prefix := []byte(CommentKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var comment models.Comment
			if err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &comment)
			}); err != nil {
				it.Close()
				return err
			}
			if comment.AuthorID == authorID {
				doomed = append(doomed, comment)
				keys = append(keys, it.Item().KeyCopy(nil))
			}
		}
		it.Close()

		for i, comment := range doomed {
			if err := txn.Delete(idKey(CommentIDKeyPrefix, comment.ID)); err != nil {
				return err
			}
			if err := txn.Delete(keys[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

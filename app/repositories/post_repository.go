package repositories

import (
	"fmt"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// stored strips the hydrated relations before a post is written.
func stored(post *models.Post) *models.Post {
	p := *post
	p.Author = nil
	p.Group = nil
	p.Comments = nil
	return &p
}

// Create creates a new post along with its author and group index entries
func (r *BadgerPostRepository) Create(post *models.Post) error {
	return update(r.db, func(txn *badger.Txn) error {
		// Get next ID
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		if err := setEntity(txn, idKey(PostKeyPrefix, id), stored(post)); err != nil {
			return err
		}
		if err := txn.Set(pairKey(PostAuthorPrefix, post.AuthorID, id), nil); err != nil {
			return err
		}
		if post.GroupID != nil {
			return txn.Set(pairKey(PostGroupKeyPrefix, *post.GroupID, id), nil)
		}
		return nil
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns one window of the posts matching filter, newest first, and the
// total number of matches
func (r *BadgerPostRepository) List(filter PostFilter, limit, offset int) ([]*models.Post, int, error) {
	var posts []*models.Post
	var total int
	err := r.db.View(func(txn *badger.Txn) error {
		ids, err := matchingPostIDs(txn, filter)
		if err != nil {
			return err
		}
		total = len(ids)

		for _, id := range window(ids, limit, offset) {
			var post models.Post
			if err := getEntity(txn, idKey(PostKeyPrefix, id), &post); err != nil {
				return fmt.Errorf("failed to load post %d: %w", id, err)
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// matchingPostIDs resolves filter against the index keys without touching values.
func matchingPostIDs(txn *badger.Txn, filter PostFilter) ([]int, error) {
	var byAuthor []int
	if filter.AuthorIDs != nil {
		for _, authorID := range filter.AuthorIDs {
			ids, err := collectIDs(txn, pairPrefix(PostAuthorPrefix, authorID))
			if err != nil {
				return nil, err
			}
			byAuthor = append(byAuthor, ids...)
		}
		byAuthor = sortDesc(byAuthor)
		if filter.GroupID == 0 {
			return byAuthor, nil
		}
	}

	var ids []int
	var err error
	if filter.GroupID != 0 {
		ids, err = collectIDs(txn, pairPrefix(PostGroupKeyPrefix, filter.GroupID))
	} else {
		ids, err = collectIDs(txn, []byte(PostKeyPrefix))
	}
	if err != nil || filter.AuthorIDs == nil {
		return ids, err
	}

	allowed := make(map[int]bool, len(byAuthor))
	for _, id := range byAuthor {
		allowed[id] = true
	}
	matched := ids[:0]
	for _, id := range ids {
		if allowed[id] {
			matched = append(matched, id)
		}
	}
	return matched, nil
}

// Update updates an existing post and moves its group index entry when the group changes
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return update(r.db, func(txn *badger.Txn) error {
		var existing models.Post
		if err := getEntity(txn, idKey(PostKeyPrefix, post.ID), &existing); err != nil {
			return err
		}

		if existing.GroupID != nil && !post.InGroup(*existing.GroupID) {
			if err := txn.Delete(pairKey(PostGroupKeyPrefix, *existing.GroupID, post.ID)); err != nil {
				return err
			}
		}
		if post.GroupID != nil {
			if err := txn.Set(pairKey(PostGroupKeyPrefix, *post.GroupID, post.ID), nil); err != nil {
				return err
			}
		}
		if existing.AuthorID != post.AuthorID {
			if err := txn.Delete(pairKey(PostAuthorPrefix, existing.AuthorID, post.ID)); err != nil {
				return err
			}
			if err := txn.Set(pairKey(PostAuthorPrefix, post.AuthorID, post.ID), nil); err != nil {
				return err
			}
		}
		return setEntity(txn, idKey(PostKeyPrefix, post.ID), stored(post))
	})
}

// Delete deletes a post by ID together with its index entries
func (r *BadgerPostRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		var existing models.Post
		if err := getEntity(txn, idKey(PostKeyPrefix, id), &existing); err != nil {
			return err
		}
		if existing.GroupID != nil {
			if err := txn.Delete(pairKey(PostGroupKeyPrefix, *existing.GroupID, id)); err != nil {
				return err
			}
		}
		if err := txn.Delete(pairKey(PostAuthorPrefix, existing.AuthorID, id)); err != nil {
			return err
		}
		return txn.Delete(idKey(PostKeyPrefix, id))
	})
}

// ClearGroup detaches every post from groupID
func (r *BadgerPostRepository) ClearGroup(groupID int) error {
	return update(r.db, func(txn *badger.Txn) error {
		ids, err := collectIDs(txn, pairPrefix(PostGroupKeyPrefix, groupID))
		if err != nil {
			return err
		}
		for _, id := range ids {
			var post models.Post
			if err := getEntity(txn, idKey(PostKeyPrefix, id), &post); err != nil {
				return err
			}
			post.GroupID = nil
			if err := setEntity(txn, idKey(PostKeyPrefix, id), &post); err != nil {
				return err
			}
			if err := txn.Delete(pairKey(PostGroupKeyPrefix, groupID, id)); err != nil {
				return err
			}
		}
		return nil
	})
}

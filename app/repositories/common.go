package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	UserKeyPrefix      = "user:"
	UsernameKeyPrefix  = "user_name:"
	GroupKeyPrefix     = "group:"
	GroupSlugKeyPrefix = "group_slug:"
	PostKeyPrefix      = "post:"
	PostGroupKeyPrefix = "post_group:"
	PostAuthorPrefix   = "post_author:"
	CommentKeyPrefix   = "comment:"
	CommentIDKeyPrefix = "comment_id:"
	FollowKeyPrefix    = "follow:"
	FollowerKeyPrefix  = "follower:"
	ResetKeyPrefix     = "reset:"
	ResetUserKeyPrefix = "reset_user:"

	// Sequence keys for auto-incrementing IDs
	UserSeqKey    = "seq:user"
	GroupSeqKey   = "seq:group"
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"

	idWidth        = 10
	maxTxnAttempts = 3
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id int
	item, err := txn.Get([]byte(seqKey))
	if err == badger.ErrKeyNotFound {
		id = 1
	} else if err != nil {
		return 0, err
	} else {
		err = item.Value(func(val []byte) error {
			if len(val) != 4 {
				return fmt.Errorf("corrupt sequence %s", seqKey)
			}
			id = int(val[0])<<24 | int(val[1])<<16 | int(val[2])<<8 | int(val[3])
			return nil
		})
		if err != nil {
			return 0, err
		}
		id++
	}

	// Store new ID
	idBytes := []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	if err := txn.Set([]byte(seqKey), idBytes); err != nil {
		return 0, err
	}

	return id, nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// idKey builds prefix + zero padded id so that lexical and numeric order agree.
func idKey(prefix string, id int) []byte {
	return []byte(fmt.Sprintf("%s%0*d", prefix, idWidth, id))
}

// pairKey builds prefix + two zero padded ids separated by a colon.
func pairKey(prefix string, a, b int) []byte {
	return []byte(fmt.Sprintf("%s%0*d:%0*d", prefix, idWidth, a, idWidth, b))
}

// pairPrefix is the scan prefix for every pairKey starting with a.
func pairPrefix(prefix string, a int) []byte {
	return []byte(fmt.Sprintf("%s%0*d:", prefix, idWidth, a))
}

// trailingID parses the id at the end of a padded key.
func trailingID(key []byte) (int, error) {
	if len(key) < idWidth {
		return 0, fmt.Errorf("malformed key %q", key)
	}
	return strconv.Atoi(string(key[len(key)-idWidth:]))
}

// update runs fn in a read-write transaction, retrying when badger reports a conflict.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// getEntity loads and decodes the value stored under key.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// setEntity encodes entity and stores it under key.
func setEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// exists reports whether key is present.
func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// collectIDs returns the trailing ids of every key under prefix, newest first.
func collectIDs(txn *badger.Txn, prefix []byte) ([]int, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Reverse = true
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []int
	seek := append(append([]byte{}, prefix...), 0xFF)
	for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
		id, err := trailingID(it.Item().Key())
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// keysWithPrefix returns a copy of every key under prefix.
func keysWithPrefix(txn *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

// sortDesc sorts ids newest first and drops duplicates.
func sortDesc(ids []int) []int {
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	out := ids[:0]
	for i, id := range ids {
		if i > 0 && id == ids[i-1] {
			continue
		}
		out = append(out, id)
	}
	return out
}

// window clips ids to the [offset, offset+limit) range.
func window(ids []int, limit, offset int) []int {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) {
		return nil
	}
	end := len(ids)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return ids[offset:end]
}

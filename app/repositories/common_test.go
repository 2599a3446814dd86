package repositories

import (
	"testing"
	"time"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepositoryWithDB(db)
}

func createUser(t *testing.T, repo *Repository, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "hash", DateJoined: time.Now()}
	require.NoError(t, repo.Users.Create(user))
	return user
}

func TestGetNextID(t *testing.T) {
	// Create temporary directory for test database
	tmpDir := t.TempDir()
	db, err := badger.Open(badger.DefaultOptions(tmpDir).WithLogger(nil))
	assert.NoError(t, err)
	defer db.Close()

	t.Run("first ID", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, PostSeqKey)
			assert.NoError(t, err)
			assert.Equal(t, 1, id)
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("sequential IDs", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			for i := 2; i <= 5; i++ {
				id, err := getNextID(txn, PostSeqKey)
				assert.NoError(t, err)
				assert.Equal(t, i, id)
			}
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("different sequence keys", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			_, err := getNextID(txn, PostSeqKey)
			assert.NoError(t, err)

			commentID, err := getNextID(txn, CommentSeqKey)
			assert.NoError(t, err)
			assert.Equal(t, 1, commentID, "Comment sequence should start from 1")
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("persistence", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, "test:seq")
			assert.NoError(t, err)
			assert.Equal(t, 1, id)
			return nil
		})
		assert.NoError(t, err)

		err = db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, "test:seq")
			assert.NoError(t, err)
			assert.Equal(t, 2, id)
			return nil
		})
		assert.NoError(t, err)
	})
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "post:0000000042", string(idKey(PostKeyPrefix, 42)))
	assert.Equal(t, "follow:0000000001:0000000002", string(pairKey(FollowKeyPrefix, 1, 2)))
	assert.Equal(t, "comment:0000000007:", string(pairPrefix(CommentKeyPrefix, 7)))

	id, err := trailingID(pairKey(PostAuthorPrefix, 3, 1234))
	assert.NoError(t, err)
	assert.Equal(t, 1234, id)

	_, err = trailingID([]byte("short"))
	assert.Error(t, err)
}

func TestSortDescAndWindow(t *testing.T) {
	assert.Equal(t, []int{9, 5, 3, 1}, sortDesc([]int{3, 9, 1, 5, 3, 9}))

	ids := []int{13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	assert.Len(t, window(ids, 10, 0), 10)
	assert.Equal(t, []int{3, 2, 1}, window(ids, 10, 10))
	assert.Empty(t, window(ids, 10, 20))
	assert.Len(t, window(ids, 0, 0), 13)
}

func TestMarshalEntity(t *testing.T) {
	t.Run("marshal post", func(t *testing.T) {
		post := &models.Post{ID: 1, Text: "Test Post", AuthorID: 2}

		data, err := marshalEntity(post)
		assert.NoError(t, err)
		assert.NotEmpty(t, data)

		var unmarshaled models.Post
		err = unmarshalEntity(data, &unmarshaled)
		assert.NoError(t, err)
		assert.Equal(t, post.ID, unmarshaled.ID)
		assert.Equal(t, post.Text, unmarshaled.Text)
		assert.Equal(t, post.AuthorID, unmarshaled.AuthorID)
	})

	t.Run("marshal invalid entity", func(t *testing.T) {
		invalidEntity := struct {
			Ch chan int
		}{
			Ch: make(chan int),
		}

		_, err := marshalEntity(invalidEntity)
		assert.Error(t, err)
	})

	t.Run("unmarshal invalid JSON", func(t *testing.T) {
		var post models.Post
		err := unmarshalEntity([]byte(`{"id":1,invalid json}`), &post)
		assert.Error(t, err)
	})

	t.Run("unmarshal into nil", func(t *testing.T) {
		err := unmarshalEntity([]byte(`{"id":1}`), nil)
		assert.Error(t, err)
	})
}

func TestRepositoryLifecycle(t *testing.T) {
	repo, err := NewRepository("")
	require.NoError(t, err)
	path := repo.dbPath

	createUser(t, repo, "author")
	count, err := repo.Users.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repo.Clear())
	count, err = repo.Users.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.Close())
	assert.NoDirExists(t, path)
}

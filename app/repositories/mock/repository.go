package mock

import (
	"sort"
	"strings"
	"sync"
	"time"

	"yatube/app/models"
	"yatube/app/repositories"
)

// UserRepository is an in-memory repositories.UserRepository
type UserRepository struct {
	users  map[int]*models.User
	nextID int
	mutex  sync.RWMutex
}

// GroupRepository is an in-memory repositories.GroupRepository
type GroupRepository struct {
	groups map[int]*models.Group
	nextID int
	mutex  sync.RWMutex
}

// PostRepository is an in-memory repositories.PostRepository
type PostRepository struct {
	posts  map[int]*models.Post
	nextID int
	mutex  sync.RWMutex
}

// CommentRepository is an in-memory repositories.CommentRepository
type CommentRepository struct {
	comments map[int]*models.Comment
	nextID   int
	mutex    sync.RWMutex
}

type edge struct{ user, author int }

// FollowRepository is an in-memory repositories.FollowRepository
type FollowRepository struct {
	edges map[edge]*models.Follow
	mutex sync.RWMutex
}

type resetEntry struct {
	userID  int
	expires time.Time
}

// ResetTokenRepository is an in-memory repositories.ResetTokenRepository
type ResetTokenRepository struct {
	tokens map[string]resetEntry
	mutex  sync.Mutex
}

// Repositories bundles one of each mock so services can be wired in a single call.
type Repositories struct {
	Users       *UserRepository
	Groups      *GroupRepository
	Posts       *PostRepository
	Comments    *CommentRepository
	Follows     *FollowRepository
	ResetTokens *ResetTokenRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Users:       NewUserRepository(),
		Groups:      NewGroupRepository(),
		Posts:       NewPostRepository(),
		Comments:    NewCommentRepository(),
		Follows:     NewFollowRepository(),
		ResetTokens: NewResetTokenRepository(),
	}
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int]*models.User), nextID: 1}
}

func NewGroupRepository() *GroupRepository {
	return &GroupRepository{groups: make(map[int]*models.Group), nextID: 1}
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[int]*models.Post), nextID: 1}
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{comments: make(map[int]*models.Comment), nextID: 1}
}

func NewFollowRepository() *FollowRepository {
	return &FollowRepository{edges: make(map[edge]*models.Follow)}
}

func NewResetTokenRepository() *ResetTokenRepository {
	return &ResetTokenRepository{tokens: make(map[string]resetEntry)}
}

// UserRepository implementation
func (m *UserRepository) Create(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, existing := range m.users {
		if existing.Username == user.Username {
			return repositories.ErrDuplicate
		}
	}
	user.ID = m.nextID
	m.nextID++
	u := *user
	m.users[user.ID] = &u
	return nil
}

func (m *UserRepository) GetByID(id int) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (m *UserRepository) GetByUsername(username string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			u := *user
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *UserRepository) FindByEmail(email string) ([]*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var users []*models.User
	for id := 1; id < m.nextID; id++ {
		if user, exists := m.users[id]; exists && user.Email != "" && strings.EqualFold(user.Email, email) {
			u := *user
			users = append(users, &u)
		}
	}
	return users, nil
}

func (m *UserRepository) Update(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.users[user.ID]; !exists {
		return repositories.ErrNotFound
	}
	for id, existing := range m.users {
		if id != user.ID && existing.Username == user.Username {
			return repositories.ErrDuplicate
		}
	}
	u := *user
	m.users[user.ID] = &u
	return nil
}

func (m *UserRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.users[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *UserRepository) Count() (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.users), nil
}

// GroupRepository implementation
func (m *GroupRepository) Create(group *models.Group) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, existing := range m.groups {
		if existing.Slug == group.Slug {
			return repositories.ErrDuplicate
		}
	}
	group.ID = m.nextID
	m.nextID++
	g := *group
	m.groups[group.ID] = &g
	return nil
}

func (m *GroupRepository) GetByID(id int) (*models.Group, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	group, exists := m.groups[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	g := *group
	return &g, nil
}

func (m *GroupRepository) GetBySlug(slug string) (*models.Group, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, group := range m.groups {
		if group.Slug == slug {
			g := *group
			return &g, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *GroupRepository) List() ([]*models.Group, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	groups := make([]*models.Group, 0, len(m.groups))
	for _, group := range m.groups {
		g := *group
		groups = append(groups, &g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Title < groups[j].Title })
	return groups, nil
}

func (m *GroupRepository) Update(group *models.Group) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.groups[group.ID]; !exists {
		return repositories.ErrNotFound
	}
	g := *group
	m.groups[group.ID] = &g
	return nil
}

func (m *GroupRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.groups[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.groups, id)
	return nil
}

// PostRepository implementation
func storedPost(post *models.Post) *models.Post {
	p := *post
	p.Author = nil
	p.Group = nil
	p.Comments = nil
	return &p
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[int]*models.Post)
	m.nextID = 1
}

func (m *PostRepository) Create(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post.ID = m.nextID
	m.nextID++
	m.posts[post.ID] = storedPost(post)
	return nil
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return storedPost(post), nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	m.posts[post.ID] = storedPost(post)
	return nil
}

func (m *PostRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *PostRepository) List(filter repositories.PostFilter, limit, offset int) ([]*models.Post, int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var authors map[int]bool
	if filter.AuthorIDs != nil {
		authors = make(map[int]bool, len(filter.AuthorIDs))
		for _, id := range filter.AuthorIDs {
			authors[id] = true
		}
	}

	var posts []*models.Post
	total := 0
	for id := m.nextID - 1; id >= 1; id-- {
		post, exists := m.posts[id]
		if !exists {
			continue
		}
		if filter.GroupID != 0 && !post.InGroup(filter.GroupID) {
			continue
		}
		if authors != nil && !authors[post.AuthorID] {
			continue
		}
		if total >= offset && (limit <= 0 || len(posts) < limit) {
			posts = append(posts, storedPost(post))
		}
		total++
	}
	return posts, total, nil
}

func (m *PostRepository) ClearGroup(groupID int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, post := range m.posts {
		if post.InGroup(groupID) {
			post.GroupID = nil
		}
	}
	return nil
}

// CommentRepository implementation
func (m *CommentRepository) Create(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	comment.ID = m.nextID
	m.nextID++
	c := *comment
	c.Author = nil
	m.comments[comment.ID] = &c
	return nil
}

func (m *CommentRepository) GetByID(id int) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	c := *comment
	return &c, nil
}

func (m *CommentRepository) Update(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[comment.ID]; !exists {
		return repositories.ErrNotFound
	}
	c := *comment
	c.Author = nil
	m.comments[comment.ID] = &c
	return nil
}

func (m *CommentRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var comments []*models.Comment
	for id := 1; id < m.nextID; id++ {
		if comment, exists := m.comments[id]; exists && comment.PostID == postID {
			c := *comment
			comments = append(comments, &c)
		}
	}
	return comments, nil
}

func (m *CommentRepository) DeleteByPost(postID int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for id, comment := range m.comments {
		if comment.PostID == postID {
			delete(m.comments, id)
		}
	}
	return nil
}

func (m *CommentRepository) DeleteByAuthor(authorID int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for id, comment := range m.comments {
		if comment.AuthorID == authorID {
			delete(m.comments, id)
		}
	}
	return nil
}

// FollowRepository implementation
func (m *FollowRepository) Create(follow *models.Follow) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	key := edge{follow.UserID, follow.AuthorID}
	if _, exists := m.edges[key]; exists {
		return repositories.ErrDuplicate
	}
	f := *follow
	m.edges[key] = &f
	return nil
}

func (m *FollowRepository) Delete(userID, authorID int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	key := edge{userID, authorID}
	if _, exists := m.edges[key]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.edges, key)
	return nil
}

func (m *FollowRepository) Exists(userID, authorID int) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	_, exists := m.edges[edge{userID, authorID}]
	return exists, nil
}

func (m *FollowRepository) ListAuthorIDs(userID int) ([]int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := []int{}
	for key := range m.edges {
		if key.user == userID {
			ids = append(ids, key.author)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (m *FollowRepository) ListFollowerIDs(authorID int) ([]int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := []int{}
	for key := range m.edges {
		if key.author == authorID {
			ids = append(ids, key.user)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (m *FollowRepository) DeleteAllFor(userID int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for key := range m.edges {
		if key.user == userID || key.author == userID {
			delete(m.edges, key)
		}
	}
	return nil
}

// ResetTokenRepository implementation
func (m *ResetTokenRepository) Create(token string, userID int, ttl time.Duration) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.tokens[token] = resetEntry{userID: userID, expires: time.Now().Add(ttl)}
	return nil
}

func (m *ResetTokenRepository) Get(token string) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	entry, exists := m.tokens[token]
	if !exists || time.Now().After(entry.expires) {
		return 0, repositories.ErrNotFound
	}
	return entry.userID, nil
}

func (m *ResetTokenRepository) Delete(token string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.tokens, token)
	return nil
}

func (m *ResetTokenRepository) DeleteAllFor(userID int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for token, entry := range m.tokens {
		if entry.userID == userID {
			delete(m.tokens, token)
		}
	}
	return nil
}

var (
	_ repositories.UserRepository       = (*UserRepository)(nil)
	_ repositories.GroupRepository      = (*GroupRepository)(nil)
	_ repositories.PostRepository       = (*PostRepository)(nil)
	_ repositories.CommentRepository    = (*CommentRepository)(nil)
	_ repositories.FollowRepository     = (*FollowRepository)(nil)
	_ repositories.ResetTokenRepository = (*ResetTokenRepository)(nil)
)

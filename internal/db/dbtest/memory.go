// Package dbtest provides an in-memory post store with the same
// contract as db.Store, for tests that exercise handlers and routing
// without PostgreSQL.
package dbtest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BorisDmv/posts-api/internal/models"
)

type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	posts  []models.Post

	// Now is used for created_at/updated_at. Defaults to time.Now.
	Now func() time.Time
	// Err, when set, is returned from every call. Use Fail to change it
	// while requests are in flight.
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, Now: time.Now}
}

// Seed inserts a post as-is, assigning an id and timestamps when unset.
func (m *MemoryStore) Seed(post models.Post) models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	if post.ID == 0 {
		post.ID = m.nextID
	}
	if post.ID >= m.nextID {
		m.nextID = post.ID + 1
	}
	now := m.now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	if post.UpdatedAt.IsZero() {
		post.UpdatedAt = now
	}
	m.posts = append(m.posts, post)
	return post
}

// Get returns a copy of the stored row without applying any filter.
func (m *MemoryStore) Get(id int64) (models.Post, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(id); i >= 0 {
		return m.posts[i], true
	}
	return models.Post{}, false
}

// Fail makes every subsequent call return err; nil restores normal service.
func (m *MemoryStore) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

func (m *MemoryStore) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}

func (m *MemoryStore) ListPublishedPosts(_ context.Context, limit, offset int) ([]models.Post, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}
	if offset < 0 || limit < 0 {
		return nil, 0, errors.New("limit and offset must not be negative")
	}

	var published []models.Post
	for _, post := range m.posts {
		if post.IsPublished() {
			published = append(published, post)
		}
	}
	total := len(published)
	if offset >= total {
		return []models.Post{}, total, nil
	}
	end := offset + limit
	if end > total || end < offset {
		end = total
	}
	page := make([]models.Post, end-offset)
	copy(page, published[offset:end])
	return page, total, nil
}

func (m *MemoryStore) GetPostByID(_ context.Context, id int64) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	i := m.index(id)
	if i < 0 {
		return nil, nil
	}
	post := m.posts[i]
	return &post, nil
}

func (m *MemoryStore) CreatePost(_ context.Context, fields models.PostFields) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if fields.UserID == nil || fields.Title == nil || fields.Content == nil {
		return nil, errors.New("user_id, title and content are required")
	}

	now := m.now()
	post := models.Post{
		ID:        m.nextID,
		UserID:    *fields.UserID,
		Title:     *fields.Title,
		Content:   *fields.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.nextID++
	apply(&post, fields)
	m.posts = append(m.posts, post)
	return &post, nil
}

func (m *MemoryStore) UpdatePost(_ context.Context, id int64, fields models.PostFields) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	i := m.index(id)
	if i < 0 {
		return nil, nil
	}
	post := m.posts[i]
	if fields.Title != nil {
		post.Title = *fields.Title
	}
	if fields.Content != nil {
		post.Content = *fields.Content
	}
	apply(&post, fields)
	post.UpdatedAt = m.now()
	m.posts[i] = post
	return &post, nil
}

func (m *MemoryStore) DeletePost(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if i := m.index(id); i >= 0 {
		m.posts = append(m.posts[:i], m.posts[i+1:]...)
	}
	return nil
}

func apply(post *models.Post, fields models.PostFields) {
	if fields.IsDraft != nil {
		post.IsDraft = *fields.IsDraft
	}
	if fields.PublishedAt != nil {
		if fields.PublishedAt.Valid {
			t := fields.PublishedAt.Time
			post.PublishedAt = &t
		} else {
			post.PublishedAt = nil
		}
	}
}

func (m *MemoryStore) index(id int64) int {
	for i, post := range m.posts {
		if post.ID == id {
			return i
		}
	}
	return -1
}

func (m *MemoryStore) now() time.Time {
	if m.Now == nil {
		return time.Now().UTC()
	}
	return m.Now().UTC()
}

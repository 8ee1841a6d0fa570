package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/BorisDmv/posts-api/internal/models"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS posts (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		title VARCHAR(255) NOT NULL,
		content TEXT NOT NULL,
		is_draft BOOLEAN NOT NULL DEFAULT false,
		published_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS posts_user_id_idx ON posts (user_id);
`

// publishedClause mirrors models.Post.IsPublished.
const publishedClause = `is_draft = false AND published_at IS NOT NULL`

const postColumns = `id, user_id, title, content, is_draft, published_at, created_at, updated_at`

var errNotInitialized = errors.New("db not initialized")

type Store struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying pgxpool.Pool
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "creating connection pool failed")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "pinging database failed")
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return errNotInitialized
	}
	return s.pool.Ping(ctx)
}

// Migrate creates the posts table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s.pool == nil {
		return errNotInitialized
	}
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "creating posts table failed")
	}
	return nil
}

func (s *Store) ListPublishedPosts(ctx context.Context, limit, offset int) ([]models.Post, int, error) {
	if s.pool == nil {
		return nil, 0, errNotInitialized
	}
	if limit < 0 || offset < 0 {
		return nil, 0, errors.Errorf("invalid page window: limit %d offset %d", limit, offset)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE `+publishedClause+`
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list posts")
	}
	defer rows.Close()

	posts := make([]models.Post, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "scan post")
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "rows error")
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM posts WHERE "+publishedClause).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count posts")
	}
	return posts, total, nil
}

// GetPostByID returns nil, nil when no row has the given id.
func (s *Store) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	if s.pool == nil {
		return nil, errNotInitialized
	}
	row := s.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get post %d", id)
	}
	return post, nil
}

func (s *Store) CreatePost(ctx context.Context, fields models.PostFields) (*models.Post, error) {
	if s.pool == nil {
		return nil, errNotInitialized
	}
	if fields.UserID == nil || fields.Title == nil || fields.Content == nil {
		return nil, errors.New("user_id, title and content are required")
	}

	isDraft := false
	if fields.IsDraft != nil {
		isDraft = *fields.IsDraft
	}
	var publishedAt any
	if fields.PublishedAt != nil {
		publishedAt = *fields.PublishedAt
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO posts (user_id, title, content, is_draft, published_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+postColumns,
		*fields.UserID,
		*fields.Title,
		*fields.Content,
		isDraft,
		publishedAt,
	)
	created, err := scanPost(row)
	if err != nil {
		return nil, errors.Wrap(err, "create post")
	}
	return created, nil
}

// UpdatePost writes the present allow-listed fields. UserID is never
// updated. It returns nil, nil when the row no longer exists.
func (s *Store) UpdatePost(ctx context.Context, id int64, fields models.PostFields) (*models.Post, error) {
	if s.pool == nil {
		return nil, errNotInitialized
	}

	sets := []string{"updated_at = now()"}
	args := []any{id}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if fields.Title != nil {
		set("title", *fields.Title)
	}
	if fields.Content != nil {
		set("content", *fields.Content)
	}
	if fields.IsDraft != nil {
		set("is_draft", *fields.IsDraft)
	}
	if fields.PublishedAt != nil {
		set("published_at", *fields.PublishedAt)
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE posts
		SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+postColumns,
		args...,
	)
	updated, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "update post %d", id)
	}
	return updated, nil
}

func (s *Store) DeletePost(ctx context.Context, id int64) error {
	if s.pool == nil {
		return errNotInitialized
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return errors.Wrapf(err, "delete post %d", id)
	}
	return nil
}

func scanPost(row pgx.Row) (*models.Post, error) {
	var post models.Post
	err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Title,
		&post.Content,
		&post.IsDraft,
		&post.PublishedAt,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

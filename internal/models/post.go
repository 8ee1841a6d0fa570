package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// PageSize is the fixed number of posts returned per listing page.
const PageSize = 20

type Post struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	IsDraft     bool       `json:"is_draft"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsPublished reports whether the post is visible to the public.
// Keep in sync with the WHERE clause used by the store's listing query.
func (p *Post) IsPublished() bool {
	return !p.IsDraft && p.PublishedAt != nil
}

// PostFields is the allow-list of writable post columns.
// A nil field is left untouched; PublishedAt with Valid=false writes NULL.
type PostFields struct {
	UserID      *int64
	Title       *string
	Content     *string
	IsDraft     *bool
	PublishedAt *pgtype.Timestamptz
}

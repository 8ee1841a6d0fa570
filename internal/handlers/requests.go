package handlers

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/BorisDmv/posts-api/internal/models"
	"github.com/BorisDmv/posts-api/internal/validation"
)

// StorePostRequest is the create schema. user_id comes from the payload,
// not from the authenticated actor.
type StorePostRequest struct {
	UserID      *int64     `json:"user_id" validate:"required,gt=0"`
	Title       *string    `json:"title" validate:"required,max=255"`
	Content     *string    `json:"content" validate:"required"`
	IsDraft     *bool      `json:"is_draft"`
	PublishedAt *time.Time `json:"published_at"`
}

func (req StorePostRequest) Fields(present validation.Present) models.PostFields {
	return models.PostFields{
		UserID:      req.UserID,
		Title:       req.Title,
		Content:     req.Content,
		IsDraft:     req.IsDraft,
		PublishedAt: publishedAt(present, req.PublishedAt),
	}
}

// UpdatePostRequest is the update schema. Ownership cannot change, so
// there is no user_id.
type UpdatePostRequest struct {
	Title       *string    `json:"title" validate:"required,max=255"`
	Content     *string    `json:"content" validate:"required"`
	IsDraft     *bool      `json:"is_draft"`
	PublishedAt *time.Time `json:"published_at"`
}

func (req UpdatePostRequest) Fields(present validation.Present) models.PostFields {
	return models.PostFields{
		Title:       req.Title,
		Content:     req.Content,
		IsDraft:     req.IsDraft,
		PublishedAt: publishedAt(present, req.PublishedAt),
	}
}

// publishedAt distinguishes an absent key (nil) from an explicit null.
func publishedAt(present validation.Present, t *time.Time) *pgtype.Timestamptz {
	if !present.Has("published_at") {
		return nil
	}
	if t == nil {
		return &pgtype.Timestamptz{}
	}
	return &pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}

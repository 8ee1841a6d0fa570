package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BorisDmv/posts-api/internal/models"
)

func TestIsPublished(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		isDraft     bool
		publishedAt *time.Time
		want        bool
	}{
		{name: "published", isDraft: false, publishedAt: &now, want: true},
		{name: "draft with date", isDraft: true, publishedAt: &now, want: false},
		{name: "not draft without date", isDraft: false, publishedAt: nil, want: false},
		{name: "draft without date", isDraft: true, publishedAt: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := models.Post{IsDraft: tt.isDraft, PublishedAt: tt.publishedAt}
			require.Equal(t, tt.want, post.IsPublished())
		})
	}
}

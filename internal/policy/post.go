// Package policy decides whether an actor may perform an action on a post.
package policy

import (
	"github.com/BorisDmv/posts-api/internal/auth"
	"github.com/BorisDmv/posts-api/internal/models"
)

type Action string

const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Authorizer interface {
	Allows(actor auth.Actor, action Action, post *models.Post) bool
}

// AuthorizerFunc adapts a plain function to Authorizer.
type AuthorizerFunc func(actor auth.Actor, action Action, post *models.Post) bool

func (f AuthorizerFunc) Allows(actor auth.Actor, action Action, post *models.Post) bool {
	return f(actor, action, post)
}

// PostPolicy lets only the owner update or delete a post.
type PostPolicy struct{}

func (PostPolicy) Allows(actor auth.Actor, action Action, post *models.Post) bool {
	if post == nil {
		return false
	}
	switch action {
	case ActionUpdate, ActionDelete:
		return actor.ID != 0 && actor.ID == post.UserID
	default:
		return false
	}
}

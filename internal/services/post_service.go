package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/stormhead-org/comments/internal/orm"
)

// PostDirectory resolves post ids. A missing post is reported as codes.NotFound.
type PostDirectory interface {
	GetPost(ctx context.Context, postID uuid.UUID) (*orm.Post, error)
}

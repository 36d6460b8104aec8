package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/stormhead-org/comments/internal/orm"
)

// UserDirectory resolves user ids. A missing user is reported as codes.NotFound.
type UserDirectory interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*orm.User, error)
}

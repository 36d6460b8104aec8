package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/stormhead-org/comments/internal/media"
	"github.com/stormhead-org/comments/internal/orm"
)

// CreateCommentInput names the parent of a new comment. When both ids are set
// PostID wins and CommentID is ignored.
type CreateCommentInput struct {
	Content   string
	PostID    *uuid.UUID
	CommentID *uuid.UUID
}

// CommentService defines the interface for comment-related operations.
type CommentService interface {
	GetComment(ctx context.Context, commentID uuid.UUID) (*orm.Comment, error)
	ListPostComments(ctx context.Context, postID uuid.UUID) ([]*orm.Comment, error)
	ListCommentReplies(ctx context.Context, commentID uuid.UUID) ([]*orm.Comment, error)
	CreateComment(ctx context.Context, input CreateCommentInput, authorID uuid.UUID, images []media.File) (*orm.Comment, error)
	DeleteComment(ctx context.Context, commentID, userID uuid.UUID) (string, error)
	ToggleLike(ctx context.Context, userID, commentID uuid.UUID) (*orm.Comment, error)
}

// CommentStore is the persistence the comment service relies on.
type CommentStore interface {
	SelectCommentByID(ctx context.Context, id uuid.UUID) (*orm.Comment, error)
	SelectCommentsByPostID(ctx context.Context, postID uuid.UUID) ([]*orm.Comment, error)
	SelectCommentsByParentCommentID(ctx context.Context, parentCommentID uuid.UUID) ([]*orm.Comment, error)
	InsertComment(ctx context.Context, comment *orm.Comment) error
	InsertCommentImage(ctx context.Context, image *orm.CommentImage) error
	DeleteCommentTree(ctx context.Context, id uuid.UUID) ([]orm.CommentImage, error)
	ToggleCommentLike(ctx context.Context, commentID, userID uuid.UUID) (bool, error)
}

// ImageDispatcher uploads images in the background.
type ImageDispatcher interface {
	FireAndForget(upload media.Upload)
}

// EventWriter publishes domain events.
type EventWriter interface {
	WriteMessage(ctx context.Context, event string, message any) error
}

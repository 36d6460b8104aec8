package orm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CommentID uuid.UUID `gorm:"type:uuid;not null;index"`
	ImageURL  string    `gorm:"not null"`
	ObjectKey string
	CreatedAt time.Time
}

func (i *CommentImage) TableName() string {
	return "comment_image"
}

func (i *CommentImage) BeforeCreate(transaction *gorm.DB) error {
	i.ID = uuid.New()
	return nil
}

// InsertCommentImage appends one image to a comment. Each call is a plain
// insert, so concurrent uploads for the same comment never overwrite each other.
func (c *PostgresClient) InsertCommentImage(ctx context.Context, image *CommentImage) error {
	return c.database.WithContext(ctx).Create(image).Error
}

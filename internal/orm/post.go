package orm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Post is the slice of the shared post table needed to resolve comment parents.
type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Author    User      `gorm:"foreignKey:AuthorID"`
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Post) TableName() string {
	return "post"
}

func (p *Post) BeforeCreate(transaction *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (c *PostgresClient) SelectPostByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	var post Post
	tx := c.database.WithContext(ctx).
		Select([]string{
			"id",
			"author_id",
			"content",
			"created_at",
			"updated_at",
		}).
		Where("id = ?", id).
		Preload("Author", selectUserSummary).
		First(&post)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &post, nil
}

func (c *PostgresClient) InsertPost(ctx context.Context, post *Post) error {
	transaction := c.database.WithContext(ctx).Omit(clause.Associations).Create(post)
	return transaction.Error
}

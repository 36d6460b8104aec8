package orm

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentLike is one membership of a comment's like set.
type CommentLike struct {
	CommentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

func (l *CommentLike) TableName() string {
	return "comment_like"
}

// ToggleCommentLike flips userID's membership in the comment's like set and
// reports the resulting state. The comment row stays locked until commit.
func (c *PostgresClient) ToggleCommentLike(ctx context.Context, commentID, userID uuid.UUID) (bool, error) {
	liked := false
	err := c.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockComment(tx, commentID); err != nil {
			return err
		}

		result := tx.
			Where("comment_id = ? AND user_id = ?", commentID, userID).
			Delete(&CommentLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		liked = true
		return tx.Create(&CommentLike{CommentID: commentID, UserID: userID}).Error
	})
	if err != nil {
		return false, err
	}

	return liked, nil
}

// ReplaceCommentLikes overwrites the whole like set of a comment and returns
// the updated comment.
func (c *PostgresClient) ReplaceCommentLikes(ctx context.Context, commentID uuid.UUID, userIDs []uuid.UUID) (*Comment, error) {
	err := c.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockComment(tx, commentID); err != nil {
			return err
		}

		if err := tx.Where("comment_id = ?", commentID).Delete(&CommentLike{}).Error; err != nil {
			return err
		}

		seen := make(map[uuid.UUID]bool, len(userIDs))
		likes := make([]CommentLike, 0, len(userIDs))
		for _, userID := range userIDs {
			if seen[userID] {
				continue
			}
			seen[userID] = true
			likes = append(likes, CommentLike{CommentID: commentID, UserID: userID})
		}
		if len(likes) == 0 {
			return nil
		}

		return tx.Create(&likes).Error
	})
	if err != nil {
		return nil, err
	}

	return c.SelectCommentByID(ctx, commentID)
}

package orm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvalidParent = errors.New("comment parent must be exactly one post or comment")

type ParentKind int

const (
	ParentPost ParentKind = iota + 1
	ParentComment
)

func (k ParentKind) String() string {
	switch k {
	case ParentPost:
		return "post"
	case ParentComment:
		return "comment"
	}
	return "invalid"
}

// ParentRef is the single post or comment a comment hangs under.
// The zero value is invalid; build one with PostParent or CommentParent.
type ParentRef struct {
	kind ParentKind
	id   uuid.UUID
}

func PostParent(postID uuid.UUID) ParentRef {
	return ParentRef{kind: ParentPost, id: postID}
}

func CommentParent(commentID uuid.UUID) ParentRef {
	return ParentRef{kind: ParentComment, id: commentID}
}

func (r ParentRef) Kind() ParentKind {
	return r.kind
}

func (r ParentRef) ID() uuid.UUID {
	return r.id
}

func (r ParentRef) Valid() bool {
	return r.kind != 0 && r.id != uuid.Nil
}

type Comment struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Content         string         `gorm:"not null"`
	AuthorID        uuid.UUID      `gorm:"type:uuid;not null;index"`
	Author          User           `gorm:"foreignKey:AuthorID"`
	PostID          *uuid.UUID     `gorm:"type:uuid;index"`
	Post            *Post          `gorm:"foreignKey:PostID"`
	ParentCommentID *uuid.UUID     `gorm:"type:uuid;index;check:chk_comment_parent,(post_id IS NULL) <> (parent_comment_id IS NULL)"`
	ParentComment   *Comment       `gorm:"foreignKey:ParentCommentID"`
	Replies         []Comment      `gorm:"foreignKey:ParentCommentID"`
	Images          []CommentImage `gorm:"foreignKey:CommentID"`
	Likes           []CommentLike  `gorm:"foreignKey:CommentID"`
	CreatedAt       time.Time
}

// NewComment builds an unsaved comment whose parent columns mirror parent.
func NewComment(authorID uuid.UUID, content string, parent ParentRef) *Comment {
	comment := &Comment{
		AuthorID: authorID,
		Content:  content,
	}

	id := parent.id
	switch parent.kind {
	case ParentPost:
		comment.PostID = &id
	case ParentComment:
		comment.ParentCommentID = &id
	}

	return comment
}

func (c *Comment) TableName() string {
	return "comment"
}

func (c *Comment) BeforeCreate(transaction *gorm.DB) error {
	if !c.Parent().Valid() {
		return ErrInvalidParent
	}
	c.ID = uuid.New()
	return nil
}

// Parent reports the comment's parent, or the zero ParentRef when the row
// carries neither or both parent columns.
func (c *Comment) Parent() ParentRef {
	switch {
	case c.PostID != nil && c.ParentCommentID == nil:
		return PostParent(*c.PostID)
	case c.ParentCommentID != nil && c.PostID == nil:
		return CommentParent(*c.ParentCommentID)
	}
	return ParentRef{}
}

// LikedBy reports whether userID is in the loaded like set.
func (c *Comment) LikedBy(userID uuid.UUID) bool {
	for _, like := range c.Likes {
		if like.UserID == userID {
			return true
		}
	}
	return false
}

func selectUserSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "first_name", "avatar", "is_verified")
}

func selectReplyIDs(db *gorm.DB) *gorm.DB {
	return db.Select("id", "parent_comment_id", "created_at").Order("created_at ASC, id ASC")
}

func selectParentSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "author_id", "post_id", "parent_comment_id")
}

func selectPostSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "author_id")
}

func orderImages(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

func orderLikes(db *gorm.DB) *gorm.DB {
	return db.Order("user_id ASC")
}

// commentQuery preloads the relations every comment read carries: author
// summary, images, like set and direct reply ids.
func (c *PostgresClient) commentQuery(ctx context.Context) *gorm.DB {
	return c.database.WithContext(ctx).
		Select([]string{
			"id",
			"content",
			"author_id",
			"post_id",
			"parent_comment_id",
			"created_at",
		}).
		Preload("Author", selectUserSummary).
		Preload("Images", orderImages).
		Preload("Likes", orderLikes).
		Preload("Replies", selectReplyIDs)
}

func (c *PostgresClient) SelectCommentByID(ctx context.Context, id uuid.UUID) (*Comment, error) {
	var comment Comment
	tx := c.commentQuery(ctx).
		Preload("Post", selectPostSummary).
		Preload("Post.Author", selectUserSummary).
		Preload("ParentComment", selectParentSummary).
		Preload("ParentComment.Author", selectUserSummary).
		Where("id = ?", id).
		First(&comment)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &comment, nil
}

func (c *PostgresClient) SelectCommentsByPostID(ctx context.Context, postID uuid.UUID) ([]*Comment, error) {
	comments := []*Comment{}
	tx := c.commentQuery(ctx).
		Preload("Post", selectPostSummary).
		Preload("Post.Author", selectUserSummary).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return comments, nil
}

func (c *PostgresClient) SelectCommentsByParentCommentID(ctx context.Context, parentCommentID uuid.UUID) ([]*Comment, error) {
	comments := []*Comment{}
	tx := c.commentQuery(ctx).
		Preload("ParentComment", selectParentSummary).
		Preload("ParentComment.Author", selectUserSummary).
		Where("parent_comment_id = ?", parentCommentID).
		Order("created_at ASC, id ASC").
		Find(&comments)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return comments, nil
}

func (c *PostgresClient) InsertComment(ctx context.Context, comment *Comment) error {
	transaction := c.database.WithContext(ctx).Omit(clause.Associations).Create(comment)
	return transaction.Error
}

// DeleteCommentTree removes the comment, every reply below it, and their images
// and likes in one transaction. The removed image rows are returned so their
// objects can be cleaned up.
func (c *PostgresClient) DeleteCommentTree(ctx context.Context, id uuid.UUID) ([]CommentImage, error) {
	removed := []CommentImage{}
	err := c.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := selectCommentSubtree(tx, id)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("comment_id IN ?", ids).Find(&removed).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id IN ?", ids).Delete(&CommentImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id IN ?", ids).Delete(&CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&Comment{}).Error
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

func selectCommentSubtree(tx *gorm.DB, id uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.Raw(`
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM comment WHERE id = ?
			UNION ALL
			SELECT c.id FROM comment c JOIN subtree s ON c.parent_comment_id = s.id
		)
		SELECT id FROM subtree`, id).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// lockComment takes a row lock on the comment for the rest of tx, serializing
// like-set writers of the same comment.
func lockComment(tx *gorm.DB, id uuid.UUID) error {
	var comment Comment
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		First(&comment).Error
}

package orm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the slice of the shared user table this service reads. Accounts are
// owned by the users service; rows are only inserted here by migrations and tests.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username   string    `gorm:"uniqueIndex;not null"`
	Email      string
	FirstName  string
	LastName   string
	Avatar     string
	IsVerified bool `gorm:"default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the name of the table for the User model
func (u *User) TableName() string {
	return "user"
}

func (u *User) BeforeCreate(transaction *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (c *PostgresClient) SelectUserByID(ctx context.Context, ID uuid.UUID) (*User, error) {
	var user User
	tx := c.database.WithContext(ctx).
		Select(
			[]string{
				"id",
				"username",
				"email",
				"first_name",
				"last_name",
				"avatar",
				"is_verified",
				"created_at",
				"updated_at",
			},
		).
		Where("id = ?", ID).
		First(&user)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &user, nil
}

func (c *PostgresClient) InsertUser(ctx context.Context, user *User) error {
	tx := c.database.WithContext(ctx).Create(user)
	return tx.Error
}

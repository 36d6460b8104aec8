package orm

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PostgresClient struct {
	database *gorm.DB
}

func NewPostgresClient(host string, port string, user string, password string, name string, maxConns int) (*PostgresClient, error) {
	database, err := gorm.Open(
		postgres.Open(
			fmt.Sprintf(
				"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
				host,
				port,
				user,
				password,
				name,
			),
		),
		&gorm.Config{},
	)
	if err != nil {
		return nil, err
	}

	rawDatabase, err := database.DB()
	if err != nil {
		return nil, err
	}

	if maxConns < 1 {
		maxConns = 1
	}
	rawDatabase.SetMaxOpenConns(maxConns)
	rawDatabase.SetMaxIdleConns(maxConns)
	rawDatabase.SetConnMaxIdleTime(5 * time.Second)

	return NewClient(database), nil
}

// NewClient wraps an already opened gorm handle.
func NewClient(database *gorm.DB) *PostgresClient {
	return &PostgresClient{
		database: database,
	}
}

// Migrate creates or updates the tables the comment service reads and writes.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	return c.database.WithContext(ctx).AutoMigrate(
		&User{},
		&Post{},
		&Comment{},
		&CommentImage{},
		&CommentLike{},
	)
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	rawDatabase, err := c.database.DB()
	if err != nil {
		return err
	}
	return rawDatabase.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	rawDatabase, err := c.database.DB()
	if err != nil {
		return err
	}
	return rawDatabase.Close()
}

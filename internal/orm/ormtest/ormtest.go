// Package ormtest opens throwaway in-memory stores for package tests.
package ormtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stormhead-org/comments/internal/orm"
)

// NewClient returns a migrated client backed by a private in-memory SQLite
// database that lives as long as the test.
func NewClient(t testing.TB) *orm.PostgresClient {
	t.Helper()

	database, err := gorm.Open(
		sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)

	rawDatabase, err := database.DB()
	require.NoError(t, err)
	rawDatabase.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = rawDatabase.Close() })

	client := orm.NewClient(database)
	require.NoError(t, client.Migrate(context.Background()))
	return client
}

func InsertUser(t testing.TB, client *orm.PostgresClient, username string) *orm.User {
	t.Helper()
	user := &orm.User{
		Username:  username,
		FirstName: username,
		Email:     username + "@example.com",
		Avatar:    "https://cdn.example.com/" + username + ".png",
	}
	require.NoError(t, client.InsertUser(context.Background(), user))
	return user
}

func InsertPost(t testing.TB, client *orm.PostgresClient, author *orm.User) *orm.Post {
	t.Helper()
	post := &orm.Post{AuthorID: author.ID, Content: "post by " + author.Username}
	require.NoError(t, client.InsertPost(context.Background(), post))
	return post
}

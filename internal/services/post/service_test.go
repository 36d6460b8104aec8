package post

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stormhead-org/comments/internal/orm/ormtest"
)

func TestGetPost(t *testing.T) {
	client := ormtest.NewClient(t)
	bob := ormtest.InsertUser(t, client, "bob")
	created := ormtest.InsertPost(t, client, bob)
	directory := NewPostService(client, zap.NewNop())

	post, err := directory.GetPost(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, post.ID)
	assert.Equal(t, "bob", post.Author.Username)

	_, err = directory.GetPost(context.Background(), uuid.New())
	assert.Equal(t, codes.NotFound, status.Code(err))
}

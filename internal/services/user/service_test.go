package user

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

func TestGetUserByID(t *testing.T) {
	client := ormtest.NewClient(t)
	alice := ormtest.InsertUser(t, client, "alice")
	directory := NewUserService(zap.NewNop(), client)

	user, err := directory.GetUserByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = directory.GetUserByID(context.Background(), uuid.New())
	assert.Equal(t, codes.NotFound, status.Code(err))
}

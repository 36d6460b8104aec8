package middleware

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "user_id"

var ErrNoUser = errors.New("no user in context")

func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func GetUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", ErrNoUser
	}
	return userID, nil
}

func GetUserUUID(ctx context.Context) (uuid.UUID, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(userID)
}

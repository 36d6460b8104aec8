package user

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	ormpkg "github.com/stormhead-org/comments/internal/orm"
	"github.com/stormhead-org/comments/internal/services"
)

type UserServiceImpl struct {
	log      *zap.Logger
	database *ormpkg.PostgresClient
}

func NewUserService(log *zap.Logger, database *ormpkg.PostgresClient) services.UserDirectory {
	return &UserServiceImpl{
		log:      log,
		database: database,
	}
}

func (s *UserServiceImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*ormpkg.User, error) {
	user, err := s.database.SelectUserByID(ctx, userID)
	if err == gorm.ErrRecordNotFound {
		s.log.Debug("user not found", zap.String("user_id", userID.String()))
		return nil, status.Errorf(codes.NotFound, "user not found")
	}
	if err != nil {
		s.log.Error("error selecting user by id", zap.Error(err))
		return nil, status.Errorf(codes.Internal, "database error")
	}
	return user, nil
}

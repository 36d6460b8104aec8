package post

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/stormhead-org/comments/internal/orm"
	"github.com/stormhead-org/comments/internal/services"
)

type PostServiceImpl struct {
	db  *orm.PostgresClient
	log *zap.Logger
}

func NewPostService(db *orm.PostgresClient, log *zap.Logger) services.PostDirectory {
	return &PostServiceImpl{
		db:  db,
		log: log,
	}
}

func (s *PostServiceImpl) GetPost(ctx context.Context, postID uuid.UUID) (*orm.Post, error) {
	post, err := s.db.SelectPostByID(ctx, postID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, status.Errorf(codes.NotFound, "post not found")
		}
		s.log.Error("error selecting post by id", zap.Error(err))
		return nil, status.Errorf(codes.Internal, "database error")
	}
	return post, nil
}

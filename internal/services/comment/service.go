package comment

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	eventpkg "github.com/stormhead-org/comments/internal/event"
	"github.com/stormhead-org/comments/internal/media"
	metricspkg "github.com/stormhead-org/comments/internal/metrics"
	ormpkg "github.com/stormhead-org/comments/internal/orm"
	"github.com/stormhead-org/comments/internal/services"
)

const DeletedMessage = "Comment has been deleted"

type CommentServiceImpl struct {
	log     *zap.Logger
	store   services.CommentStore
	users   services.UserDirectory
	posts   services.PostDirectory
	images  services.ImageDispatcher
	broker  services.EventWriter
	metrics *metricspkg.Metrics
}

func NewCommentService(
	log *zap.Logger,
	store services.CommentStore,
	users services.UserDirectory,
	posts services.PostDirectory,
	images services.ImageDispatcher,
	broker services.EventWriter,
	metrics *metricspkg.Metrics,
) services.CommentService {
	return &CommentServiceImpl{
		log:     log,
		store:   store,
		users:   users,
		posts:   posts,
		images:  images,
		broker:  broker,
		metrics: metrics,
	}
}

func (s *CommentServiceImpl) GetComment(ctx context.Context, commentID uuid.UUID) (*ormpkg.Comment, error) {
	return s.selectComment(ctx, commentID)
}

func (s *CommentServiceImpl) ListPostComments(ctx context.Context, postID uuid.UUID) ([]*ormpkg.Comment, error) {
	_, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments, err := s.store.SelectCommentsByPostID(ctx, postID)
	if err != nil {
		s.log.Error("internal error", zap.Error(err))
		return nil, status.Errorf(codes.Internal, "database error")
	}
	return comments, nil
}

func (s *CommentServiceImpl) ListCommentReplies(ctx context.Context, commentID uuid.UUID) ([]*ormpkg.Comment, error) {
	_, err := s.selectComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	comments, err := s.store.SelectCommentsByParentCommentID(ctx, commentID)
	if err != nil {
		s.log.Error("internal error", zap.Error(err))
		return nil, status.Errorf(codes.Internal, "database error")
	}
	return comments, nil
}

// CreateComment persists the comment and returns it right away. Images are
// handed to the dispatcher afterwards and show up on later reads only.
func (s *CommentServiceImpl) CreateComment(ctx context.Context, input services.CreateCommentInput, authorID uuid.UUID, images []media.File) (*ormpkg.Comment, error) {
	author, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		media.Discard(images)
		return nil, err
	}

	comment, err := s.newComment(ctx, input, author)
	if err != nil {
		media.Discard(images)
		return nil, err
	}

	err = s.store.InsertComment(ctx, comment)
	if err != nil {
		media.Discard(images)
		s.log.Error("error inserting comment", zap.Error(err))
		return nil, status.Errorf(codes.Internal, "could not create comment")
	}
	s.metrics.CommentsCreated.Inc()

	for _, file := range images {
		s.images.FireAndForget(media.Upload{
			CommentID: comment.ID,
			File:      file,
			Attach:    s.attachImage(comment.ID),
		})
	}

	message := eventpkg.CommentCreateMessage{
		ID:       comment.ID.String(),
		AuthorID: author.ID.String(),
	}
	if comment.PostID != nil {
		message.PostID = comment.PostID.String()
	}
	if comment.ParentCommentID != nil {
		message.ParentCommentID = comment.ParentCommentID.String()
	}
	s.publish(ctx, eventpkg.COMMENT_CREATE, message)

	return comment, nil
}

// newComment resolves the parent. A post id takes precedence over a comment id.
func (s *CommentServiceImpl) newComment(ctx context.Context, input services.CreateCommentInput, author *ormpkg.User) (*ormpkg.Comment, error) {
	var comment *ormpkg.Comment
	switch {
	case input.PostID != nil:
		post, err := s.posts.GetPost(ctx, *input.PostID)
		if err != nil {
			return nil, err
		}
		comment = ormpkg.NewComment(author.ID, input.Content, ormpkg.PostParent(post.ID))
		comment.Post = post

	case input.CommentID != nil:
		parent, err := s.selectComment(ctx, *input.CommentID)
		if err != nil {
			return nil, err
		}
		comment = ormpkg.NewComment(author.ID, input.Content, ormpkg.CommentParent(parent.ID))
		comment.ParentComment = parent

	default:
		s.log.Debug("comment without parent", zap.String("author_id", author.ID.String()))
		return nil, status.Errorf(codes.NotFound, "parent not found")
	}

	comment.Author = *author
	comment.Images = []ormpkg.CommentImage{}
	comment.Likes = []ormpkg.CommentLike{}
	comment.Replies = []ormpkg.Comment{}
	return comment, nil
}

func (s *CommentServiceImpl) attachImage(commentID uuid.UUID) media.AttachFunc {
	return func(ctx context.Context, url string, objectKey string) error {
		image := &ormpkg.CommentImage{
			CommentID: commentID,
			ImageURL:  url,
			ObjectKey: objectKey,
		}
		err := s.store.InsertCommentImage(ctx, image)
		if err != nil {
			return err
		}

		s.publish(ctx, eventpkg.COMMENT_IMAGE_ATTACH, eventpkg.CommentImageAttachMessage{
			CommentID: commentID.String(),
			ImageID:   image.ID.String(),
			ImageURL:  url,
		})
		return nil
	}
}

func (s *CommentServiceImpl) DeleteComment(ctx context.Context, commentID, userID uuid.UUID) (string, error) {
	_, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}

	comment, err := s.selectComment(ctx, commentID)
	if err != nil {
		return "", err
	}

	if comment.AuthorID != userID {
		s.log.Debug("wrong comment ownership",
			zap.String("comment_id", commentID.String()),
			zap.String("user_id", userID.String()),
		)
		return "", status.Errorf(codes.PermissionDenied, "not an owner")
	}

	removed, err := s.store.DeleteCommentTree(ctx, commentID)
	if err == gorm.ErrRecordNotFound {
		s.log.Debug("comment not found", zap.String("comment_id", commentID.String()))
		return "", status.Errorf(codes.NotFound, "comment not found")
	}
	if err != nil {
		s.log.Error("error deleting comment", zap.Error(err))
		return "", status.Errorf(codes.Internal, "could not delete comment")
	}
	s.metrics.CommentsDeleted.Inc()

	objectKeys := make([]string, 0, len(removed))
	for _, image := range removed {
		if image.ObjectKey != "" {
			objectKeys = append(objectKeys, image.ObjectKey)
		}
	}
	s.publish(ctx, eventpkg.COMMENT_DELETE, eventpkg.CommentDeleteMessage{
		ID:         commentID.String(),
		ObjectKeys: objectKeys,
	})

	return DeletedMessage, nil
}

// ToggleLike flips the user's like on the comment. The flip happens inside the
// store under a row lock, so concurrent toggles on one comment never lose each other.
func (s *CommentServiceImpl) ToggleLike(ctx context.Context, userID, commentID uuid.UUID) (*ormpkg.Comment, error) {
	_, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	_, err = s.selectComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	liked, err := s.store.ToggleCommentLike(ctx, commentID, userID)
	if err == gorm.ErrRecordNotFound {
		s.log.Debug("comment not found", zap.String("comment_id", commentID.String()))
		return nil, status.Errorf(codes.NotFound, "comment not found")
	}
	if err != nil {
		s.log.Error("error toggling comment like", zap.Error(err))
		return nil, status.Errorf(codes.Internal, "could not like comment")
	}

	event := eventpkg.COMMENT_UNLIKE
	state := "unliked"
	if liked {
		event = eventpkg.COMMENT_LIKE
		state = "liked"
	}
	s.metrics.LikesToggled.WithLabelValues(state).Inc()
	s.publish(ctx, event, eventpkg.CommentLikeMessage{
		CommentID: commentID.String(),
		UserID:    userID.String(),
	})

	return s.selectComment(ctx, commentID)
}

func (s *CommentServiceImpl) selectComment(ctx context.Context, commentID uuid.UUID) (*ormpkg.Comment, error) {
	comment, err := s.store.SelectCommentByID(ctx, commentID)
	if err == gorm.ErrRecordNotFound {
		s.log.Debug("comment not found", zap.String("comment_id", commentID.String()))
		return nil, status.Errorf(codes.NotFound, "comment not found")
	}
	if err != nil {
		s.log.Error("internal error", zap.Error(err))
		return nil, status.Errorf(codes.Internal, "database error")
	}
	return comment, nil
}

// publish never fails the caller; the change is already committed.
func (s *CommentServiceImpl) publish(ctx context.Context, event string, message any) {
	err := s.broker.WriteMessage(ctx, event, message)
	if err != nil {
		s.log.Error("error writing message to broker", zap.String("event", event), zap.Error(err))
	}
}

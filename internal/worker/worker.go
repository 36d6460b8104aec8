package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	eventpkg "github.com/stormhead-org/comments/internal/event"
)

const blobTimeout = 30 * time.Second

type MessageReader interface {
	ReadMessage(ctx context.Context) (string, string, error)
}

type BlobRemover interface {
	DeleteFile(ctx context.Context, key string) error
}

type Worker struct {
	context      context.Context
	cancel       func()
	waitGroup    sync.WaitGroup
	logger       *zap.Logger
	router       *Router
	brokerClient MessageReader
	blobs        BlobRemover
}

func NewWorker(logger *zap.Logger, brokerClient MessageReader, blobs BlobRemover) *Worker {
	context, cancel := context.WithCancel(context.Background())
	this := &Worker{
		context:      context,
		cancel:       cancel,
		logger:       logger,
		brokerClient: brokerClient,
		blobs:        blobs,
	}
	this.router = NewRouter(
		map[string][]EventHandler{
			eventpkg.COMMENT_CREATE: {
				this.CommentCreateHandler,
			},
			eventpkg.COMMENT_DELETE: {
				this.CommentDeleteHandler,
			},
			eventpkg.COMMENT_LIKE: {
				this.CommentLikeHandler,
			},
			eventpkg.COMMENT_UNLIKE: {
				this.CommentLikeHandler,
			},
			eventpkg.COMMENT_IMAGE_ATTACH: {
				this.CommentImageAttachHandler,
			},
		},
	)
	return this
}

func (this *Worker) Start() error {
	this.logger.Info("starting comment worker")

	this.waitGroup.Add(1)
	go this.worker()
	return nil
}

func (this *Worker) Stop() error {
	this.logger.Info("stopping comment worker")

	this.cancel()
	this.waitGroup.Wait()
	return nil
}

func (this *Worker) worker() {
	defer this.waitGroup.Done()

	for {
		select {
		case <-this.context.Done():
			return
		case <-time.After(1 * time.Millisecond):
		}

		event, data, err := this.brokerClient.ReadMessage(this.context)
		if errors.Is(err, context.Canceled) {
			return
		}
		if err != nil {
			this.logger.Error("error receiving kafka message", zap.Error(err))
			continue
		}

		if !this.router.Handles(event) {
			this.logger.Debug("skipping kafka message", zap.String("event", event))
			continue
		}

		err = this.router.Handle(event, []byte(data))
		if err != nil {
			this.logger.Error("error handling kafka message", zap.Error(err))
			continue
		}
	}
}

func (this *Worker) CommentCreateHandler(data []byte) error {
	var message eventpkg.CommentCreateMessage
	err := json.Unmarshal(data, &message)
	if err != nil {
		return err
	}

	this.logger.Info("comment created",
		zap.String("id", message.ID),
		zap.String("author_id", message.AuthorID),
		zap.String("post_id", message.PostID),
		zap.String("parent_comment_id", message.ParentCommentID),
	)
	return nil
}

// CommentDeleteHandler removes the image objects of a deleted comment subtree.
// Every key is attempted; the failures are returned together.
func (this *Worker) CommentDeleteHandler(data []byte) error {
	var message eventpkg.CommentDeleteMessage
	err := json.Unmarshal(data, &message)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(this.context, blobTimeout)
	defer cancel()

	var errs []error
	for _, key := range message.ObjectKeys {
		if err := this.blobs.DeleteFile(ctx, key); err != nil {
			errs = append(errs, err)
			continue
		}
		this.logger.Debug("removed comment image", zap.String("object_key", key))
	}

	this.logger.Info("comment deleted",
		zap.String("id", message.ID),
		zap.Int("images", len(message.ObjectKeys)),
		zap.Int("failed", len(errs)),
	)
	return errors.Join(errs...)
}

func (this *Worker) CommentLikeHandler(data []byte) error {
	var message eventpkg.CommentLikeMessage
	err := json.Unmarshal(data, &message)
	if err != nil {
		return err
	}

	this.logger.Debug("comment like toggled",
		zap.String("comment_id", message.CommentID),
		zap.String("user_id", message.UserID),
	)
	return nil
}

func (this *Worker) CommentImageAttachHandler(data []byte) error {
	var message eventpkg.CommentImageAttachMessage
	err := json.Unmarshal(data, &message)
	if err != nil {
		return err
	}

	this.logger.Info("comment image attached",
		zap.String("comment_id", message.CommentID),
		zap.String("image_id", message.ImageID),
	)
	return nil
}

package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	metricspkg "github.com/stormhead-org/comments/internal/metrics"
)

var ErrStopped = errors.New("dispatcher stopped")

// Uploader puts one object into durable storage and returns its public URL.
type Uploader interface {
	UploadFile(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}

// AttachFunc records a finished upload. It runs only after the object is stored.
type AttachFunc func(ctx context.Context, url string, objectKey string) error

type Upload struct {
	CommentID uuid.UUID
	File      File
	Attach    AttachFunc
}

type Config struct {
	Prefix  string
	Timeout time.Duration
	Rate    float64
	Burst   int
}

type Dispatcher struct {
	logger    *zap.Logger
	uploader  Uploader
	metrics   *metricspkg.Metrics
	limiter   *rate.Limiter
	prefix    string
	timeout   time.Duration
	waitGroup sync.WaitGroup
	mutex     sync.Mutex
	stopped   bool
}

func NewDispatcher(logger *zap.Logger, uploader Uploader, metrics *metricspkg.Metrics, config Config) *Dispatcher {
	limit := rate.Inf
	if config.Rate > 0 {
		limit = rate.Limit(config.Rate)
	}
	burst := config.Burst
	if burst < 1 {
		burst = 1
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	return &Dispatcher{
		logger:   logger,
		uploader: uploader,
		metrics:  metrics,
		limiter:  rate.NewLimiter(limit, burst),
		prefix:   strings.Trim(config.Prefix, "/"),
		timeout:  timeout,
	}
}

// FireAndForget hands the upload to its own goroutine and returns immediately.
// Nobody waits for it and it is never retried; a failure only shows up in the
// log and the image_uploads_total{result="failure"} counter. The upload runs on
// a fresh context, so the request that started it may finish or be cancelled
// without affecting it. The staged file is removed once the goroutine is done.
func (d *Dispatcher) FireAndForget(upload Upload) {
	d.mutex.Lock()
	if d.stopped {
		d.mutex.Unlock()
		d.fail(upload, "", ErrStopped)
		d.discard(upload.File)
		return
	}
	d.waitGroup.Add(1)
	d.mutex.Unlock()

	go d.run(upload)
}

// Stop refuses new uploads and waits for the ones in flight until ctx ends.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mutex.Lock()
	d.stopped = true
	d.mutex.Unlock()

	done := make(chan struct{})
	go func() {
		d.waitGroup.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("image uploads drained")
		return nil
	case <-ctx.Done():
		d.logger.Warn("image uploads still in flight at shutdown", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

// ObjectKey places every image of a comment under <prefix>/<comment id>/.
func (d *Dispatcher) ObjectKey(commentID uuid.UUID, name string) string {
	key := commentID.String() + "/" + uuid.NewString() + strings.ToLower(filepath.Ext(name))
	if d.prefix == "" {
		return key
	}
	return path.Join(d.prefix, key)
}

func (d *Dispatcher) run(upload Upload) {
	defer d.waitGroup.Done()
	defer d.discard(upload.File)

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	key := d.ObjectKey(upload.CommentID, upload.File.Name)
	if err := d.upload(ctx, upload, key); err != nil {
		d.fail(upload, key, err)
		return
	}

	d.metrics.ImageUploads.WithLabelValues("success").Inc()
	d.logger.Debug("image attached",
		zap.String("comment_id", upload.CommentID.String()),
		zap.String("object_key", key),
	)
}

func (d *Dispatcher) upload(ctx context.Context, upload Upload, key string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for upload slot: %w", err)
	}

	file, err := os.Open(upload.File.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	url, err := d.uploader.UploadFile(ctx, key, file, upload.File.ContentType)
	if err != nil {
		return err
	}

	if err := upload.Attach(ctx, url, key); err != nil {
		// The row never appeared, so the object would be unreachable.
		if deleteErr := d.uploader.DeleteFile(ctx, key); deleteErr != nil {
			d.logger.Error("failed to remove unattached image", zap.String("object_key", key), zap.Error(deleteErr))
		}
		return fmt.Errorf("attaching image: %w", err)
	}

	return nil
}

func (d *Dispatcher) fail(upload Upload, key string, err error) {
	d.metrics.ImageUploads.WithLabelValues("failure").Inc()
	d.logger.Error("image upload failed",
		zap.String("comment_id", upload.CommentID.String()),
		zap.String("file", upload.File.Name),
		zap.String("object_key", key),
		zap.Error(err),
	)
}

func (d *Dispatcher) discard(file File) {
	if file.Path == "" {
		return
	}
	if err := os.Remove(file.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		d.logger.Warn("failed to remove staged image", zap.String("path", file.Path), zap.Error(err))
	}
}

package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	metricspkg "github.com/stormhead-org/comments/internal/metrics"
)

type fakeUploader struct {
	mutex   sync.Mutex
	release chan struct{}
	err     error
	bodies  map[string]string
	deleted []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{bodies: map[string]string{}}
}

func (u *fakeUploader) UploadFile(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if u.release != nil {
		select {
		case <-u.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if u.err != nil {
		return "", u.err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	u.mutex.Lock()
	defer u.mutex.Unlock()
	u.bodies[key] = string(data)
	return "https://cdn.example.com/" + key, nil
}

func (u *fakeUploader) DeleteFile(ctx context.Context, key string) error {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	u.deleted = append(u.deleted, key)
	return nil
}

type attached struct {
	mutex sync.Mutex
	urls  []string
}

func (a *attached) attach(ctx context.Context, url string, objectKey string) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.urls = append(a.urls, url)
	return nil
}

func (a *attached) list() []string {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return append([]string(nil), a.urls...)
}

func stageFile(t *testing.T, name string, content string) File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return File{Path: path, Name: name, ContentType: "image/png"}
}

func newTestDispatcher(uploader Uploader) (*Dispatcher, *metricspkg.Metrics) {
	metrics := metricspkg.NewMetrics()
	dispatcher := NewDispatcher(zap.NewNop(), uploader, metrics, Config{
		Prefix:  "comments/images",
		Timeout: 5 * time.Second,
	})
	return dispatcher, metrics
}

func TestFireAndForgetDoesNotBlock(t *testing.T) {
	uploader := newFakeUploader()
	uploader.release = make(chan struct{})
	dispatcher, metrics := newTestDispatcher(uploader)

	commentID := uuid.New()
	sink := &attached{}
	files := []File{stageFile(t, "a.png", "aaa"), stageFile(t, "b.PNG", "bbb")}

	for _, file := range files {
		dispatcher.FireAndForget(Upload{CommentID: commentID, File: file, Attach: sink.attach})
	}
	assert.Empty(t, sink.list())

	close(uploader.release)
	require.NoError(t, dispatcher.Stop(context.Background()))

	urls := sink.list()
	assert.Len(t, urls, 2)
	for _, url := range urls {
		assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/comments/images/"+commentID.String()+"/"), url)
		assert.True(t, strings.HasSuffix(url, ".png"), url)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ImageUploads.WithLabelValues("success")))

	for _, file := range files {
		_, err := os.Stat(file.Path)
		assert.True(t, os.IsNotExist(err), "staged file %s left behind", file.Path)
	}
}

func TestFireAndForgetUploadFailure(t *testing.T) {
	uploader := newFakeUploader()
	uploader.err = errors.New("bucket unavailable")
	dispatcher, metrics := newTestDispatcher(uploader)

	sink := &attached{}
	file := stageFile(t, "a.png", "aaa")
	dispatcher.FireAndForget(Upload{CommentID: uuid.New(), File: file, Attach: sink.attach})
	require.NoError(t, dispatcher.Stop(context.Background()))

	assert.Empty(t, sink.list())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ImageUploads.WithLabelValues("failure")))
	_, err := os.Stat(file.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestFireAndForgetAttachFailureRemovesObject(t *testing.T) {
	uploader := newFakeUploader()
	dispatcher, metrics := newTestDispatcher(uploader)

	dispatcher.FireAndForget(Upload{
		CommentID: uuid.New(),
		File:      stageFile(t, "a.png", "aaa"),
		Attach: func(ctx context.Context, url string, objectKey string) error {
			return errors.New("comment is gone")
		},
	})
	require.NoError(t, dispatcher.Stop(context.Background()))

	assert.Len(t, uploader.deleted, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ImageUploads.WithLabelValues("failure")))
}

func TestFireAndForgetAfterStop(t *testing.T) {
	uploader := newFakeUploader()
	dispatcher, metrics := newTestDispatcher(uploader)
	require.NoError(t, dispatcher.Stop(context.Background()))

	sink := &attached{}
	file := stageFile(t, "a.png", "aaa")
	dispatcher.FireAndForget(Upload{CommentID: uuid.New(), File: file, Attach: sink.attach})

	assert.Empty(t, sink.list())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ImageUploads.WithLabelValues("failure")))
	_, err := os.Stat(file.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestStopHonoursDeadline(t *testing.T) {
	uploader := newFakeUploader()
	uploader.release = make(chan struct{})
	dispatcher, _ := newTestDispatcher(uploader)

	dispatcher.FireAndForget(Upload{CommentID: uuid.New(), File: stageFile(t, "a.png", "aaa"), Attach: (&attached{}).attach})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, dispatcher.Stop(ctx), context.DeadlineExceeded)

	close(uploader.release)
	require.NoError(t, dispatcher.Stop(context.Background()))
}

func TestObjectKey(t *testing.T) {
	dispatcher, _ := newTestDispatcher(newFakeUploader())
	commentID := uuid.New()

	key := dispatcher.ObjectKey(commentID, "Holiday.JPG")
	assert.True(t, strings.HasPrefix(key, "comments/images/"+commentID.String()+"/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)

	bare := NewDispatcher(zap.NewNop(), newFakeUploader(), metricspkg.NewMetrics(), Config{})
	assert.True(t, strings.HasPrefix(bare.ObjectKey(commentID, "x"), commentID.String()+"/"))
}

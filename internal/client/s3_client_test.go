package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3ClientURL(t *testing.T) {
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	c, err := NewS3Client(context.Background(), "bucket", "http://127.0.0.1:9000", "https://cdn.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/comments/images/a.png", c.URL("comments/images/a.png"))

	c, err = NewS3Client(context.Background(), "bucket", "", "")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/a.png", c.URL("a.png"))
}

package orm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestClient(t *testing.T) *PostgresClient {
	t.Helper()

	database, err := gorm.Open(
		sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)

	rawDatabase, err := database.DB()
	require.NoError(t, err)
	rawDatabase.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = rawDatabase.Close() })

	client := NewClient(database)
	require.NoError(t, client.Migrate(context.Background()))
	return client
}

type fixture struct {
	alice *User
	bob   *User
	post  *Post
}

func seed(t *testing.T, client *PostgresClient) fixture {
	t.Helper()
	ctx := context.Background()

	alice := &User{Username: "alice", FirstName: "Alice", Email: "alice@example.com", Avatar: "https://cdn.example.com/alice.png", IsVerified: true}
	bob := &User{Username: "bob", FirstName: "Bob", Email: "bob@example.com"}
	require.NoError(t, client.InsertUser(ctx, alice))
	require.NoError(t, client.InsertUser(ctx, bob))

	post := &Post{AuthorID: bob.ID, Content: "first post"}
	require.NoError(t, client.InsertPost(ctx, post))

	return fixture{alice: alice, bob: bob, post: post}
}

func insertComment(t *testing.T, client *PostgresClient, authorID uuid.UUID, content string, parent ParentRef) *Comment {
	t.Helper()
	comment := NewComment(authorID, content, parent)
	require.NoError(t, client.InsertComment(context.Background(), comment))
	return comment
}

func likeUserIDs(comment *Comment) []uuid.UUID {
	ids := []uuid.UUID{}
	for _, like := range comment.Likes {
		ids = append(ids, like.UserID)
	}
	return ids
}

func TestParentRef(t *testing.T) {
	id := uuid.New()

	assert.False(t, ParentRef{}.Valid())
	assert.False(t, PostParent(uuid.Nil).Valid())
	assert.True(t, PostParent(id).Valid())
	assert.Equal(t, ParentComment, CommentParent(id).Kind())
	assert.Equal(t, id, CommentParent(id).ID())

	comment := NewComment(uuid.New(), "hi", PostParent(id))
	require.NotNil(t, comment.PostID)
	assert.Nil(t, comment.ParentCommentID)
	assert.Equal(t, PostParent(id), comment.Parent())

	comment.ParentCommentID = &id
	assert.False(t, comment.Parent().Valid())
}

func TestInsertCommentRejectsInvalidParent(t *testing.T) {
	client := newTestClient(t)
	f := seed(t, client)

	comment := NewComment(f.alice.ID, "orphan", ParentRef{})
	err := client.InsertComment(context.Background(), comment)
	assert.True(t, errors.Is(err, ErrInvalidParent), "got %v", err)
}

func TestCommentOnPost(t *testing.T) {
	client := newTestClient(t)
	f := seed(t, client)
	ctx := context.Background()

	comment := insertComment(t, client, f.alice.ID, "hello", PostParent(f.post.ID))
	assert.NotEqual(t, uuid.Nil, comment.ID)
	assert.False(t, comment.CreatedAt.IsZero())

	got, err := client.SelectCommentByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/alice.png", got.Author.Avatar)
	assert.True(t, got.Author.IsVerified)
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, "alice", got.Author.Username)
	assert.Equal(t, "Alice", got.Author.FirstName)
	require.NotNil(t, got.Post)
	assert.Equal(t, f.post.ID, got.Post.ID)
	assert.Equal(t, "bob", got.Post.Author.Username)
	assert.Nil(t, got.ParentComment)
	assert.Empty(t, got.Images)
	assert.Empty(t, got.Likes)
	assert.Empty(t, got.Replies)

	listed, err := client.SelectCommentsByPostID(ctx, f.post.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, comment.ID, listed[0].ID)
}

func TestCommentReplies(t *testing.T) {
	client := newTestClient(t)
	f := seed(t, client)
	ctx := context.Background()

	root := insertComment(t, client, f.alice.ID, "root", PostParent(f.post.ID))
	first := insertComment(t, client, f.bob.ID, "first reply", CommentParent(root.ID))
	second := insertComment(t, client, f.alice.ID, "second reply", CommentParent(root.ID))
	insertComment(t, client, f.alice.ID, "nested", CommentParent(first.ID))

	replies, err := client.SelectCommentsByParentCommentID(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, replies, 2)

	ids := []uuid.UUID{replies[0].ID, replies[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ids)
	for _, reply := range replies {
		require.NotNil(t, reply.ParentComment)
		assert.Equal(t, root.ID, reply.ParentComment.ID)
		assert.Equal(t, "alice", reply.ParentComment.Author.Username)
		require.NotNil(t, reply.ParentComment.PostID)
		assert.Equal(t, f.post.ID, *reply.ParentComment.PostID)
	}

	got, err := client.SelectCommentByID(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, got.Replies, 2)

	topLevel, err := client.SelectCommentsByPostID(ctx, f.post.ID)
	require.NoError(t, err)
	require.Len(t, topLevel, 1)
	assert.Equal(t, root.ID, topLevel[0].ID)
}

func TestSelectCommentByIDNotFound(t *testing.T) {
	client := newTestClient(t)

	_, err := client.SelectCommentByID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "got %v", err)
}

func TestInsertCommentImageConcurrent(t *testing.T) {
	client := newTestClient(t)
	f := seed(t, client)
	ctx := context.Background()

	comment := insertComment(t, client, f.alice.ID, "with pictures", PostParent(f.post.ID))

	const uploads = 8
	var wg sync.WaitGroup
	errs := make(chan error, uploads)
	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- client.InsertCommentImage(ctx, &CommentImage{
				CommentID: comment.ID,
				ImageURL:  fmt.Sprintf("https://cdn.example.com/%d.png", i),
				ObjectKey: fmt.Sprintf("%d.png", i),
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := client.SelectCommentByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Len(t, got.Images, uploads)
}

func TestToggleCommentLike(t *testing.T) {
	client := newTestClient(t)
	f := seed(t, client)
	ctx := context.Background()

	comment := insertComment(t, client, f.alice.ID, "like me", PostParent(f.post.ID))

	liked, err := client.ToggleCommentLike(ctx, comment.ID, f.bob.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	got, err := client.SelectCommentByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.True(t, got.LikedBy(f.bob.ID))
	assert.Len(t, got.Likes, 1)

	liked, err = client.ToggleCommentLike(ctx, comment.ID, f.bob.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	got, err = client.SelectCommentByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.False(t, got.LikedBy(f.bob.ID))
	assert.Empty(t, got.Likes)

	_, err = client.ToggleCommentLike(ctx, uuid.New(), f.bob.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "got %v", err)
}

func TestToggleCommentLikeConcurrentUsers(t *testing.T) {
	client := newTestClient(t)
	f := seed(t, client)
	ctx := context.Background()

	comment := insertComment(t, client, f.alice.ID, "popular", PostParent(f.post.ID))

	const users = 16
	userIDs := make([]uuid.UUID, users)
	for i := range userIDs {
		userIDs[i] = uuid.New()
	}

	var wg sync.WaitGroup
	errs := make(chan error, users)
	for _, userID := range userIDs {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			_, err := client.ToggleCommentLike(ctx, comment.ID, userID)
			errs <- err
		}(userID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := client.SelectCommentByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, userIDs, likeUserIDs(got))
}

func TestReplaceCommentLikes(t *testing.T) {
	client := newTestClient(t)
	f := seed(t, client)
	ctx := context.Background()

	comment := insertComment(t, client, f.alice.ID, "set me", PostParent(f.post.ID))

	got, err := client.ReplaceCommentLikes(ctx, comment.ID, []uuid.UUID{f.alice.ID, f.bob.ID, f.bob.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{f.alice.ID, f.bob.ID}, likeUserIDs(got))

	got, err = client.ReplaceCommentLikes(ctx, comment.ID, []uuid.UUID{f.bob.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.bob.ID}, likeUserIDs(got))

	got, err = client.ReplaceCommentLikes(ctx, comment.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
}

func TestDeleteCommentTree(t *testing.T) {
	client := newTestClient(t)
	f := seed(t, client)
	ctx := context.Background()

	root := insertComment(t, client, f.alice.ID, "root", PostParent(f.post.ID))
	reply := insertComment(t, client, f.bob.ID, "reply", CommentParent(root.ID))
	nested := insertComment(t, client, f.alice.ID, "nested", CommentParent(reply.ID))
	sibling := insertComment(t, client, f.bob.ID, "sibling", PostParent(f.post.ID))

	for _, id := range []uuid.UUID{root.ID, nested.ID, sibling.ID} {
		require.NoError(t, client.InsertCommentImage(ctx, &CommentImage{
			CommentID: id,
			ImageURL:  "https://cdn.example.com/" + id.String(),
			ObjectKey: id.String(),
		}))
	}
	_, err := client.ToggleCommentLike(ctx, reply.ID, f.alice.ID)
	require.NoError(t, err)
	_, err = client.ToggleCommentLike(ctx, sibling.ID, f.alice.ID)
	require.NoError(t, err)

	removed, err := client.DeleteCommentTree(ctx, root.ID)
	require.NoError(t, err)
	keys := []string{}
	for _, image := range removed {
		keys = append(keys, image.ObjectKey)
	}
	assert.ElementsMatch(t, []string{root.ID.String(), nested.ID.String()}, keys)

	for _, id := range []uuid.UUID{root.ID, reply.ID, nested.ID} {
		_, err := client.SelectCommentByID(ctx, id)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "comment %s: got %v", id, err)
	}

	got, err := client.SelectCommentByID(ctx, sibling.ID)
	require.NoError(t, err)
	assert.Len(t, got.Images, 1)
	assert.Len(t, got.Likes, 1)

	var orphanLikes int64
	require.NoError(t, client.database.Model(&CommentLike{}).Where("comment_id = ?", reply.ID).Count(&orphanLikes).Error)
	assert.Zero(t, orphanLikes)

	_, err = client.DeleteCommentTree(ctx, root.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "got %v", err)
}

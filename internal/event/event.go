package event

const (
	COMMENT_CREATE       = "comment.create"
	COMMENT_DELETE       = "comment.delete"
	COMMENT_LIKE         = "comment.like"
	COMMENT_UNLIKE       = "comment.unlike"
	COMMENT_IMAGE_ATTACH = "comment.image.attach"
)

type CommentCreateMessage struct {
	ID              string `json:"id"`
	AuthorID        string `json:"author_id"`
	PostID          string `json:"post_id,omitempty"`
	ParentCommentID string `json:"parent_comment_id,omitempty"`
}

// CommentDeleteMessage carries the object keys of every image removed with the
// comment subtree.
type CommentDeleteMessage struct {
	ID         string   `json:"id"`
	ObjectKeys []string `json:"object_keys"`
}

type CommentLikeMessage struct {
	CommentID string `json:"comment_id"`
	UserID    string `json:"user_id"`
}

type CommentImageAttachMessage struct {
	CommentID string `json:"comment_id"`
	ImageID   string `json:"image_id"`
	ImageURL  string `json:"image_url"`
}

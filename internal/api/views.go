package api

import (
	"time"

	ormpkg "github.com/stormhead-org/comments/internal/orm"
)

type AccountView struct {
	Avatar string `json:"avatar"`
	Verify bool   `json:"verify"`
}

type AuthorView struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	FirstName string      `json:"firstName"`
	Account   AccountView `json:"account"`
}

type OwnerView struct {
	Username string `json:"username"`
}

type IDView struct {
	ID string `json:"id"`
}

type PostRefView struct {
	ID   string     `json:"id"`
	User *OwnerView `json:"user,omitempty"`
}

type CommentRefView struct {
	ID      string     `json:"id"`
	Post    *IDView    `json:"post,omitempty"`
	Comment *IDView    `json:"comment,omitempty"`
	User    *OwnerView `json:"user,omitempty"`
}

type ImageView struct {
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl"`
}

type CommentView struct {
	ID        string          `json:"id"`
	Content   string          `json:"content"`
	User      AuthorView      `json:"user"`
	Post      *PostRefView    `json:"post,omitempty"`
	Comment   *CommentRefView `json:"comment,omitempty"`
	Images    []ImageView     `json:"images"`
	Likes     []IDView        `json:"likes"`
	Comments  []IDView        `json:"comments"`
	CreatedAt time.Time       `json:"createdAt"`
}

type CommentResponse struct {
	Comment CommentView `json:"comment"`
}

type CommentsResponse struct {
	Comments []CommentView `json:"comments"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func owner(user ormpkg.User) *OwnerView {
	if user.Username == "" {
		return nil
	}
	return &OwnerView{Username: user.Username}
}

func newCommentView(comment *ormpkg.Comment) CommentView {
	view := CommentView{
		ID:      comment.ID.String(),
		Content: comment.Content,
		User: AuthorView{
			ID:        comment.Author.ID.String(),
			Username:  comment.Author.Username,
			FirstName: comment.Author.FirstName,
			Account: AccountView{
				Avatar: comment.Author.Avatar,
				Verify: comment.Author.IsVerified,
			},
		},
		Images:    make([]ImageView, 0, len(comment.Images)),
		Likes:     make([]IDView, 0, len(comment.Likes)),
		Comments:  make([]IDView, 0, len(comment.Replies)),
		CreatedAt: comment.CreatedAt,
	}

	switch {
	case comment.Post != nil:
		view.Post = &PostRefView{ID: comment.Post.ID.String(), User: owner(comment.Post.Author)}
	case comment.PostID != nil:
		view.Post = &PostRefView{ID: comment.PostID.String()}
	}

	switch {
	case comment.ParentComment != nil:
		parent := comment.ParentComment
		view.Comment = &CommentRefView{ID: parent.ID.String(), User: owner(parent.Author)}
		if parent.PostID != nil {
			view.Comment.Post = &IDView{ID: parent.PostID.String()}
		}
		if parent.ParentCommentID != nil {
			view.Comment.Comment = &IDView{ID: parent.ParentCommentID.String()}
		}
	case comment.ParentCommentID != nil:
		view.Comment = &CommentRefView{ID: comment.ParentCommentID.String()}
	}

	for _, image := range comment.Images {
		view.Images = append(view.Images, ImageView{ID: image.ID.String(), ImageURL: image.ImageURL})
	}
	for _, like := range comment.Likes {
		view.Likes = append(view.Likes, IDView{ID: like.UserID.String()})
	}
	for _, reply := range comment.Replies {
		view.Comments = append(view.Comments, IDView{ID: reply.ID.String()})
	}

	return view
}

func newCommentViews(comments []*ormpkg.Comment) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		views = append(views, newCommentView(comment))
	}
	return views
}

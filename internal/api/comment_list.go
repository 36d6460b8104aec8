package api

import (
	"net/http"

	"github.com/stormhead-org/comments/internal/lib"
)

// handleListPostComments godoc
// @Summary List top-level comments of a post
// @Tags comments
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {object} CommentsResponse
// @Failure 400 {object} lib.ErrorResponse
// @Failure 404 {object} lib.ErrorResponse
// @Router /comments/post/{postId} [get]
func (api *API) handleListPostComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := pathID(r, "postId")
		if err != nil {
			lib.WriteJSONError(w, err)
			return
		}

		comments, err := api.comments.ListPostComments(r.Context(), postID)
		if err != nil {
			lib.WriteJSONError(w, err)
			return
		}

		lib.WriteJSON(w, CommentsResponse{Comments: newCommentViews(comments)}, http.StatusOK)
	}
}

// handleListCommentReplies godoc
// @Summary List direct replies to a comment
// @Tags comments
// @Produce json
// @Param commentId path string true "Parent comment ID"
// @Success 200 {object} CommentsResponse
// @Failure 400 {object} lib.ErrorResponse
// @Failure 404 {object} lib.ErrorResponse
// @Router /comments/comment/{commentId} [get]
func (api *API) handleListCommentReplies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commentID, err := pathID(r, "commentId")
		if err != nil {
			lib.WriteJSONError(w, err)
			return
		}

		comments, err := api.comments.ListCommentReplies(r.Context(), commentID)
		if err != nil {
			lib.WriteJSONError(w, err)
			return
		}

		lib.WriteJSON(w, CommentsResponse{Comments: newCommentViews(comments)}, http.StatusOK)
	}
}

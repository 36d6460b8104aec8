package api

import (
	"net/http"

	"github.com/stormhead-org/comments/internal/lib"
)

// handleGetComment godoc
// @Summary Get a comment
// @Tags comments
// @Produce json
// @Param commentId path string true "Comment ID"
// @Success 200 {object} CommentResponse
// @Failure 400 {object} lib.ErrorResponse
// @Failure 404 {object} lib.ErrorResponse
// @Router /comments/{commentId} [get]
func (api *API) handleGetComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commentID, err := pathID(r, "commentId")
		if err != nil {
			lib.WriteJSONError(w, err)
			return
		}

		comment, err := api.comments.GetComment(r.Context(), commentID)
		if err != nil {
			lib.WriteJSONError(w, err)
			return
		}

		lib.WriteJSON(w, CommentResponse{Comment: newCommentView(comment)}, http.StatusOK)
	}
}

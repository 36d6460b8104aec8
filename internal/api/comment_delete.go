package api

import (
	"net/http"

	"github.com/stormhead-org/comments/internal/lib"
)

// handleDeleteComment godoc
// @Summary Delete a comment and its replies
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param commentId path string true "Comment ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} lib.ErrorResponse
// @Failure 403 {object} lib.ErrorResponse
// @Failure 404 {object} lib.ErrorResponse
// @Router /comments/{commentId} [delete]
func (api *API) handleDeleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			lib.WriteJSONError(w, err)
			return
		}

		commentID, err := pathID(r, "commentId")
		if err != nil {
			lib.WriteJSONError(w, err)
			return
		}

		message, err := api.comments.DeleteComment(r.Context(), commentID, userID)
		if err != nil {
			lib.WriteJSONError(w, err)
			return
		}

		lib.WriteJSON(w, MessageResponse{Message: message}, http.StatusOK)
	}
}

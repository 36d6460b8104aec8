package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/stormhead-org/comments/internal/lib"
)

const maxJSONBody = 1 << 20

type LikeCommentRequest struct {
	CommentID string `json:"commentId"`
}

// handleToggleLike godoc
// @Summary Like or unlike a comment
// @Description Flips the caller's like on the comment and returns the updated comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LikeCommentRequest true "Comment to toggle"
// @Success 200 {object} CommentResponse
// @Failure 400 {object} lib.ErrorResponse
// @Failure 401 {object} lib.ErrorResponse
// @Failure 404 {object} lib.ErrorResponse
// @Router /comments/like [post]
func (api *API) handleToggleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			lib.WriteJSONError(w, err)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
		if err != nil {
			lib.WriteJSONError(w, lib.InvalidArgumentError("request body too large"))
			return
		}
		if err := lib.Validate(body, lib.LikeCommentSchema()); err != nil {
			lib.WriteJSONError(w, err)
			return
		}

		var request LikeCommentRequest
		if err := json.Unmarshal(body, &request); err != nil {
			lib.WriteJSONError(w, lib.InvalidArgumentError("malformed request body"))
			return
		}
		commentID, err := uuid.Parse(request.CommentID)
		if err != nil {
			lib.WriteJSONError(w, lib.InvalidArgumentError("invalid commentId"))
			return
		}

		comment, err := api.comments.ToggleLike(r.Context(), userID, commentID)
		if err != nil {
			lib.WriteJSONError(w, err)
			return
		}

		lib.WriteJSON(w, CommentResponse{Comment: newCommentView(comment)}, http.StatusOK)
	}
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stormhead-org/comments/internal/lib"
	"github.com/stormhead-org/comments/internal/media"
	"github.com/stormhead-org/comments/internal/services"
)

const (
	imagesField         = "images"
	maxMultipartMemory  = 8 << 20
	maxMultipartRequest = media.MaxFiles*media.MaxFileSize + maxJSONBody
)

type CreateCommentRequest struct {
	Content   string `json:"content"`
	PostID    string `json:"postId,omitempty"`
	CommentID string `json:"commentId,omitempty"`
}

// handleCreateComment godoc
// @Summary Create a comment
// @Description Creates a comment under a post or another comment. postId wins when both ids are sent.
// @Description Images are uploaded in the background and are missing from the response.
// @Tags comments
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param content formData string true "Comment text"
// @Param postId formData string false "Parent post ID"
// @Param commentId formData string false "Parent comment ID"
// @Param images formData file false "Up to 10 images, 10 MiB each"
// @Success 201 {object} CommentResponse
// @Failure 400 {object} lib.ErrorResponse
// @Failure 401 {object} lib.ErrorResponse
// @Failure 404 {object} lib.ErrorResponse
// @Router /comments [post]
func (api *API) handleCreateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorID, err := callerID(r)
		if err != nil {
			lib.WriteJSONError(w, err)
			return
		}

		var (
			request CreateCommentRequest
			headers []*multipart.FileHeader
		)
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "multipart/form-data" {
			r.Body = http.MaxBytesReader(w, r.Body, maxMultipartRequest)
			if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
				lib.WriteJSONError(w, lib.InvalidArgumentError("malformed multipart body"))
				return
			}
			defer r.MultipartForm.RemoveAll()

			request = CreateCommentRequest{
				Content:   r.PostFormValue("content"),
				PostID:    r.PostFormValue("postId"),
				CommentID: r.PostFormValue("commentId"),
			}
			headers = r.MultipartForm.File[imagesField]
		} else {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
			if err != nil {
				lib.WriteJSONError(w, lib.InvalidArgumentError("request body too large"))
				return
			}
			if err := json.Unmarshal(body, &request); err != nil {
				lib.WriteJSONError(w, lib.InvalidArgumentError("malformed request body"))
				return
			}
		}

		input, err := parseCreateComment(request)
		if err != nil {
			lib.WriteJSONError(w, err)
			return
		}

		images, err := api.stageImages(headers)
		if err != nil {
			lib.WriteJSONError(w, err)
			return
		}

		comment, err := api.comments.CreateComment(r.Context(), input, authorID, images)
		if err != nil {
			lib.WriteJSONError(w, err)
			return
		}

		lib.WriteJSON(w, CommentResponse{Comment: newCommentView(comment)}, http.StatusCreated)
	}
}

// parseCreateComment validates the request shape. Empty ids count as absent.
func parseCreateComment(request CreateCommentRequest) (services.CreateCommentInput, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return services.CreateCommentInput{}, err
	}
	if err := lib.Validate(body, lib.CreateCommentSchema()); err != nil {
		return services.CreateCommentInput{}, err
	}

	input := services.CreateCommentInput{Content: request.Content}
	if request.PostID != "" {
		postID, err := uuid.Parse(request.PostID)
		if err != nil {
			return services.CreateCommentInput{}, lib.InvalidArgumentError("invalid postId")
		}
		input.PostID = &postID
	}
	if request.CommentID != "" {
		commentID, err := uuid.Parse(request.CommentID)
		if err != nil {
			return services.CreateCommentInput{}, lib.InvalidArgumentError("invalid commentId")
		}
		input.CommentID = &commentID
	}
	return input, nil
}

// stageImages copies the uploaded parts out of the request so they survive
// until the background uploads pick them up.
func (api *API) stageImages(headers []*multipart.FileHeader) ([]media.File, error) {
	if len(headers) > media.MaxFiles {
		return nil, lib.InvalidArgumentError(fmt.Sprintf("at most %d images are allowed", media.MaxFiles))
	}

	files := make([]media.File, 0, len(headers))
	for _, header := range headers {
		file, err := media.Stage(api.uploadDir, header)
		if errors.Is(err, media.ErrNotImage) {
			media.Discard(files)
			return nil, lib.InvalidArgumentError(header.Filename + " is not an image")
		}
		if errors.Is(err, media.ErrFileTooLarge) {
			media.Discard(files)
			return nil, lib.InvalidArgumentError(err.Error())
		}
		if err != nil {
			media.Discard(files)
			api.log.Error("failed to stage image", zap.Error(err))
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

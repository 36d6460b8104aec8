package lib

import (
	"encoding/json"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const internalMessage = "internal server error"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// ErrorRecorder is implemented by response writers that keep the failure for
// the request log.
type ErrorRecorder interface {
	RecordError(err error)
}

// HTTPStatus maps a gRPC status error to its HTTP status. Plain errors count
// as internal.
func HTTPStatus(err error) int {
	return runtime.HTTPStatusFromCode(status.Code(err))
}

func WriteJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json;charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteJSONError writes {status, error}. Internal failures never leak their
// message to the client.
func WriteJSONError(w http.ResponseWriter, err error) {
	if recorder, ok := w.(ErrorRecorder); ok {
		recorder.RecordError(err)
	}

	st, ok := status.FromError(err)
	if !ok {
		st = status.New(codes.Internal, internalMessage)
	}

	code := runtime.HTTPStatusFromCode(st.Code())
	message := st.Message()
	switch {
	case code == http.StatusInternalServerError:
		message = internalMessage
	case message == "":
		message = http.StatusText(code)
	}

	WriteJSON(w, ErrorResponse{Status: code, Error: message}, code)
}

// InvalidArgumentError returns a gRPC InvalidArgument error.
func InvalidArgumentError(message string) error {
	return status.Errorf(codes.InvalidArgument, "%s", message)
}

func UnauthenticatedError(message string) error {
	return status.Errorf(codes.Unauthenticated, "%s", message)
}

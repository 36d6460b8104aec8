// Package api serves the comment REST endpoints.
package api

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/stormhead-org/comments/internal/api/docs"
	jwtpkg "github.com/stormhead-org/comments/internal/jwt"
	"github.com/stormhead-org/comments/internal/lib"
	metricspkg "github.com/stormhead-org/comments/internal/metrics"
	"github.com/stormhead-org/comments/internal/middleware"
	"github.com/stormhead-org/comments/internal/services"
)

type ctxKey int

const (
	requestID ctxKey = iota
)

const requestIDHeader = "X-Request-ID"

// maxDrain caps what is read from an unconsumed body before closing it.
// Anything longer is left to net/http, which closes the connection.
const maxDrain = 256 << 10

type wideResponseWriter struct {
	http.ResponseWriter
	length, status int
	internalErr    error
}

func (w *wideResponseWriter) WriteHeader(status int) {
	w.ResponseWriter.WriteHeader(status)
	w.status = status
}

func (w *wideResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.length += n
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return n, err
}

func (w *wideResponseWriter) RecordError(err error) {
	w.internalErr = err
}

type API struct {
	router    *mux.Router
	log       *zap.Logger
	comments  services.CommentService
	jwt       *jwtpkg.JWT
	metrics   *metricspkg.Metrics
	uploadDir string
}

func New(log *zap.Logger, comments services.CommentService, jwt *jwtpkg.JWT, metrics *metricspkg.Metrics, uploadDir string) *API {
	api := &API{
		router:    mux.NewRouter(),
		log:       log,
		comments:  comments,
		jwt:       jwt,
		metrics:   metrics,
		uploadDir: uploadDir,
	}
	api.endpoints()
	return api
}

func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.router.ServeHTTP(w, r)
}

func (api *API) endpoints() {
	api.router.Handle("/metrics", api.metrics.Handler()).Methods(http.MethodGet)
	api.router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	)).Methods(http.MethodGet)

	comments := api.router.PathPrefix("/api/comments").Subrouter()
	comments.Use(
		api.requestIDMiddleware,
		api.wideEventLogMiddleware,
		api.closerMiddleware,
		api.headersMiddleware,
	)

	authorized := middleware.NewAuthorizationMiddleware(api.log, api.jwt)

	comments.HandleFunc("/post/{postId}", api.handleListPostComments()).Methods(http.MethodGet)
	comments.HandleFunc("/comment/{commentId}", api.handleListCommentReplies()).Methods(http.MethodGet)
	comments.Handle("/like", authorized(api.handleToggleLike())).Methods(http.MethodPost)
	comments.HandleFunc("/{commentId}", api.handleGetComment()).Methods(http.MethodGet)
	comments.Handle("/{commentId}", authorized(api.handleDeleteComment())).Methods(http.MethodDelete)
	comments.Handle("", authorized(api.handleCreateComment())).Methods(http.MethodPost)
}

// closerMiddleware drains a short leftover body so the connection can be reused.
func (api *API) closerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		_, _ = io.CopyN(io.Discard, r.Body, maxDrain)
		_ = r.Body.Close()
	})
}

func (api *API) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, rid)
		ctx := context.WithValue(r.Context(), requestID, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// wideEventLogMiddleware logs one line per request and observes its latency.
func (api *API) wideEventLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wideWriter := &wideResponseWriter{ResponseWriter: w}

		next.ServeHTTP(wideWriter, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if template, err := current.GetPathTemplate(); err == nil {
				route = template
			}
		}
		api.metrics.RequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(wideWriter.status)).
			Observe(time.Since(start).Seconds())

		addr, _, _ := net.SplitHostPort(r.RemoteAddr)
		api.log.Info("request received",
			zap.Any("request_id", r.Context().Value(requestID)),
			zap.Int("status_code", wideWriter.status),
			zap.Int("response_length", wideWriter.length),
			zap.Int64("content_length", r.ContentLength),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.String("remote_addr", addr),
			zap.String("uri", r.RequestURI),
			zap.String("user_agent", r.UserAgent()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(wideWriter.internalErr),
		)
	})
}

func (api *API) headersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json;charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// pathID parses a path variable as a uuid. Malformed ids never reach the service.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, lib.InvalidArgumentError("invalid " + name)
	}
	return id, nil
}

// callerID returns the user id the authorization middleware put in the context.
func callerID(r *http.Request) (uuid.UUID, error) {
	id, err := middleware.GetUserUUID(r.Context())
	if err != nil {
		return uuid.Nil, lib.UnauthenticatedError("missing or invalid token")
	}
	return id, nil
}

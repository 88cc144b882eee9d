package httphandler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/gerritpanel/internal/adapter/wire"
	"github.com/ericfisherdev/gerritpanel/internal/application"
	"github.com/ericfisherdev/gerritpanel/internal/domain/model"
)

// maxBodyBytes caps request bodies accepted by write endpoints.
const maxBodyBytes = 1 << 20

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	commentSvc *application.CommentService
	backend    string
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(commentSvc *application.CommentService, backend string, logger *slog.Logger) *Handler {
	return &Handler{
		commentSvc: commentSvc,
		backend:    backend,
		logger:     logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// RegisterAPIRoutes registers the REST API routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/changes/{change}/revisions/{revision}/comments", h.ListComments)
	mux.HandleFunc("GET /api/v1/changes/{change}/revisions/{revision}/drafts", h.ListDrafts)
	mux.HandleFunc("PUT /api/v1/changes/{change}/revisions/{revision}/drafts", h.SaveDraft)
	mux.HandleFunc("GET /api/v1/changes/{change}/revisions/{revision}/robotcomments", h.ListRobotComments)
	mux.HandleFunc("POST /api/v1/changes/{change}/revisions/{revision}/review", h.AddReviewers)
	mux.HandleFunc("POST /api/v1/changes/{change}/reviewers", h.AddReviewer)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// ListComments returns the published comments on a revision.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	ref := changeRef(r)

	comments, err := h.commentSvc.ListComments(r.Context(), ref)
	if err != nil {
		h.writeServiceError(w, err, "failed to list comments", "change", ref.Change, "revision", ref.Revision)
		return
	}

	writeJSON(w, http.StatusOK, toCommentResponses(comments))
}

// ListDrafts returns the caller's draft comments on a revision.
func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	ref := changeRef(r)

	drafts, err := h.commentSvc.ListDrafts(r.Context(), ref)
	if err != nil {
		h.writeServiceError(w, err, "failed to list drafts", "change", ref.Change, "revision", ref.Revision)
		return
	}

	writeJSON(w, http.StatusOK, toCommentResponses(drafts))
}

// ListRobotComments returns the robot comments on a revision.
func (h *Handler) ListRobotComments(w http.ResponseWriter, r *http.Request) {
	ref := changeRef(r)

	comments, err := h.commentSvc.ListRobotComments(r.Context(), ref)
	if err != nil {
		h.writeServiceError(w, err, "failed to list robot comments", "change", ref.Change, "revision", ref.Revision)
		return
	}

	writeJSON(w, http.StatusOK, toCommentResponses(comments))
}

// SaveDraft creates a draft comment from a request body in the comment wire
// format. Comments that fail validation are rejected with the failing field.
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	ref := changeRef(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	comment, err := wire.DecodeComment(body, model.CommentKindDraft)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	saved, err := h.commentSvc.SaveDraft(r.Context(), ref, comment)
	if err != nil {
		h.writeServiceError(w, err, "failed to save draft", "change", ref.Change, "path", comment.Path)
		return
	}

	writeJSON(w, http.StatusCreated, toCommentResponse(saved))
}

// AddReviewer adds a reviewer to the change.
func (h *Handler) AddReviewer(w http.ResponseWriter, r *http.Request) {
	ref := changeRef(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	req, err := wire.Decode[AddReviewerRequest](body)
	if err != nil || req.Reviewer == "" {
		writeError(w, http.StatusBadRequest, "invalid request body: reviewer is required")
		return
	}

	result, err := h.commentSvc.AddReviewer(r.Context(), ref, req.Reviewer)
	if err != nil {
		h.writeServiceError(w, err, "failed to add reviewer", "change", ref.Change, "reviewer", req.Reviewer)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// AddReviewers adds several reviewers to a revision in one request. The
// response maps each reviewer, as given, to its outcome.
func (h *Handler) AddReviewers(w http.ResponseWriter, r *http.Request) {
	ref := changeRef(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	req, err := wire.Decode[AddReviewersRequest](body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	results, err := h.commentSvc.AddReviewers(r.Context(), ref, req.Reviewers)
	if err != nil {
		h.writeServiceError(w, err, "failed to add reviewers", "change", ref.Change, "count", len(req.Reviewers))
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// Health reports that the server is up and which backend it talks to.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Backend: h.backend})
}

// writeServiceError maps a service error to a response. Caller mistakes get
// a 4xx naming the problem; anything else is logged and reported as an
// upstream failure.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, msg string, attrs ...any) {
	var fieldErr interface{ Field() string }
	switch {
	case errors.As(err, &fieldErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: fieldErr.Field()})
	case errors.Is(err, model.ErrInvalidChangeRef), errors.Is(err, application.ErrReviewerRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrUnsupportedAnchor):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, application.ErrReviewersUnsupported), errors.Is(err, application.ErrRobotCommentsUnsupported):
		writeError(w, http.StatusNotImplemented, err.Error())
	default:
		h.logger.Error(msg, append(attrs, "error", err)...)
		writeError(w, http.StatusBadGateway, "review server error")
	}
}

// changeRef builds a ChangeRef from path values. The optional project query
// parameter scopes the change for repository-based backends.
func changeRef(r *http.Request) model.ChangeRef {
	return model.ChangeRef{
		Project:  r.URL.Query().Get("project"),
		Change:   r.PathValue("change"),
		Revision: r.PathValue("revision"),
	}
}

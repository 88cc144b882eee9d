package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/gerritpanel/internal/adapter/wire"
	"github.com/ericfisherdev/gerritpanel/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body. Field is set when a
// comment was rejected by validation.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// CommentResponse is a comment in the wire format plus fields derived for display.
type CommentResponse struct {
	wire.CommentJSON

	Kind        string `json:"kind"`
	Polarity    int16  `json:"polarity"`
	FileComment bool   `json:"file_comment"`
	MessageHTML string `json:"message_html"`
}

// AddReviewerRequest is the JSON body accepted by the add-reviewer endpoint.
type AddReviewerRequest struct {
	Reviewer string `json:"reviewer"`
}

// AddReviewersRequest is the JSON body accepted by the review endpoint.
type AddReviewersRequest struct {
	Reviewers []string `json:"reviewers"`
}

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

func toCommentResponse(c model.Comment) CommentResponse {
	return CommentResponse{
		CommentJSON: wire.FromComment(c),
		Kind:        string(c.Kind),
		Polarity:    c.Polarity(),
		FileComment: c.IsFileComment(),
		MessageHTML: RenderMarkdown(c.Message),
	}
}

func toCommentResponses(comments []model.Comment) []CommentResponse {
	resp := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, toCommentResponse(c))
	}
	return resp
}

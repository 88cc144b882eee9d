// Package gerrit implements the comment and reviewer ports against the Gerrit REST API.
package gerrit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/gerritpanel/internal/adapter/wire"
	"github.com/ericfisherdev/gerritpanel/internal/domain/model"
	"github.com/ericfisherdev/gerritpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.CommentSource      = (*Client)(nil)
	_ driven.CommentWriter      = (*Client)(nil)
	_ driven.ReviewerManager    = (*Client)(nil)
	_ driven.RobotCommentSource = (*Client)(nil)
)

// maxErrorBody caps how much of a failed response body is kept in an APIError.
const maxErrorBody = 4 << 10

// APIError is returned for any non-2xx response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gerrit %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client talks to a single Gerrit server.
type Client struct {
	http     *http.Client
	baseURL  *url.URL
	username string
	password string
}

// NewClient creates a Gerrit client. Responses are cached in memory and
// revalidated with ETags. When username is non-empty requests are sent to the
// authenticated /a/ endpoints with HTTP basic auth.
func NewClient(baseURL, username, password string, timeout time.Duration) (*Client, error) {
	httpClient := &http.Client{
		Transport: httpcache.NewMemoryCacheTransport(),
		Timeout:   timeout,
	}
	return NewClientWithHTTPClient(httpClient, baseURL, username, password)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, username, password string) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: expected scheme and host", baseURL)
	}

	return &Client{
		http:     httpClient,
		baseURL:  u,
		username: username,
		password: password,
	}, nil
}

// ListComments retrieves the published comments on a revision.
func (c *Client) ListComments(ctx context.Context, ref model.ChangeRef) ([]model.Comment, error) {
	return c.listComments(ctx, ref, "comments", model.CommentKindPublished)
}

// ListDrafts retrieves the authenticated user's draft comments on a revision.
func (c *Client) ListDrafts(ctx context.Context, ref model.ChangeRef) ([]model.Comment, error) {
	return c.listComments(ctx, ref, "drafts", model.CommentKindDraft)
}

// ListRobotComments retrieves the robot comments on a revision.
func (c *Client) ListRobotComments(ctx context.Context, ref model.ChangeRef) ([]model.Comment, error) {
	return c.listComments(ctx, ref, "robotcomments", model.CommentKindRobot)
}

func (c *Client) listComments(ctx context.Context, ref model.ChangeRef, collection string, kind model.CommentKind) ([]model.Comment, error) {
	path := revisionPath(ref) + "/" + collection

	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("listing %s for change %s: %w", collection, ref.Change, err)
	}

	comments, err := wire.DecodeCommentMap(data, kind)
	if err != nil {
		return nil, err
	}

	slog.Debug("gerrit api call",
		"endpoint", path,
		"count", len(comments),
	)
	return comments, nil
}

// SaveDraft validates comment and creates it as a draft on the revision.
// The server's copy, including its assigned ID, is returned.
func (c *Client) SaveDraft(ctx context.Context, ref model.ChangeRef, comment model.Comment) (model.Comment, error) {
	if err := model.ValidateDraft(comment); err != nil {
		return model.Comment{}, err
	}

	input := wire.FromComment(comment)
	// The server assigns IDs and timestamps to new drafts.
	input.ID = ""
	input.Updated = nil

	data, err := c.do(ctx, http.MethodPut, revisionPath(ref)+"/drafts", input)
	if err != nil {
		return model.Comment{}, fmt.Errorf("saving draft on %s for change %s: %w", comment.Path, ref.Change, err)
	}

	return wire.DecodeComment(data, model.CommentKindDraft)
}

// AddReviewer adds an account or group as reviewer of the change.
func (c *Client) AddReviewer(ctx context.Context, ref model.ChangeRef, reviewer string) (model.AddReviewerResult, error) {
	path := "/changes/" + url.PathEscape(ref.Change) + "/reviewers"

	data, err := c.do(ctx, http.MethodPost, path, map[string]string{"reviewer": reviewer})
	if err != nil {
		return model.AddReviewerResult{}, fmt.Errorf("adding reviewer %q to change %s: %w", reviewer, ref.Change, err)
	}

	return wire.ParseAddReviewerResult(data)
}

// reviewInput is the body of a set-review request that only adds reviewers.
type reviewInput struct {
	Reviewers []reviewerInput `json:"reviewers"`
}

type reviewerInput struct {
	Reviewer string `json:"reviewer"`
}

// AddReviewers adds several accounts or groups in one set-review request. The
// result is keyed by each identifier as given. Gerrit answers 400 when any of
// them is refused but still reports every outcome, so that body is returned
// as results rather than as an error.
func (c *Client) AddReviewers(ctx context.Context, ref model.ChangeRef, reviewers []string) (model.ReviewerResults, error) {
	input := reviewInput{Reviewers: make([]reviewerInput, 0, len(reviewers))}
	for _, r := range reviewers {
		input.Reviewers = append(input.Reviewers, reviewerInput{Reviewer: r})
	}

	data, err := c.do(ctx, http.MethodPost, revisionPath(ref)+"/review", input)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			if results, parseErr := wire.ParseReviewerResults([]byte(apiErr.Body)); parseErr == nil {
				return results, nil
			}
		}
		return nil, fmt.Errorf("adding %d reviewers to change %s: %w", len(reviewers), ref.Change, err)
	}

	results, err := wire.ParseReviewerResults(data)
	if err != nil {
		return nil, err
	}

	slog.Debug("gerrit api call",
		"endpoint", revisionPath(ref)+"/review",
		"count", len(results),
	)
	return results, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := wire.Encode(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	return data, nil
}

// endpoint resolves an API path against the base URL. Authenticated requests
// go through the /a/ prefix. path must already be escaped.
func (c *Client) endpoint(path string) string {
	prefix := ""
	if c.username != "" {
		prefix = "/a"
	}
	return c.baseURL.String() + prefix + path
}

func revisionPath(ref model.ChangeRef) string {
	revision := ref.Revision
	if revision == "" {
		revision = "current"
	}
	return "/changes/" + url.PathEscape(ref.Change) + "/revisions/" + url.PathEscape(revision)
}

// Package github implements the comment ports against GitHub pull request
// review comments using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/gerritpanel/internal/domain/model"
	"github.com/ericfisherdev/gerritpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.CommentSource = (*Client)(nil)
	_ driven.CommentWriter = (*Client)(nil)
)

// Client implements the comment ports for GitHub pull requests. A ChangeRef
// addresses a PR as Project "owner/repo", Change "<number>" and Revision
// "<commit sha>".
type Client struct {
	gh         *gh.Client
	httpClient *http.Client // Shared with gh; used for GraphQL requests.
	token      string       // Stored for GraphQL Authorization header.
	graphqlURL string       // "https://api.github.com/graphql" in production; derived from baseURL in tests.
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
//
// timeout bounds each request, including time spent waiting out a secondary
// rate limit.
func NewClient(token string, timeout time.Duration) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	rateLimitClient.Timeout = timeout
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{
		gh:         client,
		httpClient: rateLimitClient,
		token:      token,
		graphqlURL: "https://api.github.com/graphql",
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
// An empty token disables thread resolution lookups.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	// Derive graphqlURL from baseURL so httptest servers can intercept GraphQL requests.
	graphqlU, err := u.Parse("graphql")
	if err != nil {
		return nil, fmt.Errorf("deriving GraphQL URL: %w", err)
	}

	return &Client{
		gh:         client,
		httpClient: httpClient,
		token:      token,
		graphqlURL: graphqlU.String(),
	}, nil
}

// ListComments retrieves all review comments on the pull request.
// It handles pagination automatically and maps go-github types to domain model types.
// Thread resolution from GraphQL fills Unresolved when a token is configured.
func (c *Client) ListComments(ctx context.Context, ref model.ChangeRef) ([]model.Comment, error) {
	owner, repo, number, err := splitRef(ref)
	if err != nil {
		return nil, err
	}

	opts := &gh.PullRequestListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	allComments := []model.Comment{}

	for {
		comments, resp, err := c.gh.PullRequests.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing review comments for %s#%d (page %d): %w", ref.Project, number, opts.Page, err)
		}

		logRateLimit(resp, ref.Project+"/comments", opts.Page, len(comments))

		for _, comment := range comments {
			allComments = append(allComments, mapReviewComment(comment))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	resolved, err := c.FetchThreadResolution(ctx, ref)
	if err != nil {
		return nil, err
	}
	applyThreadResolution(allComments, resolved)

	return allComments, nil
}

// ListDrafts returns an empty slice. GitHub only exposes pending comments as
// part of a pending review, which this client does not create.
func (c *Client) ListDrafts(_ context.Context, ref model.ChangeRef) ([]model.Comment, error) {
	if _, _, _, err := splitRef(ref); err != nil {
		return nil, err
	}
	return []model.Comment{}, nil
}

// SaveDraft validates comment and posts it as a review comment. GitHub has no
// standalone drafts, so the returned comment is already published. Replies are
// created in the parent thread; other fields are then ignored by GitHub.
func (c *Client) SaveDraft(ctx context.Context, ref model.ChangeRef, comment model.Comment) (model.Comment, error) {
	if err := model.ValidateDraft(comment); err != nil {
		return model.Comment{}, err
	}

	owner, repo, number, err := splitRef(ref)
	if err != nil {
		return model.Comment{}, err
	}

	if comment.InReplyTo != nil {
		parentID, err := strconv.ParseInt(*comment.InReplyTo, 10, 64)
		if err != nil {
			return model.Comment{}, &model.InconsistentAnchorError{
				FieldName: "in_reply_to",
				Reason:    fmt.Sprintf("%q is not a GitHub comment ID", *comment.InReplyTo),
			}
		}
		created, resp, err := c.gh.PullRequests.CreateCommentInReplyTo(ctx, owner, repo, number, comment.Message, parentID)
		if err != nil {
			return model.Comment{}, fmt.Errorf("replying to comment %d on %s#%d: %w", parentID, ref.Project, number, err)
		}
		logRateLimit(resp, ref.Project+"/reply-comment", 0, 1)
		return mapReviewComment(created), nil
	}

	req, err := toPullRequestComment(comment)
	if err != nil {
		return model.Comment{}, err
	}

	commitID := ref.Revision
	if commitID == "" || commitID == "current" {
		pr, _, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
		if err != nil {
			return model.Comment{}, fmt.Errorf("fetching PR head SHA before comment submit: %w", err)
		}
		commitID = pr.GetHead().GetSHA()
	}
	req.CommitID = gh.Ptr(commitID)

	created, resp, err := c.gh.PullRequests.CreateComment(ctx, owner, repo, number, req)
	if err != nil {
		return model.Comment{}, fmt.Errorf("creating review comment on %s#%d: %w", ref.Project, number, err)
	}
	logRateLimit(resp, ref.Project+"/create-comment", 0, 1)

	return mapReviewComment(created), nil
}

// toPullRequestComment converts a domain comment to a GitHub review comment
// request. GitHub anchors on whole lines of either the base or the head, so
// merge parents beyond the first and character offsets cannot be expressed.
func toPullRequestComment(c model.Comment) (*gh.PullRequestComment, error) {
	side := "RIGHT"
	if c.Side == model.SideParent {
		if c.Parent != nil && *c.Parent > 1 {
			return nil, fmt.Errorf("parent %d: %w", *c.Parent, model.ErrUnsupportedAnchor)
		}
		side = "LEFT"
	}

	req := &gh.PullRequestComment{
		Body: gh.Ptr(c.Message),
		Path: gh.Ptr(c.Path),
	}

	if c.Range != nil {
		r := *c.Range
		if r.StartCharacter != 0 || r.EndCharacter != 0 {
			return nil, fmt.Errorf("character offsets in %s: %w", r, model.ErrUnsupportedAnchor)
		}
		// The end line is exclusive; with a zero end character the span stops
		// at the end of the previous line.
		last := r.EndLine - 1
		if last < r.StartLine {
			last = r.StartLine
		}
		req.Side = gh.Ptr(side)
		req.Line = gh.Ptr(last)
		if last > r.StartLine {
			req.StartLine = gh.Ptr(r.StartLine)
			req.StartSide = gh.Ptr(side)
		}
		return req, nil
	}

	if c.IsFileComment() {
		req.SubjectType = gh.Ptr("file")
		return req, nil
	}

	req.Side = gh.Ptr(side)
	req.Line = gh.Ptr(c.AnchorLine())
	return req, nil
}

// mapReviewComment converts a go-github PullRequestComment to a domain model Comment.
// Multi-line comments become a range covering whole lines, ending at the
// start of the line after the last one.
func mapReviewComment(c *gh.PullRequestComment) model.Comment {
	comment := model.Comment{
		Kind:    model.CommentKindPublished,
		ID:      strconv.FormatInt(c.GetID(), 10),
		Path:    c.GetPath(),
		Side:    model.SideRevision,
		Updated: c.GetUpdatedAt().Time,
		Message: c.GetBody(),
	}

	if strings.EqualFold(c.GetSide(), "LEFT") {
		comment.Side = model.SideParent
	}

	if c.InReplyTo != nil {
		comment.InReplyTo = gh.Ptr(strconv.FormatInt(c.GetInReplyTo(), 10))
	}

	if u := c.GetUser(); u != nil {
		comment.Author = &model.AccountInfo{
			AccountID: int(u.GetID()),
			Username:  u.GetLogin(),
			Name:      u.GetName(),
		}
	}

	if c.GetSubjectType() == "file" {
		return comment
	}

	// Outdated comments have no current line; fall back to where they were made.
	line := c.GetLine()
	startLine := c.GetStartLine()
	if line == 0 {
		line = c.GetOriginalLine()
		startLine = c.GetOriginalStartLine()
	}
	if line == 0 {
		return comment
	}

	comment.Line = gh.Ptr(line)
	if startLine > 0 && startLine < line {
		comment.Range = &model.Range{
			StartLine: startLine,
			EndLine:   line + 1,
		}
	}
	return comment
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 && resp.Rate.Limit > 0 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// splitRef extracts owner, repo and PR number from a ChangeRef.
func splitRef(ref model.ChangeRef) (string, string, int, error) {
	parts := strings.SplitN(ref.Project, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", 0, fmt.Errorf("%w: project %q is not owner/repo", model.ErrInvalidChangeRef, ref.Project)
	}
	number, err := strconv.Atoi(ref.Change)
	if err != nil || number <= 0 {
		return "", "", 0, fmt.Errorf("%w: change %q is not a pull request number", model.ErrInvalidChangeRef, ref.Change)
	}
	return parts[0], parts[1], number, nil
}

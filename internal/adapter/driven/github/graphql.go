package github

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ericfisherdev/gerritpanel/internal/adapter/wire"
	"github.com/ericfisherdev/gerritpanel/internal/domain/model"
)

const threadResolutionQuery = `query($owner: String!, $repo: String!, $pr: Int!) {
	repository(owner: $owner, name: $repo) {
		pullRequest(number: $pr) {
			reviewThreads(first: 100) {
				pageInfo {
					hasNextPage
				}
				nodes {
					isResolved
					comments(first: 1) {
						nodes {
							databaseId
						}
					}
				}
			}
		}
	}
}`

// graphqlRequest is the JSON body sent to the GitHub GraphQL API.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// graphqlResponse is the shape of a review thread resolution response.
type graphqlResponse struct {
	Data struct {
		Repository struct {
			PullRequest struct {
				ReviewThreads struct {
					PageInfo struct {
						HasNextPage bool `json:"hasNextPage"`
					} `json:"pageInfo"`
					Nodes []struct {
						IsResolved bool `json:"isResolved"`
						Comments   struct {
							Nodes []struct {
								DatabaseID int64 `json:"databaseId"`
							} `json:"nodes"`
						} `json:"comments"`
					} `json:"nodes"`
				} `json:"reviewThreads"`
			} `json:"pullRequest"`
		} `json:"repository"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchThreadResolution queries the GitHub GraphQL API for review thread
// resolution status. It returns a map from the ID of each thread's first
// comment to whether the thread is resolved.
//
// The REST comment listing is the primary source; every failure here is
// logged and yields an empty map so callers fall back to unknown resolution.
func (c *Client) FetchThreadResolution(ctx context.Context, ref model.ChangeRef) (map[int64]bool, error) {
	if c.token == "" {
		return map[int64]bool{}, nil
	}

	owner, repo, number, err := splitRef(ref)
	if err != nil {
		return nil, err
	}

	bodyBytes, err := wire.Encode(graphqlRequest{
		Query: threadResolutionQuery,
		Variables: map[string]any{
			"owner": owner,
			"repo":  repo,
			"pr":    number,
		},
	})
	if err != nil {
		slog.Warn("graphql: failed to marshal request", "error", err)
		return map[int64]bool{}, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(bodyBytes))
	if err != nil {
		slog.Warn("graphql: failed to create request", "error", err)
		return map[int64]bool{}, nil
	}
	httpReq.Header.Set("Authorization", fmt.Sprintf("bearer %s", c.token))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		slog.Warn("graphql: request failed", "error", err, "repo", ref.Project, "pr", number)
		return map[int64]bool{}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("graphql: non-200 response", "status", resp.StatusCode, "repo", ref.Project, "pr", number)
		return map[int64]bool{}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("graphql: failed to read response", "error", err, "repo", ref.Project, "pr", number)
		return map[int64]bool{}, nil
	}

	gqlResp, err := wire.Decode[graphqlResponse](body)
	if err != nil {
		slog.Warn("graphql: failed to decode response", "error", err, "repo", ref.Project, "pr", number)
		return map[int64]bool{}, nil
	}

	if len(gqlResp.Errors) > 0 {
		slog.Warn("graphql: response contains errors",
			"errors", gqlResp.Errors[0].Message,
			"repo", ref.Project,
			"pr", number,
		)
		return map[int64]bool{}, nil
	}

	threads := gqlResp.Data.Repository.PullRequest.ReviewThreads
	if threads.PageInfo.HasNextPage {
		slog.Warn("graphql: review threads exceed 100, pagination needed",
			"repo", ref.Project,
			"pr", number,
		)
	}

	result := make(map[int64]bool, len(threads.Nodes))
	for _, thread := range threads.Nodes {
		if len(thread.Comments.Nodes) > 0 && thread.Comments.Nodes[0].DatabaseID != 0 {
			result[thread.Comments.Nodes[0].DatabaseID] = thread.IsResolved
		}
	}

	return result, nil
}

// applyThreadResolution sets Unresolved on every comment whose thread appears
// in resolved. GitHub replies always point at the thread's first comment.
func applyThreadResolution(comments []model.Comment, resolved map[int64]bool) {
	if len(resolved) == 0 {
		return
	}

	for i := range comments {
		root := comments[i].ID
		if comments[i].InReplyTo != nil {
			root = *comments[i].InReplyTo
		}
		id, err := strconv.ParseInt(root, 10, 64)
		if err != nil {
			continue
		}
		if isResolved, ok := resolved[id]; ok {
			unresolved := !isResolved
			comments[i].Unresolved = &unresolved
		}
	}
}

package model

// AccountInfo identifies a user on the review server.
type AccountInfo struct {
	AccountID int    `json:"_account_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
}

// ReviewerInfo is an account added as reviewer, with its current votes.
type ReviewerInfo struct {
	AccountInfo
	Approvals map[string]string `json:"approvals,omitempty"`
}

// AddReviewerResult is the outcome of adding one reviewer or group to a change.
type AddReviewerResult struct {
	Input     string         `json:"input"`
	Reviewers []ReviewerInfo `json:"reviewers,omitempty"`
	CCs       []ReviewerInfo `json:"ccs,omitempty"`
	Error     string         `json:"error,omitempty"`
	Confirm   bool           `json:"confirm,omitempty"`
}

// ReviewerResults maps reviewer identifiers, as supplied by the caller, to
// the outcome of adding each of them.
type ReviewerResults map[string]AddReviewerResult

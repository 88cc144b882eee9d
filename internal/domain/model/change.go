package model

// ChangeRef addresses one revision of a change under review. Project is only
// needed by backends that scope changes to a repository.
type ChangeRef struct {
	Project  string
	Change   string
	Revision string
}

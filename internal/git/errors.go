package git

import "errors"

// Repo errors
var (
	ErrNotRepository = errors.New("path is not inside a git repository")
	ErrEmptyRevision = errors.New("revision is required to compute diff")
)

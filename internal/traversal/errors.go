package traversal

import "errors"

var (
	ErrInvalidID       = errors.New("invalid node id")
	ErrRootUnavailable = errors.New("root node unavailable")
)

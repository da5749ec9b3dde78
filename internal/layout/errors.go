package layout

import "errors"

var (
	ErrInvalidParent = errors.New("invalid parent")
	ErrInvalidWeight = errors.New("visual weight must be greater than zero")
	ErrCycleDetected = errors.New("cycle detected")
	ErrNodeNotFound  = errors.New("node not found")
	ErrDuplicateNode = errors.New("node id already exists")
	ErrInvalidNode   = errors.New("invalid node")
	ErrRootImmutable = errors.New("venue root cannot be removed or moved")
	ErrVenueNotFound = errors.New("venue not found")
)

package core

import "errors"

// Routing failures. All are recoverable by the caller; wrap with fmt.Errorf("...: %w")
// and match with errors.Is.
var (
	// ErrPathNotFound means the frontier emptied (or the exploration bound was hit)
	// before the goal was reached.
	ErrPathNotFound = errors.New("path not found")

	// ErrCrossLevelRouting means a same-level search was asked to route between levels.
	ErrCrossLevelRouting = errors.New("cross-level routing rejected")

	// ErrTransferPointNotFound means no VTU node is reachable from the start.
	ErrTransferPointNotFound = errors.New("transfer point not found")

	// ErrNodeLookupFailed means a coordinate or identifier resolves to no node.
	ErrNodeLookupFailed = errors.New("node lookup failed")

	// ErrDuplicateCoords means a second node was added at an occupied coordinate.
	ErrDuplicateCoords = errors.New("duplicate node coordinates")
)

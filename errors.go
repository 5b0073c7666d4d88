package confluence2md

import "errors"

// Sentinel errors for library operations.
var (
	// ErrInternal wraps a panic recovered during conversion.
	ErrInternal = errors.New("internal conversion error")

	// Option validation errors.
	ErrInvalidMaxIterations    = errors.New("invalid max iterations")
	ErrInvalidResidueThreshold = errors.New("invalid residue threshold")
	ErrNilHTMLConverter        = errors.New("HTML converter cannot be nil")
)

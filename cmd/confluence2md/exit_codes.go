package main

import (
	"errors"
	"os"

	confluence2md "github.com/alnah/go-confluence2md"
	"github.com/alnah/go-confluence2md/internal/config"
	"github.com/alnah/go-confluence2md/internal/fileutil"
)

// Exit codes for the confluence2md CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, unreadable page
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrJSONBody) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, fileutil.ErrEmptyPath) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, errUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, confluence2md.ErrInvalidMaxIterations) ||
		errors.Is(err, confluence2md.ErrInvalidResidueThreshold) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrEmbedRequiresJSON) {
		return ExitUsage
	}

	return ExitGeneral
}

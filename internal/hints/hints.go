// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"fmt"
	"path/filepath"
	"strings"
)

// appDir is the per-user config directory name searched by the CLI.
const appDir = "go-confluence2md"

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in <user config dir>/go-confluence2md/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/"+appDir+"/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForInvalidExtension returns hints listing the accepted input extensions.
func ForInvalidExtension(supported []string) string {
	var hints []string
	if len(supported) > 0 {
		hints = append(hints, "supported: "+strings.Join(supported, ", "))
	}
	hints = append(hints, "use - to read storage markup from stdin")
	return formatHints(hints)
}

// ForJSONBody returns hints for page JSON documents without a storage body.
func ForJSONBody(jsonPath string) string {
	return formatHints([]string{
		"export pages with expand=body.storage",
		fmt.Sprintf("or point --json-path at the markup (current: %s)", jsonPath),
	})
}

// ForEmbed returns hints for --embed used without page JSON input.
func ForEmbed() string {
	return format("--embed rewrites page JSON; pass a .json export or add --json")
}

// ForIterationCap returns hints for conversions that stopped at the
// per-pass iteration cap.
func ForIterationCap(maxIterations int) string {
	return format(fmt.Sprintf("raise --max-iterations (current: %d) for pages with many elements", maxIterations))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}

package main

import (
	"fmt"
	"io"
)

// printShortUsage prints the one-line usage shown after flag errors.
func printShortUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: confluence2md [flags] <file|dir|->")
	fmt.Fprintln(w, "Run 'confluence2md --help' for details.")
}

// printUsage prints the full usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: confluence2md [flags] <file|dir|->")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert Confluence storage-format pages to Markdown.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Storage file, directory, or - for stdin")
	fmt.Fprintln(w, "           (optional if config has input.defaultDir)")
	fmt.Fprintln(w, "           Extensions: .xhtml, .html, .htm, .storage, .json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>         Output .md file or directory (stdin: file, default stdout)")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>           Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page JSON:")
	fmt.Fprintln(w, "      --json                  Treat input as page JSON (implied by .json)")
	fmt.Fprintln(w, "      --json-path <path>      Storage body path (default body.storage.value)")
	fmt.Fprintln(w, "      --front-matter          Prefix YAML front matter (title, id, space, version)")
	fmt.Fprintln(w, "      --embed                 Also write <name>.md.json with body.markdown set")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Preview:")
	fmt.Fprintln(w, "      --preview               Also write <name>.preview.html")
	fmt.Fprintln(w, "      --preview-style <s>     Chroma style for code blocks (default github)")
	fmt.Fprintln(w, "      --attachments <dir>     Resolve attachment: links against dir")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "      --max-iterations <n>    Rewrites per pass (default 1000)")
	fmt.Fprintln(w, "      --residue-threshold <n> Longest kept non-space run in bytes (default 500)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show debug logs and timing")
	fmt.Fprintln(w, "      --version               Show version information")
	fmt.Fprintln(w, "  -h, --help                  Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0 success, 1 general error, 2 usage or config error, 3 I/O error")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  confluence2md page.xhtml")
	fmt.Fprintln(w, "  confluence2md -o docs/ --front-matter export/")
	fmt.Fprintln(w, "  confluence2md --json - < page.json > page.md")
}

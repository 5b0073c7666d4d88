package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared by every invocation.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds page JSON flags.
type pageFlags struct {
	json        bool   // Treat every input as page JSON
	jsonPath    string // gjson path of the storage body
	frontMatter bool   // Prefix YAML front matter
	embed       bool   // Write page JSON with body.markdown set
}

// previewFlags holds HTML preview flags.
type previewFlags struct {
	enabled     bool
	style       string
	attachments string
}

// conversionFlags holds converter tuning flags.
type conversionFlags struct {
	maxIterations    int
	residueThreshold int
}

// cliFlags holds all flags of the confluence2md command.
type cliFlags struct {
	common     commonFlags
	output     string
	workers    int
	page       pageFlags
	preview    previewFlags
	conversion conversionFlags
	version    bool
	help       bool

	// changed reports whether a flag was set on the command line, so that
	// explicit false or zero values still override the config file.
	changed func(name string) bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addPageFlags adds page JSON flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.BoolVar(&f.json, "json", false, "treat input as Confluence page JSON")
	fs.StringVar(&f.jsonPath, "json-path", "", "storage body path in page JSON (default body.storage.value)")
	fs.BoolVar(&f.frontMatter, "front-matter", false, "prefix YAML front matter from page metadata")
	fs.BoolVar(&f.embed, "embed", false, "also write page JSON with body.markdown set")
}

// addPreviewFlags adds HTML preview flags to a FlagSet.
func addPreviewFlags(fs *flag.FlagSet, f *previewFlags) {
	fs.BoolVar(&f.enabled, "preview", false, "also write an HTML preview")
	fs.StringVar(&f.style, "preview-style", "", "chroma style for preview code blocks")
	fs.StringVar(&f.attachments, "attachments", "", "directory of page attachments for preview links")
}

// addConversionFlags adds converter tuning flags to a FlagSet.
func addConversionFlags(fs *flag.FlagSet, f *conversionFlags) {
	fs.IntVar(&f.maxIterations, "max-iterations", 0, "rewrites per normalizer pass (0 = default 1000)")
	fs.IntVar(&f.residueThreshold, "residue-threshold", 0, "longest kept non-space run in bytes (0 = default 500)")
}

// parseFlags parses command-line flags and returns positional args.
// Nothing is printed; callers report errors and usage themselves.
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("confluence2md", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &cliFlags{changed: fs.Changed}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)
	addPreviewFlags(fs, &f.preview)
	addConversionFlags(fs, &f.conversion)

	fs.BoolVar(&f.version, "version", false, "show version information")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")

	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

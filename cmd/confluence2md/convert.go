package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	confluence2md "github.com/alnah/go-confluence2md"
	"github.com/alnah/go-confluence2md/internal/config"
	"github.com/alnah/go-confluence2md/internal/fileutil"
	"github.com/alnah/go-confluence2md/internal/hints"
	"github.com/alnah/go-confluence2md/internal/preview"
)

// stdinName is the input argument that reads storage markup from stdin.
const stdinName = "-"

// errUsage marks invalid command-line usage.
var errUsage = errors.New("invalid usage")

// conversionParams groups settings shared across a batch.
type conversionParams struct {
	jsonInput     bool // --json: every input is page JSON
	jsonPath      string
	frontMatter   bool
	embed         bool
	renderer      *preview.Renderer // nil unless previews are enabled
	attachments   string
	maxIterations int // Effective cap, for hints
	logger        *slog.Logger
}

// outputs holds everything produced for one document.
type outputs struct {
	markdown string // Converted Markdown, with front matter if requested
	embedded []byte // Page JSON with body.markdown set; nil unless --embed
	preview  string // HTML page; empty unless --preview
	capped   bool
}

// runMain runs the CLI and returns the process exit code.
func runMain(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		printShortUsage(env.Stderr)
		return ExitUsage
	}

	if flags.help {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	if flags.version {
		fmt.Fprintf(env.Stdout, "confluence2md %s\n", Version)
		return ExitSuccess
	}

	if err := runConvert(ctx, positional, flags, env); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *cliFlags, env *Environment) error {
	// Validate worker count early
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}

	// Merge CLI flags into config (CLI wins), then check the result
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, cfg.Log, flags.common)

	conv, err := newConverter(cfg, logger)
	if err != nil {
		return err
	}

	params := buildParams(cfg, flags, logger)

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}

	if inputPath == stdinName {
		return convertStdin(ctx, conv, params, flags.output, env)
	}

	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := discoverFiles(inputPath, outputDir, params.jsonInput)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no storage files found in %s", ErrNoInput, inputPath)
	}

	workers := resolveWorkerCount(flags.workers)
	logger.Debug("starting conversion", "files", len(files), "workers", workers)

	results := convertBatch(ctx, conv, workers, files, params, env)

	failed := printResults(results, flags.common.quiet, flags.common.verbose, params.maxIterations, env)
	if failed > 0 {
		return newBatchError(results)
	}

	return nil
}

// loadConfig loads the named config, or copies the environment's default.
func loadConfig(name string, env *Environment) (*config.Config, error) {
	if name == "" {
		if env.Config == nil {
			return config.DefaultConfig(), nil
		}
		cfg := *env.Config
		return &cfg, nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			var searched []string
			if !fileutil.IsFilePath(name) {
				searched = config.SearchPaths(name)
			}
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(searched))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *cliFlags, cfg *config.Config) {
	if flags.page.jsonPath != "" {
		cfg.Input.JSONPath = flags.page.jsonPath
	}

	if flags.isSet("front-matter") {
		cfg.Output.FrontMatter = flags.page.frontMatter
	}
	if flags.isSet("embed") {
		cfg.Output.Embed = flags.page.embed
	}
	if flags.isSet("preview") {
		cfg.Output.Preview = flags.preview.enabled
	}
	if flags.preview.style != "" {
		cfg.Output.PreviewStyle = flags.preview.style
	}
	if flags.preview.attachments != "" {
		cfg.Output.AttachmentsDir = flags.preview.attachments
	}

	if flags.isSet("max-iterations") {
		cfg.Conversion.MaxIterations = flags.conversion.maxIterations
	}
	if flags.isSet("residue-threshold") {
		cfg.Conversion.ResidueThreshold = flags.conversion.residueThreshold
	}
}

// isSet reports whether the named flag was given on the command line.
func (f *cliFlags) isSet(name string) bool {
	return f.changed != nil && f.changed(name)
}

// newConverter builds the library converter from config. Zero values keep
// the library defaults.
func newConverter(cfg *config.Config, logger *slog.Logger) (*confluence2md.Converter, error) {
	opts := []confluence2md.Option{confluence2md.WithLogger(logger)}

	if cfg.Conversion.MaxIterations > 0 {
		opts = append(opts, confluence2md.WithMaxIterations(cfg.Conversion.MaxIterations))
	}
	if cfg.Conversion.ResidueThreshold > 0 {
		opts = append(opts, confluence2md.WithResidueThreshold(cfg.Conversion.ResidueThreshold))
	}
	if len(cfg.Conversion.SkipTags) > 0 {
		opts = append(opts, confluence2md.WithSkipTags(cfg.Conversion.SkipTags...))
	}
	if len(cfg.Conversion.Emoticons) > 0 {
		opts = append(opts, confluence2md.WithEmoticons(cfg.Conversion.Emoticons))
	}

	return confluence2md.NewConverter(opts...)
}

// buildParams resolves the per-batch settings from merged config.
func buildParams(cfg *config.Config, flags *cliFlags, logger *slog.Logger) *conversionParams {
	params := &conversionParams{
		jsonInput:     flags.page.json,
		jsonPath:      cfg.Input.JSONPath,
		frontMatter:   cfg.Output.FrontMatter,
		embed:         cfg.Output.Embed,
		attachments:   cfg.Output.AttachmentsDir,
		maxIterations: cfg.Conversion.MaxIterations,
		logger:        logger,
	}

	if params.jsonPath == "" {
		params.jsonPath = config.DefaultJSONPath
	}
	if params.maxIterations == 0 {
		params.maxIterations = confluence2md.DefaultMaxIterations
	}
	if cfg.Output.Preview {
		params.renderer = preview.NewRenderer(cfg.Output.PreviewStyle)
	}

	return params
}

// resolveInputPath returns the input argument, or the configured default.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	switch {
	case len(args) > 1:
		return "", fmt.Errorf("%w: expected one input, got %d", errUsage, len(args))
	case len(args) == 1:
		return args[0], nil
	case cfg.Input.DefaultDir != "":
		return cfg.Input.DefaultDir, nil
	default:
		return "", fmt.Errorf("%w: pass a file, a directory, or - for stdin", ErrNoInput)
	}
}

// resolveOutputDir returns the output flag, or the configured default.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// renderOutputs converts doc and builds every requested output.
func renderOutputs(ctx context.Context, conv CLIConverter, doc *document, params *conversionParams) (*outputs, error) {
	if params.embed && doc.page == nil {
		return nil, fmt.Errorf("%w: %s%s", ErrEmbedRequiresJSON, doc.name, hints.ForEmbed())
	}

	res, err := conv.Convert(ctx, confluence2md.Input{Markup: doc.markup, Name: doc.name})
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", doc.name, err)
	}
	if res.Stats.Fallback {
		params.logger.Warn("HTML conversion failed, kept normalized markup", "name", doc.name)
	}

	out := &outputs{markdown: res.Markdown, capped: res.Stats.Capped()}

	if params.frontMatter {
		if out.markdown, err = withFrontMatter(doc.meta, res.Markdown); err != nil {
			return nil, err
		}
	}

	if params.embed {
		if out.embedded, err = embedMarkdown(doc.page, res.Markdown); err != nil {
			return nil, err
		}
	}

	if params.renderer != nil {
		page, err := params.renderer.Render(ctx, doc.meta.Title, res.Markdown)
		if err != nil {
			return nil, fmt.Errorf("rendering preview for %s: %w", doc.name, err)
		}
		if out.preview, err = preview.RewriteAttachmentLinks(page, params.attachments); err != nil {
			return nil, fmt.Errorf("rewriting preview links for %s: %w", doc.name, err)
		}
	}

	return out, nil
}

// convertStdin converts stdin. Without an output path the result goes to
// stdout: the page JSON with --embed, Markdown otherwise.
func convertStdin(ctx context.Context, conv CLIConverter, params *conversionParams, output string, env *Environment) error {
	data, err := io.ReadAll(env.Stdin)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadInput, err)
	}

	doc, err := parseDocument(stdinName, data, params.jsonInput, params.jsonPath)
	if err != nil {
		return err
	}

	if output == "" && params.renderer != nil {
		params.logger.Warn("preview needs --output when writing to stdout, skipped")
		p := *params
		p.renderer = nil
		params = &p
	}

	out, err := renderOutputs(ctx, conv, doc, params)
	if err != nil {
		return err
	}
	if out.capped {
		fmt.Fprintf(env.Stderr, "WARNING stdin: stopped at iteration cap, some elements were left unconverted%s\n",
			hints.ForIterationCap(params.maxIterations))
	}

	if output != "" {
		return writeOutputs(output, out)
	}

	payload := markdownBytes(out.markdown)
	if out.embedded != nil {
		payload = out.embedded
	}
	if _, err := env.Stdout.Write(payload); err != nil {
		return fmt.Errorf("%w: stdout: %v", ErrWriteOutput, err)
	}
	return nil
}

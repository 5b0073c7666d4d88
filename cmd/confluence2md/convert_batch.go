package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	confluence2md "github.com/alnah/go-confluence2md"
	"github.com/alnah/go-confluence2md/internal/fileutil"
	"github.com/alnah/go-confluence2md/internal/hints"
)

// Sentinel errors for batch operations.
var (
	ErrNoInput     = errors.New("no input specified")
	ErrReadInput   = errors.New("failed to read input file")
	ErrWriteOutput = errors.New("failed to write output file")
)

// CLIConverter is the interface for the conversion service.
type CLIConverter interface {
	Convert(ctx context.Context, input confluence2md.Input) (*confluence2md.ConvertResult, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*confluence2md.Converter)(nil)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
	Capped     bool // A normalizer pass stopped at the iteration cap
}

// batchError reports failed conversions. It unwraps to every per-file
// error so exit codes reflect their causes.
type batchError struct {
	failed int
	errs   []error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d conversion(s) failed", e.failed)
}

func (e *batchError) Unwrap() []error {
	return e.errs
}

// newBatchError collects the errors of failed results, or returns nil.
func newBatchError(results []ConversionResult) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &batchError{failed: len(errs), errs: errs}
}

// resolveWorkerCount determines the worker pool size.
// Priority: explicit flag > GOMAXPROCS (adjusted by automaxprocs for containers).
func resolveWorkerCount(flagWorkers int) int {
	if flagWorkers > 0 {
		return flagWorkers
	}

	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	if n > maxWorkers {
		return maxWorkers
	}
	return n
}

// convertBatch processes files concurrently. The converter is shared; it
// holds only immutable configuration.
func convertBatch(ctx context.Context, conv CLIConverter, workers int, files []FileToConvert, params *conversionParams, env *Environment) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(max(workers, 1), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params, env)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv CLIConverter, f FileToConvert, params *conversionParams, env *Environment) ConversionResult {
	start := env.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	finish := func(err error) ConversionResult {
		result.Err = err
		result.Duration = env.Now().Sub(start)
		return result
	}

	data, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return finish(fmt.Errorf("%w: %v", ErrReadInput, err))
	}

	doc, err := parseDocument(f.InputPath, data, f.JSON, params.jsonPath)
	if err != nil {
		return finish(err)
	}

	out, err := renderOutputs(ctx, conv, doc, params)
	if err != nil {
		return finish(err)
	}
	result.Capped = out.capped

	return finish(writeOutputs(f.OutputPath, out))
}

// writeOutputs writes the Markdown file and any --embed or --preview siblings.
func writeOutputs(mdPath string, out *outputs) error {
	if err := writeOutput(mdPath, markdownBytes(out.markdown)); err != nil {
		return err
	}
	if out.embedded != nil {
		if err := writeOutput(embedOutputPath(mdPath), out.embedded); err != nil {
			return err
		}
	}
	if out.preview != "" {
		if err := writeOutput(previewOutputPath(mdPath), []byte(out.preview)); err != nil {
			return err
		}
	}
	return nil
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if err := fileutil.WriteFile(path, data); err != nil {
		return fmt.Errorf("%w: %s: %v%s", ErrWriteOutput, path, err, hints.ForOutputDirectory())
	}
	return nil
}

// markdownBytes terminates non-empty Markdown with a newline.
func markdownBytes(markdown string) []byte {
	if markdown == "" {
		return nil
	}
	return []byte(markdown + "\n")
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs conversion results to the environment's writers.
// Returns the number of failed conversions.
func printResults(results []ConversionResult, quiet, verbose bool, maxIterations int, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if r.Capped && !quiet {
			fmt.Fprintf(env.Stderr, "WARNING %s: stopped at iteration cap, some elements were left unconverted%s\n",
				r.InputPath, hints.ForIterationCap(maxIterations))
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

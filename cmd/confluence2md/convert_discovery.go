package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-confluence2md/internal/fileutil"
	"github.com/alnah/go-confluence2md/internal/hints"
)

// maxWorkers bounds --workers.
const maxWorkers = 32

// Output naming. Generated files are skipped when a directory is scanned,
// so repeated runs do not convert their own output.
const (
	markdownExt   = ".md"
	embedSuffix   = ".md.json"
	previewSuffix = ".preview.html"
	jsonExt       = ".json"
)

// storageExtensions lists the inputs holding raw storage markup.
var storageExtensions = []string{".xhtml", ".html", ".htm", ".storage"}

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension   = errors.New("unsupported input extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
	JSON       bool // Input is a page JSON document
}

// supportedExtensions returns every accepted input extension.
func supportedExtensions() []string {
	return append(append([]string{}, storageExtensions...), jsonExt)
}

// discoverFiles finds all storage and page JSON files to convert.
// forceJSON treats every file as page JSON.
func discoverFiles(inputPath, outputDir string, forceJSON bool) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateInputExtension(inputPath, forceJSON); err != nil {
			return nil, err
		}
		return []FileToConvert{{
			InputPath:  inputPath,
			OutputPath: resolveOutputPath(inputPath, outputDir, ""),
			JSON:       forceJSON || isJSONFile(inputPath),
		}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || isGeneratedFile(path) {
			return nil
		}
		if !fileutil.HasExtension(path, supportedExtensions()...) {
			return nil
		}
		files = append(files, FileToConvert{
			InputPath:  path,
			OutputPath: resolveOutputPath(path, outputDir, inputPath),
			JSON:       forceJSON || isJSONFile(path),
		})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the Markdown output path for an input file.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+markdownExt)
	}

	if strings.HasSuffix(outputDir, markdownExt) {
		return outputDir
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			relDir := filepath.Dir(relPath)
			return filepath.Join(outputDir, relDir, base+markdownExt)
		}
	}

	return filepath.Join(outputDir, base+markdownExt)
}

// embedOutputPath returns the --embed path for a Markdown output path.
func embedOutputPath(mdPath string) string {
	return strings.TrimSuffix(mdPath, markdownExt) + embedSuffix
}

// previewOutputPath returns the --preview path for a Markdown output path.
func previewOutputPath(mdPath string) string {
	return strings.TrimSuffix(mdPath, markdownExt) + previewSuffix
}

// isJSONFile reports whether path names a page JSON export.
func isJSONFile(path string) bool {
	return fileutil.HasExtension(path, jsonExt)
}

// isGeneratedFile reports whether path looks like an --embed or --preview output.
func isGeneratedFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, embedSuffix) || strings.HasSuffix(lower, previewSuffix)
}

// validateInputExtension checks that a single input file can be converted.
// With forceJSON any extension is accepted.
func validateInputExtension(path string, forceJSON bool) error {
	if forceJSON || fileutil.HasExtension(path, supportedExtensions()...) {
		return nil
	}
	return fmt.Errorf("%w: got %q%s", ErrInvalidExtension, filepath.Ext(path),
		hints.ForInvalidExtension(supportedExtensions()))
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > maxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, maxWorkers)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-confluence2md/internal/fileutil"
	"github.com/alnah/go-confluence2md/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidConfig   = errors.New("invalid config")
)

// AppDir is the directory name used under the user config directory.
const AppDir = "go-confluence2md"

// DefaultJSONPath locates the storage body in a Confluence REST page document.
const DefaultJSONPath = "body.storage.value"

// Limits on configurable values.
const (
	MaxPathLength      = 4096      // Filesystem paths
	MaxJSONPathLength  = 256       // gjson path syntax
	MaxStyleLength     = 50        // Chroma style name
	MaxTagLength       = 32        // HTML tag name
	MaxEmoticonLength  = 32        // Emoticon replacement text
	MaxIterationsLimit = 1_000_000 // Upper bound for conversion.maxIterations
)

// Config holds all configuration for page conversion.
type Config struct {
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Conversion ConversionConfig `yaml:"conversion"`
	Log        LogConfig        `yaml:"log"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
	JSONPath   string `yaml:"jsonPath"`   // Storage body path in page JSON (empty = DefaultJSONPath)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir     string `yaml:"defaultDir"`     // Default output directory (empty = same as source)
	FrontMatter    bool   `yaml:"frontMatter"`    // Prefix YAML front matter from page JSON
	Embed          bool   `yaml:"embed"`          // Write page JSON with body.markdown set
	Preview        bool   `yaml:"preview"`        // Also write an HTML preview
	PreviewStyle   string `yaml:"previewStyle"`   // Chroma style for preview code blocks (empty = github)
	AttachmentsDir string `yaml:"attachmentsDir"` // Directory holding page attachments, for preview links
}

// ConversionConfig defines converter options. Zero values select defaults.
type ConversionConfig struct {
	MaxIterations    int               `yaml:"maxIterations"`    // Rewrites per pass (default 1000)
	ResidueThreshold int               `yaml:"residueThreshold"` // Longest kept non-space run in bytes (default 500)
	SkipTags         []string          `yaml:"skipTags"`         // HTML tags dropped with content (empty = defaults)
	Emoticons        map[string]string `yaml:"emoticons"`        // Extra or overriding emoticon replacements
}

// LogConfig defines logging options.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error" (default: "warn")
	Format string `yaml:"format"` // "text", "json" (default: "text")
}

var (
	tagNamePattern      = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)
	emoticonNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

// Validate checks every section and reports all problems at once.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	errs := validation.Errors{
		"input.defaultDir":  validation.Validate(c.Input.DefaultDir, validation.Length(0, MaxPathLength)),
		"input.jsonPath":    validation.Validate(c.Input.JSONPath, validation.Length(0, MaxJSONPathLength)),
		"output.defaultDir": validation.Validate(c.Output.DefaultDir, validation.Length(0, MaxPathLength)),
		"output.previewStyle": validation.Validate(c.Output.PreviewStyle,
			validation.Length(0, MaxStyleLength)),
		"output.attachmentsDir": validation.Validate(c.Output.AttachmentsDir, validation.Length(0, MaxPathLength)),
		"conversion.maxIterations": validation.Validate(c.Conversion.MaxIterations,
			validation.Min(0), validation.Max(MaxIterationsLimit)),
		"conversion.residueThreshold": validation.Validate(c.Conversion.ResidueThreshold, validation.Min(0)),
		"conversion.skipTags": validation.Validate(c.Conversion.SkipTags,
			validation.Each(validation.Required, validation.Length(1, MaxTagLength), validation.Match(tagNamePattern))),
		"conversion.emoticons": validation.Validate(c.Conversion.Emoticons, validation.By(validateEmoticons)),
		"log.level": validation.Validate(strings.ToLower(c.Log.Level),
			validation.In("debug", "info", "warn", "error")),
		"log.format": validation.Validate(strings.ToLower(c.Log.Format),
			validation.In("text", "json")),
	}
	if err := errs.Filter(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// validateEmoticons checks emoticon names and replacement lengths.
func validateEmoticons(value any) error {
	table, _ := value.(map[string]string)
	for name, text := range table {
		if !emoticonNamePattern.MatchString(name) {
			return validation.NewError("validation_emoticon_name", fmt.Sprintf("invalid emoticon name %q", name))
		}
		if len(text) > MaxEmoticonLength {
			return validation.NewError("validation_emoticon_length",
				fmt.Sprintf("replacement for %q exceeds %d bytes", name, MaxEmoticonLength))
		}
	}
	return nil
}

// DefaultConfig returns a neutral configuration: converter defaults, no
// extra outputs, warnings only.
func DefaultConfig() *Config {
	return &Config{
		Input:  InputConfig{JSONPath: DefaultJSONPath},
		Output: OutputConfig{},
		Log:    LogConfig{Level: "warn", Format: "text"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the locations tried for a config name, in lookup order:
// the current directory, then <user config dir>/go-confluence2md/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDir, name+ext))
		}
	}

	return paths
}

// resolveConfigPath returns the first existing entry of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

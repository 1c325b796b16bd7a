package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConcurrency bounds the worker pools when settings do not say otherwise.
	DefaultConcurrency = 8
	// MaxConcurrency is the upper bound accepted from settings or flags.
	MaxConcurrency = 64
	// DefaultLargeRepoGiB is the size threshold for the large-repository filter.
	DefaultLargeRepoGiB = 1.0
	// DefaultLargeBlobMB is the deep-scan threshold for oversized historical blobs.
	DefaultLargeBlobMB = 50.0
)

// Thresholds holds the size limits used by the metrics and deep-scan phases.
type Thresholds struct {
	LargeRepoGiB float64 `yaml:"large_repo_gib"`
	LargeBlobMB  float64 `yaml:"large_blob_mb"`
}

// Settings is the scan configuration. Token may be an inline secret, a
// ${ENV_VAR} reference (expanded at load), or a path to a token file; file
// paths are kept as-is so the credential layer can re-read them mid-run.
type Settings struct {
	Organization string     `yaml:"organization"`
	Token        string     `yaml:"token"`
	AuthScheme   string     `yaml:"auth_scheme"` // "basic" (PAT, default) or "bearer"
	Concurrency  int        `yaml:"concurrency"`
	DeepScan     bool       `yaml:"deep_scan"`
	Thresholds   Thresholds `yaml:"thresholds"`
	HistoryPath  string     `yaml:"history_path"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewSettings reads and parses a configuration file, expands environment
// variables in the token, and applies defaults. Validation is deferred so
// callers can layer CLI overrides on top first.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var settings Settings
	if unmarshalErr := yaml.Unmarshal(data, &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	settings.Token = expandToken(settings.Token)
	settings.ApplyDefaults()

	return &settings, nil
}

// LoadSettings loads configuration from the given file, or from the first
// discovered default location when path is empty. With no file at all it
// falls back to defaults, letting flags and environment variables carry the
// whole configuration.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		found, err := FindConfigFile()
		if err != nil {
			logger.Debug("No config file found, using defaults")
			return DefaultSettings(), nil
		}
		path = found
	}

	logger.Infof("Using config file: %s", path)
	return NewSettings(path)
}

// DefaultSettings returns settings with every default applied and no
// organization or token; used when the run is configured by flags alone.
func DefaultSettings() *Settings {
	settings := &Settings{} //nolint:exhaustruct // zero values filled by ApplyDefaults
	settings.ApplyDefaults()
	return settings
}

// ApplyDefaults fills unset fields with their defaults.
func (it *Settings) ApplyDefaults() {
	if it.AuthScheme == "" {
		it.AuthScheme = "basic"
	}
	if it.Concurrency == 0 {
		it.Concurrency = DefaultConcurrency
	}
	if it.Thresholds.LargeRepoGiB == 0 {
		it.Thresholds.LargeRepoGiB = DefaultLargeRepoGiB
	}
	if it.Thresholds.LargeBlobMB == 0 {
		it.Thresholds.LargeBlobMB = DefaultLargeBlobMB
	}
	if it.HistoryPath == "" {
		it.HistoryPath = defaultHistoryPath()
	}
}

// ApplyOverrides layers CLI flag values over the loaded configuration and
// falls back to the conventional environment variables for the token.
func (it *Settings) ApplyOverrides(organization, token string) {
	if organization != "" {
		it.Organization = organization
	}
	if token != "" {
		it.Token = token
	}
	if it.Token == "" {
		it.Token = resolveTokenFromEnv()
	}
}

// Validate checks for required values and sane bounds.
func (it *Settings) Validate() error {
	if it.Organization == "" {
		return errors.New("organization is required (set in config or via --organization)")
	}
	if it.Token == "" {
		return errors.New(
			"token is required (set in config, via --token, or AZURE_DEVOPS_EXT_PAT / SYSTEM_ACCESSTOKEN)")
	}
	if it.AuthScheme != "basic" && it.AuthScheme != "bearer" {
		return fmt.Errorf("auth_scheme must be %q or %q, got %q", "basic", "bearer", it.AuthScheme)
	}
	if it.Concurrency < 1 || it.Concurrency > MaxConcurrency {
		return fmt.Errorf("concurrency must be between 1 and %d, got %d", MaxConcurrency, it.Concurrency)
	}
	if it.Thresholds.LargeRepoGiB <= 0 {
		return errors.New("thresholds.large_repo_gib must be positive")
	}
	if it.Thresholds.LargeBlobMB <= 0 {
		return errors.New("thresholds.large_blob_mb must be positive")
	}
	return nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".adoscope.yaml",
		".adoscope.yml",
		"adoscope.yaml",
		"adoscope.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// expandToken expands ${ENV_VAR} references. Unlike an eager file read, a
// token that resolves to a file path stays a path here; the credential layer
// re-reads it on every request so rotated tokens take effect mid-run.
func expandToken(raw string) string {
	if raw == "" {
		return raw
	}

	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

func resolveTokenFromEnv() string {
	if t := os.Getenv("AZURE_DEVOPS_EXT_PAT"); t != "" {
		return t
	}
	return os.Getenv("SYSTEM_ACCESSTOKEN")
}

// defaultHistoryPath places the snapshot store under the user's home
// directory, falling back to the working directory when home is unknown.
func defaultHistoryPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "adoscope.db"
	}
	return filepath.Join(homeDir, ".adoscope", "adoscope.db")
}

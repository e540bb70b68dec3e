// Package config loads the settings of the mzqc commands.
//
// Settings are read from the YAML file given with --config, or from the
// file named by the MZQC_CONFIG environment variable. Without a file the
// defaults are used. Command line flags override file values.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/524D/mzqc/internal/mzqc"
	"github.com/524D/mzqc/internal/store"
)

// EnvConfig names the environment variable with the config file path
const EnvConfig = "MZQC_CONFIG"

// Config holds all settings
type Config struct {
	// Log is the log level: debug, info or warn
	Log string `yaml:"log"`

	// Header fields for newly created documents
	ContactName    string `yaml:"contactName"`
	ContactAddress string `yaml:"contactAddress"`
	Description    string `yaml:"description"`

	// Vocabulary is added to newly created documents
	Vocabulary mzqc.ControlledVocabulary `yaml:"vocabulary"`

	// Match selects the run matching policy: label or inputfile
	Match string `yaml:"match"`
	// IgnoreLocation lets inputfile matching ignore the file location
	IgnoreLocation bool `yaml:"ignoreLocation"`

	S3 store.S3Config `yaml:"s3"`
}

var (
	// ErrInvalidLogLevel means the log level is not debug, info or warn
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Default returns the settings used when there is no config file
func Default() Config {
	return Config{
		Log:        "warn",
		Vocabulary: mzqc.PSIMS(),
		Match:      "label",
	}
}

// Load reads the config file at path. When path is empty, the path in
// MZQC_CONFIG is used, and when that is empty too the defaults are
// returned.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads YAML settings on top of the defaults
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that can't be checked by the YAML decoder
func (c Config) Validate() error {
	if _, err := ParseLevel(c.Log); err != nil {
		return err
	}
	if _, err := mzqc.ParseMatchPolicy(c.Match); err != nil {
		return err
	}
	return nil
}

// MergeOptions returns the merge settings with logger l
func (c Config) MergeOptions(l *slog.Logger) (mzqc.MergeOptions, error) {
	policy, err := mzqc.ParseMatchPolicy(c.Match)
	if err != nil {
		return mzqc.MergeOptions{}, err
	}
	return mzqc.MergeOptions{
		Policy:         policy,
		IgnoreLocation: c.IgnoreLocation,
		Logger:         l,
	}, nil
}

// NewDocument creates an empty document with the configured header
func (c Config) NewDocument() *mzqc.Document {
	return mzqc.New(c.ContactName, c.ContactAddress, c.Description, c.Vocabulary)
}

// ParseLevel converts a log level name. "warning" is accepted for warn.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	}
	return slog.LevelWarn, fmt.Errorf("%w %q (use debug, info or warn)", ErrInvalidLogLevel, s)
}

// Logger returns a text logger on w with the configured level
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(c.Log)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

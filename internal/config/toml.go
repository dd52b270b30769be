package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied when neither a flag nor the config file sets a value.
const (
	DefaultSplit         = "whole"
	DefaultKeywords      = 3
	DefaultMinKeywordLen = 3
	DefaultMaxRestarts   = 0
	DefaultPause         = 1200 * time.Millisecond
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Reader ReaderConfig `toml:"reader"`
	Voice  VoiceConfig  `toml:"voice"`
	Speech SpeechConfig `toml:"speech"`
	Log    LogConfig    `toml:"log"`
}

// ReaderConfig maps reading view settings.
type ReaderConfig struct {
	RestrictEditing *bool   `toml:"restrict-editing"`
	Split           *string `toml:"split"`
	Synonyms        *string `toml:"synonyms"`
}

// VoiceConfig maps voice-paced navigation settings.
type VoiceConfig struct {
	Command       []string `toml:"command"`
	Keywords      *int     `toml:"keywords"`
	MinKeywordLen *int     `toml:"min-keyword-len"`
	FinalsOnly    *bool    `toml:"finals-only"`
	Phonetic      *bool    `toml:"phonetic"`
	MaxRestarts   *int     `toml:"max-restarts"`
}

// SpeechConfig maps read-aloud settings.
type SpeechConfig struct {
	Command []string `toml:"command"`
	Pause   *string  `toml:"pause"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
	File   *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return FileConfig{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values set in the file. All problems are reported
// together.
func (c FileConfig) Validate() error {
	var errs []error
	if c.Reader.Split != nil {
		if err := ValidateSplit(*c.Reader.Split); err != nil {
			errs = append(errs, fmt.Errorf("reader.split: %w", err))
		}
	}
	if c.Voice.Keywords != nil && *c.Voice.Keywords <= 0 {
		errs = append(errs, errors.New("voice.keywords must be > 0"))
	}
	if c.Voice.MinKeywordLen != nil && *c.Voice.MinKeywordLen <= 0 {
		errs = append(errs, errors.New("voice.min-keyword-len must be > 0"))
	}
	if c.Voice.Command != nil && len(c.Voice.Command) == 0 {
		errs = append(errs, errors.New("voice.command must not be an empty list"))
	}
	if c.Speech.Command != nil && len(c.Speech.Command) == 0 {
		errs = append(errs, errors.New("speech.command must not be an empty list"))
	}
	if c.Speech.Pause != nil {
		if _, err := ParsePause(*c.Speech.Pause); err != nil {
			errs = append(errs, fmt.Errorf("speech.pause: %w", err))
		}
	}
	if c.Log.Level != nil {
		if err := ValidateLogLevel(*c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("log.level: %w", err))
		}
	}
	if c.Log.Format != nil {
		if err := ValidateLogFormat(*c.Log.Format); err != nil {
			errs = append(errs, fmt.Errorf("log.format: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ValidateSplit checks a bionic split mode name.
func ValidateSplit(s string) error {
	switch s {
	case "whole", "letters":
		return nil
	}
	return fmt.Errorf("unknown split %q (want whole or letters)", s)
}

// ValidateLogLevel checks a log level name.
func ValidateLogLevel(s string) error {
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("unknown level %q", s)
}

// ValidateLogFormat checks a log format name.
func ValidateLogFormat(s string) error {
	switch s {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("unknown format %q (want text or json)", s)
}

// ParsePause parses a pause such as "1.2s" or "800ms". Negative values are
// rejected; zero disables the pause.
func ParsePause(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative, got %s", s)
	}
	return d, nil
}

// DefaultConfigTemplate returns the commented file written by "lumina config".
func DefaultConfigTemplate() string {
	return fmt.Sprintf(`# lumina configuration
# Uncomment a value to enable it. CLI flags override config values.

[reader]
# restrict-editing = true    # Only the active sentence's words can be simplified
# split = %q             # Bold prefix rule: "whole" (ceil half) or "letters"
# synonyms = ""              # Extra "word replacement" file merged into the built-ins

[voice]
# command = ["whisper-stream", "--stdout"]  # Transcriber printing one result per line
# keywords = %d               # Trailing words of a sentence that count as keywords
# min-keyword-len = %d        # Ignore keywords shorter than this
# finals-only = false        # Ignore partial transcripts
# phonetic = false           # Also match words that sound like a keyword
# max-restarts = %d           # Empty sessions in a row before giving up (0: never)

[speech]
# command = ["espeak"]       # espeak-compatible synthesizer
# pause = %q               # Silence between sentences

[log]
# level = %q
# format = %q             # "text" or "json"
# file = ""                  # Default: %s
`,
		DefaultSplit,
		DefaultKeywords,
		DefaultMinKeywordLen,
		DefaultMaxRestarts,
		DefaultPause.String(),
		DefaultLogLevel,
		DefaultLogFormat,
		DefaultLogPath(),
	)
}

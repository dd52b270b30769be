package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/metcalfc/lumina/internal/bionic"
	"github.com/metcalfc/lumina/internal/config"
	"github.com/metcalfc/lumina/internal/navigator"
	"github.com/metcalfc/lumina/internal/observe"
	"github.com/metcalfc/lumina/internal/speech"
	"github.com/metcalfc/lumina/internal/synonym"
	"github.com/metcalfc/lumina/internal/voice"
)

// settings is the resolved configuration: defaults, then the config file,
// then command-line flags.
type settings struct {
	restrictEditing bool
	split           string
	synonymsPath    string

	voiceCommand  []string
	keywords      int
	minKeywordLen int
	finalsOnly    bool
	phonetic      bool
	maxRestarts   int

	speechCommand []string
	pause         string

	logLevel  string
	logFormat string
	logFile   string
}

func defaultSettings() settings {
	return settings{
		restrictEditing: true,
		split:           config.DefaultSplit,
		keywords:        config.DefaultKeywords,
		minKeywordLen:   config.DefaultMinKeywordLen,
		maxRestarts:     config.DefaultMaxRestarts,
		pause:           config.DefaultPause.String(),
		logLevel:        config.DefaultLogLevel,
		logFormat:       config.DefaultLogFormat,
		logFile:         config.DefaultLogPath(),
	}
}

// flagSet reports which flags were given explicitly. *pflag.FlagSet
// satisfies it.
type flagSet interface {
	Changed(name string) bool
}

// noFlags is used where nothing can be overridden on the command line.
type noFlags struct{}

func (noFlags) Changed(string) bool { return false }

func applyConfig[T any](flags flagSet, name string, target, value *T) {
	if value == nil {
		return
	}
	if flags.Changed(name) {
		return
	}
	*target = *value
}

func applyListConfig(target *[]string, value []string) {
	if value == nil {
		return
	}
	*target = value
}

// apply layers file values under the flags in flags. Flag names match the
// config keys.
func (s *settings) apply(cfg config.FileConfig, flags flagSet) {
	applyConfig(flags, "restrict-editing", &s.restrictEditing, cfg.Reader.RestrictEditing)
	applyConfig(flags, "split", &s.split, cfg.Reader.Split)
	applyConfig(flags, "synonyms", &s.synonymsPath, cfg.Reader.Synonyms)

	applyListConfig(&s.voiceCommand, cfg.Voice.Command)
	applyConfig(flags, "keywords", &s.keywords, cfg.Voice.Keywords)
	applyConfig(flags, "min-keyword-len", &s.minKeywordLen, cfg.Voice.MinKeywordLen)
	applyConfig(flags, "finals-only", &s.finalsOnly, cfg.Voice.FinalsOnly)
	applyConfig(flags, "phonetic", &s.phonetic, cfg.Voice.Phonetic)
	applyConfig(flags, "max-restarts", &s.maxRestarts, cfg.Voice.MaxRestarts)

	applyListConfig(&s.speechCommand, cfg.Speech.Command)
	applyConfig(flags, "pause", &s.pause, cfg.Speech.Pause)

	applyConfig(flags, "log-level", &s.logLevel, cfg.Log.Level)
	applyConfig(flags, "log-format", &s.logFormat, cfg.Log.Format)
	if cfg.Log.File != nil && *cfg.Log.File != "" {
		s.logFile = *cfg.Log.File
	}
}

// validate checks values that may have come from flags.
func (s settings) validate() error {
	var errs []error
	if err := config.ValidateSplit(s.split); err != nil {
		errs = append(errs, fmt.Errorf("--split: %w", err))
	}
	if s.keywords <= 0 {
		errs = append(errs, errors.New("--keywords must be > 0"))
	}
	if s.minKeywordLen <= 0 {
		errs = append(errs, errors.New("--min-keyword-len must be > 0"))
	}
	if _, err := config.ParsePause(s.pause); err != nil {
		errs = append(errs, fmt.Errorf("--pause: %w", err))
	}
	if err := config.ValidateLogLevel(s.logLevel); err != nil {
		errs = append(errs, fmt.Errorf("--log-level: %w", err))
	}
	if err := config.ValidateLogFormat(s.logFormat); err != nil {
		errs = append(errs, fmt.Errorf("--log-format: %w", err))
	}
	return errors.Join(errs...)
}

// loadSettings resolves settings from the default config file and flags.
func loadSettings(flags flagSet, fromFlags settings) (settings, error) {
	cfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	s := fromFlags
	s.apply(cfg, flags)
	if err := s.validate(); err != nil {
		return settings{}, err
	}
	return s, nil
}

func (s settings) synonyms() (*synonym.Table, error) {
	table := synonym.Default()
	if s.synonymsPath == "" {
		return table, nil
	}
	extra, err := synonym.LoadFile(s.synonymsPath)
	if err != nil {
		return nil, err
	}
	return table.Merge(extra), nil
}

func (s settings) newNavigator(metrics *observe.Metrics, onChange func(int)) (*navigator.Navigator, error) {
	table, err := s.synonyms()
	if err != nil {
		return nil, err
	}
	mode, _ := bionic.ParseMode(s.split)
	return navigator.New(navigator.Options{
		RestrictEditingToActiveSentence: s.restrictEditing,
		Mode:                            mode,
		Synonyms:                        table,
		Metrics:                         metrics,
		OnActiveChange:                  onChange,
	}), nil
}

// newAdvancer returns nil when no recognizer command is configured.
func (s settings) newAdvancer(target voice.Target, metrics *observe.Metrics, log *slog.Logger) *voice.Advancer {
	if len(s.voiceCommand) == 0 {
		return nil
	}
	rec := &voice.CommandRecognizer{Path: s.voiceCommand[0], Args: s.voiceCommand[1:]}
	return voice.NewAdvancer(rec, target, voice.Options{
		Matcher: voice.Matcher{
			KeywordCount:  s.keywords,
			MinKeywordLen: s.minKeywordLen,
			Phonetic:      s.phonetic,
		},
		FinalsOnly:  s.finalsOnly,
		MaxRestarts: s.maxRestarts,
		Metrics:     metrics,
		Logger:      log,
	})
}

// newPlayer returns nil when no synthesizer command is configured.
func (s settings) newPlayer(metrics *observe.Metrics, log *slog.Logger) *speech.Player {
	if len(s.speechCommand) == 0 {
		return nil
	}
	pause, _ := config.ParsePause(s.pause)
	if pause == 0 {
		pause = -time.Nanosecond
	}
	return &speech.Player{
		Synth:   &speech.CommandSynthesizer{Path: s.speechCommand[0], Args: s.speechCommand[1:]},
		Pause:   pause,
		Metrics: metrics,
		Logger:  log,
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/metcalfc/lumina/internal/config"
	"github.com/metcalfc/lumina/internal/observe"
)

func TestLoadDocumentFrom(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(plain, []byte("Hello there. Bye now."), 0o644); err != nil {
		t.Fatal(err)
	}
	md := filepath.Join(dir, "guide.md")
	if err := os.WriteFile(md, []byte("# Getting Started\n\nRead this first.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	blank := filepath.Join(dir, "blank.txt")
	if err := os.WriteFile(blank, []byte("   \n\t"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		args      []string
		stdin     string
		terminal  bool
		wantTitle string
		wantLen   int
		wantErr   string
	}{
		{
			name:     "terminal stdin",
			terminal: true,
			wantErr:  errNoInput.Error(),
		},
		{
			name:      "piped stdin",
			stdin:     "One. Two? Three!",
			wantTitle: "stdin",
			wantLen:   3,
		},
		{
			name:      "plain file uses its base name",
			args:      []string{plain},
			terminal:  true,
			wantTitle: "notes",
			wantLen:   2,
		},
		{
			name:      "markdown title comes from the first heading",
			args:      []string{md},
			terminal:  true,
			wantTitle: "Getting Started",
			wantLen:   2,
		},
		{
			name:    "blank file",
			args:    []string{blank},
			wantErr: "no text to read",
		},
		{
			name:    "missing file",
			args:    []string{filepath.Join(dir, "nope.txt")},
			wantErr: "failed to read file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := loadDocumentFrom(tt.args, strings.NewReader(tt.stdin), tt.terminal)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadDocumentFrom() error = %v", err)
			}
			if doc.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", doc.Title, tt.wantTitle)
			}
			if doc.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d (%q)", doc.Len(), tt.wantLen, doc.Sentences)
			}
		})
	}
}

func TestLoadDocumentFromTerminalIsErrNoInput(t *testing.T) {
	_, err := loadDocumentFrom(nil, strings.NewReader(""), true)
	if !errors.Is(err, errNoInput) {
		t.Fatalf("error = %v, want errNoInput", err)
	}
}

type changedFlags map[string]bool

func (c changedFlags) Changed(name string) bool { return c[name] }

func ptr[T any](v T) *T { return &v }

func TestSettingsApply(t *testing.T) {
	cfg := config.FileConfig{}
	cfg.Reader.Split = ptr("letters")
	cfg.Reader.RestrictEditing = ptr(false)
	cfg.Voice.Command = []string{"whisper-stream", "--model", "base"}
	cfg.Voice.Keywords = ptr(5)
	cfg.Voice.Phonetic = ptr(true)
	cfg.Speech.Pause = ptr("2s")
	cfg.Log.Level = ptr("debug")
	cfg.Log.File = ptr("/tmp/lumina-test.log")

	s := defaultSettings()
	s.keywords = 2 // as if --keywords 2 was given
	s.apply(cfg, changedFlags{"keywords": true})

	if s.split != "letters" {
		t.Errorf("split = %q, want letters", s.split)
	}
	if s.restrictEditing {
		t.Error("restrictEditing = true, want false from config")
	}
	if s.keywords != 2 {
		t.Errorf("keywords = %d, want the flag value 2", s.keywords)
	}
	if !s.phonetic {
		t.Error("phonetic = false, want true from config")
	}
	if got := strings.Join(s.voiceCommand, " "); got != "whisper-stream --model base" {
		t.Errorf("voiceCommand = %q", got)
	}
	if s.pause != "2s" {
		t.Errorf("pause = %q, want 2s", s.pause)
	}
	if s.logLevel != "debug" {
		t.Errorf("logLevel = %q, want debug", s.logLevel)
	}
	if s.logFile != "/tmp/lumina-test.log" {
		t.Errorf("logFile = %q", s.logFile)
	}
	if s.minKeywordLen != config.DefaultMinKeywordLen {
		t.Errorf("minKeywordLen = %d, want default", s.minKeywordLen)
	}
}

func TestSettingsApplyEmptyConfigKeepsDefaults(t *testing.T) {
	s := defaultSettings()
	s.apply(config.FileConfig{}, noFlags{})
	want := defaultSettings()
	if s.split != want.split || s.keywords != want.keywords || s.pause != want.pause || !s.restrictEditing {
		t.Errorf("settings changed by empty config: %+v", s)
	}
	if s.voiceCommand != nil || s.speechCommand != nil {
		t.Error("commands should stay unset")
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := defaultSettings().validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	s := defaultSettings()
	s.split = "halves"
	s.keywords = 0
	s.pause = "-1s"
	s.logFormat = "yaml"
	err := s.validate()
	if err == nil {
		t.Fatal("validate() = nil, want error")
	}
	for _, want := range []string{"--split", "--keywords", "--pause", "--log-format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
	if strings.Contains(err.Error(), "--log-level") {
		t.Errorf("error %q mentions a valid setting", err)
	}
}

func TestSettingsHelpers(t *testing.T) {
	s := defaultSettings()
	if s.newAdvancer(nil, nil, nil) != nil {
		t.Error("newAdvancer without a command should be nil")
	}
	if s.newPlayer(nil, nil) != nil {
		t.Error("newPlayer without a command should be nil")
	}

	s.speechCommand = []string{"espeak"}
	s.pause = "0s"
	p := s.newPlayer(nil, nil)
	if p == nil {
		t.Fatal("newPlayer() = nil")
	}
	if p.Pause >= 0 {
		t.Errorf("Pause = %v, want negative to disable the pause", p.Pause)
	}

	path := filepath.Join(t.TempDir(), "extra.txt")
	if err := os.WriteFile(path, []byte("commence = begin\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s.synonymsPath = path
	table, err := s.synonyms()
	if err != nil {
		t.Fatalf("synonyms() error = %v", err)
	}
	if got, ok := table.Lookup("Commence"); !ok || got != "begin" {
		t.Errorf("Lookup(Commence) = %q, %v", got, ok)
	}
	if _, ok := table.Lookup("utilize"); !ok {
		t.Error("built-in entries missing after merge")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerToJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLoggerTo(&buf, "warn", "json")
	log.Info("hidden")
	log.Warn("lumina: shown", "n", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d records, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["msg"] != "lumina: shown" || rec["app"] != "lumina" || rec["n"] != float64(3) {
		t.Errorf("record = %v", rec)
	}
}

func TestNewLoggerCreatesFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "lumina.log")
	log, closer, err := newLogger("info", "text", path)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	log.Info("lumina: hello")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "lumina: hello") {
		t.Errorf("log file = %q", data)
	}
}

func TestLogTotals(t *testing.T) {
	ctx := context.Background()
	mp, reader := observe.NewManualProvider()
	t.Cleanup(func() { _ = mp.Shutdown(ctx) })
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatal(err)
	}
	m.RecordMove(ctx, "next")
	m.RecordMove(ctx, "voice")
	m.RecordSimplification(ctx)

	var buf bytes.Buffer
	logTotals(ctx, newLoggerTo(&buf, "info", "text"), reader)

	out := buf.String()
	for _, want := range []string{"lumina: session metrics", "lumina.navigator.moves=2", "lumina.navigator.simplifications=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if strings.Index(out, "lumina.navigator.moves") > strings.Index(out, "lumina.navigator.simplifications") {
		t.Errorf("totals not sorted by name: %q", out)
	}
}

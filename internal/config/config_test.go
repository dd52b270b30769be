package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"config", DefaultConfigPath(), "/cfg/lumina/config.toml"},
		{"db", DefaultDBPath(), "/data/lumina/history.db"},
		{"state", DefaultStateDir(), "/state/lumina"},
		{"log", DefaultLogPath(), "/state/lumina/lumina.log"},
	}
	for _, tt := range tests {
		if tt.got != filepath.FromSlash(tt.want) {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestXDGFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", "")

	want := filepath.Join(home, ".local", "state")
	if got := XDGStateHome(); got != want {
		t.Errorf("XDGStateHome() = %q, want %q", got, want)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Reader.Split != nil || cfg.Voice.Command != nil {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[reader]
restrict-editing = false
split = "letters"

[voice]
command = ["transcribe", "--lines"]
keywords = 4
phonetic = true

[speech]
pause = "500ms"

[log]
level = "debug"
format = "json"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Reader.RestrictEditing == nil || *cfg.Reader.RestrictEditing {
		t.Error("restrict-editing should be set to false")
	}
	if cfg.Reader.Split == nil || *cfg.Reader.Split != "letters" {
		t.Errorf("split = %v", cfg.Reader.Split)
	}
	if strings.Join(cfg.Voice.Command, " ") != "transcribe --lines" {
		t.Errorf("voice command = %v", cfg.Voice.Command)
	}
	if cfg.Voice.Keywords == nil || *cfg.Voice.Keywords != 4 {
		t.Errorf("keywords = %v", cfg.Voice.Keywords)
	}
	if cfg.Voice.MinKeywordLen != nil {
		t.Error("min-keyword-len should be unset")
	}
	if cfg.Speech.Pause == nil || *cfg.Speech.Pause != "500ms" {
		t.Errorf("pause = %v", cfg.Speech.Pause)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := writeConfig(t, "[reader]\nwpm = 300\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "reader.wpm") {
		t.Errorf("expected unknown key error, got %v", err)
	}
}

func TestLoadConfigBadSyntax(t *testing.T) {
	path := writeConfig(t, "[reader\n")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected decode error")
	}
}

func TestValidateReportsAll(t *testing.T) {
	path := writeConfig(t, `
[reader]
split = "halves"

[voice]
keywords = 0
command = []

[speech]
pause = "-1s"

[log]
level = "loud"
format = "xml"
`)
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"reader.split", "voice.keywords", "voice.command", "speech.pause", "log.level", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestParsePause(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"1.2s", 1200 * time.Millisecond, false},
		{"0s", 0, false},
		{"800ms", 800 * time.Millisecond, false},
		{"-5ms", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePause(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePause(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePause(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

var commentedKey = regexp.MustCompile(`(?m)^# ([a-z-]+ = )`)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/state")
	tmpl := DefaultConfigTemplate()
	if !strings.Contains(tmpl, `split = "whole"`) || !strings.Contains(tmpl, `pause = "1.2s"`) {
		t.Fatalf("template missing defaults:\n%s", tmpl)
	}

	// Every commented value must be valid once uncommented.
	path := writeConfig(t, commentedKey.ReplaceAllString(tmpl, "$1"))
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("uncommented template does not load: %v", err)
	}
	if cfg.Voice.MaxRestarts == nil || *cfg.Voice.MaxRestarts != 0 {
		t.Errorf("max-restarts = %v, want 0 so listening never gives up", cfg.Voice.MaxRestarts)
	}
	if !strings.Contains(tmpl, "max-restarts = 0") || !strings.Contains(tmpl, "(0: never)") {
		t.Errorf("template does not document the unlimited default:\n%s", tmpl)
	}
}

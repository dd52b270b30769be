//go:build !gui

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/metcalfc/lumina/internal/config"
	"github.com/metcalfc/lumina/internal/navigator"
	"github.com/metcalfc/lumina/internal/store"
	"github.com/metcalfc/lumina/internal/synonym"
	"github.com/metcalfc/lumina/internal/voice"
)

const (
	defaultStatsLast = 10
	defaultStatsTop  = 5
)

var (
	statsLast int
	statsTop  int

	synonymsFile string

	followFlags = defaultSettings()
	followFresh bool
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates the commented config file unless one exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.DefaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show reading history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsLast, "last", defaultStatsLast, "number of recent sessions to list (0: all)")
	cmd.Flags().IntVar(&statsTop, "top", defaultStatsTop, "number of most simplified words to list")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	docs, err := st.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}
	sessions, err := st.ListSessions(ctx, statsLast)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	words, err := st.TopSimplifications(ctx, statsTop)
	if err != nil {
		return fmt.Errorf("failed to load simplifications: %w", err)
	}
	if len(docs) == 0 {
		logErrln("No reading history yet. Open a document with: lumina <file>")
		return nil
	}
	return writeReport(cmd.OutOrStdout(), docs, sessions, words, terminalWidth())
}

func newSynonymsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synonyms [word...]",
		Short: "List the synonym table, or look up words in it",
		RunE:  runSynonymsCmd,
	}
	cmd.Flags().StringVar(&synonymsFile, "synonyms", "", "extra synonym file merged into the built-ins")
	return cmd
}

func runSynonymsCmd(cmd *cobra.Command, args []string) error {
	flags := defaultSettings()
	flags.synonymsPath = synonymsFile
	s, err := loadSettings(cmd.Flags(), flags)
	if err != nil {
		return err
	}
	table, err := s.synonyms()
	if err != nil {
		return err
	}
	return writeSynonyms(cmd.OutOrStdout(), table, args)
}

func writeSynonyms(w io.Writer, table *synonym.Table, words []string) error {
	var rows [][]string
	if len(words) == 0 {
		for _, p := range table.Pairs() {
			rows = append(rows, []string{p.Word, p.Replacement})
		}
	} else {
		for _, word := range words {
			replacement, ok := table.Lookup(word)
			if !ok {
				replacement = "-"
			}
			rows = append(rows, []string{word, replacement})
		}
	}
	for _, line := range formatTable([]string{"WORD", "SIMPLER"}, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newFollowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "follow [file]",
		Short: "Print each sentence as you read it aloud (no TUI)",
		Long: "Follow listens through the configured [voice] command and prints the next\n" +
			"sentence each time the end of the current one is heard. Stop with Ctrl-C.",
		Args: cobra.MaximumNArgs(1),
		RunE: runFollowCmd,
	}
	cmd.Flags().BoolVar(&followFresh, "fresh", false, "ignore the saved reading position")
	addSettingsFlags(cmd, &followFlags)
	return cmd
}

func runFollowCmd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd.Flags(), args, followFlags, followFresh)
	if err != nil {
		return err
	}
	defer sess.close()

	out := cmd.OutOrStdout()
	var (
		nav     *navigator.Navigator
		started bool
		moves   int
	)
	nav, err = sess.settings.newNavigator(sess.metrics, func(i int) {
		if !started {
			return
		}
		moves++
		printActive(out, nav)
		if sess.positions != nil {
			if err := sess.positions.SetPosition(sess.hash, i, nav.Len()); err != nil {
				sess.log.Warn("lumina: save position", "err", err)
			}
		}
	})
	if err != nil {
		return err
	}
	adv := sess.settings.newAdvancer(nav, sess.metrics, sess.log)
	if adv == nil {
		return fmt.Errorf("follow needs a recognizer: set [voice] command in %s", config.DefaultConfigPath())
	}

	nav.LoadDocument(sess.doc)
	startIndex := sess.resume()
	nav.FocusSentence(startIndex)
	started = true
	printActive(out, nav)

	startedAt := time.Now()
	runErr := adv.Run(cmd.Context())

	if sess.history != nil {
		_, err := sess.history.InsertSession(context.Background(), store.Session{
			DocHash:       sess.hash,
			Title:         sess.doc.Title,
			StartedAt:     startedAt,
			EndedAt:       time.Now(),
			Sentences:     nav.Len(),
			StartIndex:    startIndex,
			EndIndex:      nav.ActiveIndex(),
			Moves:         moves,
			VoiceAdvances: moves,
		})
		if err != nil {
			sess.log.Error("lumina: save session", "err", err)
		}
	}

	switch {
	case runErr == nil, cmd.Context().Err() != nil:
		if nav.AtEnd() {
			logErrln("Reading complete!")
		}
		return nil
	case errors.Is(runErr, voice.ErrPermissionDenied):
		logErrln("Microphone permission denied; voice navigation is off.")
	case errors.Is(runErr, voice.ErrGaveUp):
		logErrln("Stopped listening: no speech heard.")
	}
	return runErr
}

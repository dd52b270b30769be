//go:build !gui

// Command lumina is a terminal bionic reader with sentence focus, word
// simplification and voice-paced navigation.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/metcalfc/lumina/internal/reader"
	"github.com/metcalfc/lumina/internal/tui"
)

var (
	readFlags = defaultSettings()
	readFresh bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lumina [file]",
		Short: "Bionic reader with sentence focus and voice-paced navigation",
		Long: "Lumina shows text one focused sentence at a time with the first half of every\n" +
			"word in bold. Move with the arrow keys or by reading aloud; swap hard words\n" +
			"for simpler ones with enter.\n\n" +
			"Supported formats: plain text (default), " + formatList() + ".\n" +
			"Text is read from stdin when no file is given.",
		Args:          cobra.MaximumNArgs(1),
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runReadCmd,
	}
	rootCmd.SetVersionTemplate("lumina {{.Version}}\n")

	rootCmd.Flags().BoolVar(&readFresh, "fresh", false, "ignore the saved reading position")
	addSettingsFlags(rootCmd, &readFlags)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSynonymsCmd())
	rootCmd.AddCommand(newFollowCmd())

	return rootCmd
}

// addSettingsFlags registers the flags that override config file values.
func addSettingsFlags(cmd *cobra.Command, s *settings) {
	f := cmd.Flags()
	f.BoolVar(&s.restrictEditing, "restrict-editing", s.restrictEditing, "only simplify words of the active sentence")
	f.StringVar(&s.split, "split", s.split, "bold prefix rule: whole or letters")
	f.StringVar(&s.synonymsPath, "synonyms", s.synonymsPath, "extra synonym file merged into the built-ins")
	f.IntVar(&s.keywords, "keywords", s.keywords, "trailing words of a sentence that count as keywords")
	f.IntVar(&s.minKeywordLen, "min-keyword-len", s.minKeywordLen, "ignore keywords shorter than this")
	f.BoolVar(&s.finalsOnly, "finals-only", s.finalsOnly, "ignore partial transcripts")
	f.BoolVar(&s.phonetic, "phonetic", s.phonetic, "also match words that sound like a keyword")
	f.IntVar(&s.maxRestarts, "max-restarts", s.maxRestarts, "empty recognizer sessions in a row before giving up (0: never)")
	f.StringVar(&s.pause, "pause", s.pause, "silence between spoken sentences")
	f.StringVar(&s.logLevel, "log-level", s.logLevel, "debug, info, warn or error")
	f.StringVar(&s.logFormat, "log-format", s.logFormat, "text or json")
}

func formatList() string {
	out := ""
	for i, f := range reader.SupportedFormats() {
		if i > 0 {
			out += ", "
		}
		out += f
	}
	return out
}

func runReadCmd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd.Flags(), args, readFlags, readFresh)
	if err != nil {
		return err
	}
	defer sess.close()

	nav, err := sess.settings.newNavigator(sess.metrics, nil)
	if err != nil {
		return err
	}
	nav.LoadDocument(sess.doc)
	nav.FocusSentence(sess.resume())

	model := tui.NewModel(cmd.Context(), tui.Options{
		Navigator: nav,
		Title:     sess.doc.Title,
		DocHash:   sess.hash,
		State:     sess.positions,
		Store:     sess.history,
		Advancer:  sess.settings.newAdvancer(nav, sess.metrics, sess.log),
		Player:    sess.settings.newPlayer(sess.metrics, sess.log),
		Logger:    sess.log,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

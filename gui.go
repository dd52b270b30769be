//go:build gui

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/metcalfc/lumina/internal/navigator"
	"github.com/metcalfc/lumina/internal/speech"
	"github.com/metcalfc/lumina/internal/store"
	"github.com/metcalfc/lumina/internal/synonym"
	"github.com/metcalfc/lumina/internal/voice"
)

// window holds the GUI reading state. Every field is touched on the fyne
// main goroutine only; voice and speech goroutines hop back with fyne.Do.
type window struct {
	sess *session
	nav  *navigator.Navigator
	adv  *voice.Advancer
	play *speech.Player

	ctx    context.Context
	cancel context.CancelFunc

	started    bool
	startIndex int
	startedAt  time.Time
	moves      int
	voiceMoves int
	simplified []store.Simplification

	speaking     bool
	speakID      int
	cancelSpeech context.CancelFunc
	notice       string

	tocVisible bool

	heading  *widget.Label
	sentence *widget.RichText
	words    *fyne.Container
	status   *widget.Label
	controls *widget.Label
	tocPanel *container.Split

	finishOnce sync.Once
}

func main() {
	showVersion := flag.Bool("v", false, "Show version information")
	showVersionLong := flag.Bool("version", false, "Show version information")
	showTOC := flag.Bool("toc", false, "Show table of contents at startup")
	freshStart := flag.Bool("fresh", false, "Ignore saved reading position")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Lumina - bionic reading with voice navigation\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  lumina-gui [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nSettings are read from %s.\n", "~/.config/lumina/config.toml")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lumina-gui book.epub          Read a book\n")
		fmt.Fprintf(os.Stderr, "  lumina-gui --toc notes.md     Show headings at startup\n")
		fmt.Fprintf(os.Stderr, "  cat file.txt | lumina-gui     Read from stdin\n")
	}
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("lumina %s\n", versionString())
		os.Exit(0)
	}

	sess, err := openSession(noFlags{}, flag.Args(), defaultSettings(), *freshStart)
	if err != nil {
		logErrf("Error: %v\n", err)
		os.Exit(1)
	}
	defer sess.close()

	w := &window{sess: sess, startedAt: time.Now()}
	w.ctx, w.cancel = context.WithCancel(context.Background())
	defer w.cancel()

	w.nav, err = sess.settings.newNavigator(sess.metrics, w.activeChanged)
	if err != nil {
		logErrf("Error: %v\n", err)
		os.Exit(1)
	}
	w.nav.LoadDocument(sess.doc)
	w.nav.FocusSentence(sess.resume())
	w.startIndex = w.nav.ActiveIndex()
	w.started = true

	w.adv = sess.settings.newAdvancer(w.nav, sess.metrics, sess.log)
	w.play = sess.settings.newPlayer(sess.metrics, sess.log)
	w.tocVisible = *showTOC && len(w.nav.TOC()) > 0

	w.run()
}

func (w *window) run() {
	a := app.New()
	win := a.NewWindow("lumina - " + w.sess.doc.Title)

	w.heading = widget.NewLabel("")
	w.heading.TextStyle.Italic = true
	w.heading.Alignment = fyne.TextAlignCenter

	w.sentence = widget.NewRichText()
	w.sentence.Wrapping = fyne.TextWrapWord

	w.words = container.NewHBox()

	w.status = widget.NewLabel("")
	w.status.Alignment = fyne.TextAlignCenter

	tocHint := ""
	if len(w.nav.TOC()) > 0 {
		tocHint = "  T: TOC"
	}
	w.controls = widget.NewLabel("←/→: sentence  HOME/END: first/last  M: mic  S: speak" + tocHint + "  Q: quit")
	w.controls.Alignment = fyne.TextAlignCenter

	readingContent := container.NewBorder(
		container.NewVBox(w.status, w.heading),
		container.NewVBox(container.NewHScroll(w.words), w.controls),
		nil, nil,
		container.NewPadded(w.sentence),
	)

	content := fyne.CanvasObject(readingContent)
	if toc := w.nav.TOC(); len(toc) > 0 {
		tocList := widget.NewList(
			func() int { return len(toc) },
			func() fyne.CanvasObject {
				return container.NewVBox(
					widget.NewLabel("Title"),
					widget.NewLabel("Preview"),
				)
			},
			func(id widget.ListItemID, obj fyne.CanvasObject) {
				entry := toc[id]
				vbox := obj.(*fyne.Container)
				titleLabel := vbox.Objects[0].(*widget.Label)
				previewLabel := vbox.Objects[1].(*widget.Label)

				indent := strings.Repeat("  ", entry.Level)
				titleLabel.SetText(indent + entry.Title)
				titleLabel.TextStyle.Bold = true

				preview := entry.Preview
				if r := []rune(preview); len(r) > 50 {
					preview = string(r[:50]) + "..."
				}
				previewLabel.SetText(indent + preview)
			},
		)
		tocList.OnSelected = func(id widget.ListItemID) {
			w.nav.JumpToHeading(id)
			w.setTOCVisible(false)
			tocList.UnselectAll()
		}

		tocContainer := container.NewBorder(
			widget.NewLabel("Contents"),
			widget.NewLabel("Click to jump • T to close"),
			nil, nil,
			tocList,
		)
		w.tocPanel = container.NewHSplit(tocContainer, readingContent)
		w.tocPanel.Offset = 0.33
		if !w.tocVisible {
			tocContainer.Hide()
		}
		content = w.tocPanel
	}

	win.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeyRight:
			w.nav.GoNext()
		case fyne.KeyLeft:
			w.nav.GoPrevious()
		case fyne.KeyHome:
			w.nav.FocusSentence(0)
		case fyne.KeyEnd:
			w.nav.FocusSentence(w.nav.Len() - 1)
		case fyne.KeyEscape:
			w.setTOCVisible(false)
		case fyne.KeyQ:
			w.finish()
			a.Quit()
		}
	})

	win.Canvas().SetOnTypedRune(func(r rune) {
		switch r {
		case 'm', 'M':
			w.toggleMic()
		case 's', 'S':
			w.toggleSpeech()
		case 't', 'T':
			w.setTOCVisible(!w.tocVisible)
		}
	})

	win.SetOnClosed(w.finish)
	win.Resize(fyne.NewSize(900, 600))
	win.SetContent(content)
	w.update()
	win.ShowAndRun()
}

// activeChanged runs on every move of the active sentence, whatever caused it.
func (w *window) activeChanged(int) {
	if !w.started {
		return
	}
	w.moves++
	w.notice = ""
	w.savePosition()
	w.update()
}

func (w *window) setTOCVisible(visible bool) {
	if w.tocPanel == nil {
		return
	}
	w.tocVisible = visible
	if visible {
		w.tocPanel.Leading.Show()
	} else {
		w.tocPanel.Leading.Hide()
	}
	w.tocPanel.Refresh()
}

func (w *window) update() {
	if w.sentence == nil {
		return
	}
	sv, ok := w.nav.RenderSentence(w.nav.ActiveIndex())
	if !ok {
		w.sentence.Segments = []widget.RichTextSegment{&widget.TextSegment{Text: "No text to read."}}
		w.sentence.Refresh()
		return
	}

	w.heading.SetText(w.nav.CurrentHeadingTitle())
	w.sentence.Segments = sentenceSegments(sv)
	w.sentence.Refresh()

	var buttons []fyne.CanvasObject
	for j, wv := range sv.Words {
		if !wv.Simplifiable {
			continue
		}
		s, idx, original := sv.Index, j, wv.Original
		buttons = append(buttons, widget.NewButton(original+" → "+wv.Synonym, func() {
			w.simplify(s, idx, original)
		}))
	}
	w.words.Objects = buttons
	w.words.Refresh()

	current, total := w.nav.Progress()
	status := fmt.Sprintf("Sentence %d/%d | Simplified %d", current, total, w.nav.SimplifiedCount())
	if w.adv != nil && w.adv.Listening() {
		status += " | listening"
	}
	if w.speaking {
		status += " | speaking"
	}
	if w.notice != "" {
		status += " | " + w.notice
	} else if w.nav.AtEnd() {
		status += " | Reading complete!"
	}
	w.status.SetText(status)
}

// sentenceSegments renders each word as a bold fixation followed by its
// regular remainder. Simplified words are drawn in the primary color.
func sentenceSegments(sv navigator.SentenceView) []widget.RichTextSegment {
	segs := make([]widget.RichTextSegment, 0, len(sv.Words)*3)
	for j, wv := range sv.Words {
		if j > 0 {
			segs = append(segs, &widget.TextSegment{Text: " ", Style: wordStyle(false, false)})
		}
		if wv.Bold != "" {
			segs = append(segs, &widget.TextSegment{Text: wv.Bold, Style: wordStyle(true, wv.Simplified)})
		}
		if wv.Regular != "" {
			segs = append(segs, &widget.TextSegment{Text: wv.Regular, Style: wordStyle(false, wv.Simplified)})
		}
	}
	return segs
}

func wordStyle(bold, simplified bool) widget.RichTextStyle {
	style := widget.RichTextStyle{
		Inline:   true,
		SizeName: theme.SizeNameHeadingText,
	}
	style.TextStyle.Bold = bold
	if simplified {
		style.ColorName = theme.ColorNamePrimary
	}
	return style
}

func (w *window) simplify(s, idx int, original string) {
	if !w.nav.CanEdit(s) {
		return
	}
	if _, ok := w.nav.SimplifyWord(s, idx, original); !ok {
		return
	}
	replacement, _ := w.nav.Word(s, idx)
	w.simplified = append(w.simplified, store.Simplification{
		Sentence:    s,
		Word:        idx,
		Original:    synonym.Normalize(original),
		Replacement: replacement.Original,
	})
	w.update()
}

func (w *window) toggleMic() {
	if w.adv == nil {
		w.notice = "Voice navigation needs a recognizer: set [voice] command in the config."
		w.update()
		return
	}
	if w.adv.Listening() {
		if err := w.adv.Stop(); err != nil {
			w.sess.log.Warn("gui: stop listening", "err", err)
		}
		w.update()
		return
	}
	if err := w.adv.Start(w.ctx); err != nil {
		w.setNotice(err)
		return
	}
	w.notice = ""
	go w.listen(w.adv.Session())
	w.update()
}

// listen forwards the results of sess to the main goroutine until the
// session ends, then lets the advancer decide whether to restart.
func (w *window) listen(sess voice.Session) {
	for r := range sess.Results() {
		fyne.Do(func() {
			if w.adv.Session() != sess {
				return
			}
			if w.adv.HandleResult(r) {
				w.voiceMoves++
			}
		})
	}
	fyne.Do(func() {
		current := w.adv.Session() == sess
		if err := w.adv.HandleEnd(w.ctx, sess); err != nil {
			w.setNotice(err)
			return
		}
		if next := w.adv.Session(); current && next != nil {
			go w.listen(next)
		}
		w.update()
	})
}

func (w *window) setNotice(err error) {
	switch {
	case errors.Is(err, voice.ErrPermissionDenied):
		w.notice = "Microphone permission denied; voice navigation is off."
	case errors.Is(err, voice.ErrGaveUp):
		w.notice = "Stopped listening: no speech heard."
	default:
		w.notice = err.Error()
	}
	w.update()
}

func (w *window) toggleSpeech() {
	if w.speaking {
		w.stopSpeech()
		w.update()
		return
	}
	if w.play == nil {
		w.notice = "Reading aloud needs a synthesizer: set [speech] command in the config."
		w.update()
		return
	}
	text, ok := w.nav.ActiveSentence()
	if !ok {
		return
	}
	ctx, cancel := context.WithCancel(w.ctx)
	w.speakID++
	w.speaking = true
	w.cancelSpeech = cancel
	id, player := w.speakID, w.play
	go func() {
		defer cancel()
		err := player.Play(ctx, text)
		fyne.Do(func() {
			if id != w.speakID {
				return
			}
			w.speaking = false
			w.cancelSpeech = nil
			if err != nil && !errors.Is(err, context.Canceled) {
				w.notice = err.Error()
			}
			w.update()
		})
	}()
	w.update()
}

func (w *window) stopSpeech() {
	if w.cancelSpeech != nil {
		w.cancelSpeech()
		w.cancelSpeech = nil
	}
	w.speaking = false
	w.speakID++
}

func (w *window) savePosition() {
	if w.sess.positions == nil {
		return
	}
	if err := w.sess.positions.SetPosition(w.sess.hash, w.nav.ActiveIndex(), w.nav.Len()); err != nil {
		w.sess.log.Warn("gui: save position", "err", err)
	}
}

// finish stops voice and speech and records the session. It runs once,
// whether the window was closed or Q was pressed.
func (w *window) finish() {
	w.finishOnce.Do(func() {
		w.stopSpeech()
		if w.adv != nil && w.adv.Listening() {
			if err := w.adv.Stop(); err != nil {
				w.sess.log.Warn("gui: stop listening", "err", err)
			}
		}
		w.cancel()
		w.savePosition()

		if w.sess.history == nil || w.nav.Len() == 0 {
			return
		}
		rec := store.Session{
			DocHash:         w.sess.hash,
			Title:           w.sess.doc.Title,
			StartedAt:       w.startedAt,
			EndedAt:         time.Now(),
			Sentences:       w.nav.Len(),
			StartIndex:      w.startIndex,
			EndIndex:        w.nav.ActiveIndex(),
			Moves:           w.moves,
			VoiceAdvances:   w.voiceMoves,
			Simplifications: w.simplified,
		}
		if _, err := w.sess.history.InsertSession(context.Background(), rec); err != nil {
			w.sess.log.Error("gui: save session", "err", err)
		}
	})
}

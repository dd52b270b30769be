// Package tui provides the Bubble Tea reading interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/lumina/internal/navigator"
	"github.com/metcalfc/lumina/internal/speech"
	"github.com/metcalfc/lumina/internal/state"
	"github.com/metcalfc/lumina/internal/store"
	"github.com/metcalfc/lumina/internal/synonym"
	"github.com/metcalfc/lumina/internal/voice"
)

const (
	footerLines = 2
	maxContent  = 100
)

// Options wires a Model to the rest of the application. Only Navigator is
// required; the other collaborators switch features off when nil.
type Options struct {
	Navigator *navigator.Navigator
	Title     string
	DocHash   string

	State    *state.StateStore
	Store    *store.Store
	Advancer *voice.Advancer
	Player   *speech.Player
	Logger   *slog.Logger
}

type voiceResultMsg struct {
	sess   voice.Session
	result voice.Result
}

type voiceEndMsg struct {
	sess voice.Session
}

type speechDoneMsg struct {
	id  int
	err error
}

// Model implements the Bubble Tea reading UI.
type Model struct {
	ctx  context.Context
	opts Options
	nav  *navigator.Navigator
	log  *slog.Logger
	keys keyMap

	viewport viewport.Model
	width    int
	height   int
	lineOf   []int // first content line of each sentence

	cursor    int // word index within the active sentence
	showTOC   bool
	tocCursor int

	speaking     bool
	speakID      int
	cancelSpeech context.CancelFunc

	notice   string
	quitting bool
	finished bool

	startedAt       time.Time
	startIndex      int
	lastActive      int
	moves           int
	voiceAdvances   int
	simplifications []store.Simplification
}

// NewModel constructs a reading TUI model. The navigator must already hold
// the document, with the resume position applied.
func NewModel(ctx context.Context, opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	m := &Model{
		ctx:        ctx,
		opts:       opts,
		nav:        opts.Navigator,
		log:        log,
		keys:       defaultKeyMap(),
		viewport:   viewport.New(80, 22),
		width:      80,
		height:     24,
		startedAt:  time.Now(),
		startIndex: opts.Navigator.ActiveIndex(),
		lastActive: opts.Navigator.ActiveIndex(),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.finish()
			m.quitting = true
			return m, tea.Quit
		}
		if m.showTOC {
			m.handleTOCKey(msg)
			return m, nil
		}
		return m, m.handleKey(msg)

	case voiceResultMsg:
		return m, m.handleVoiceResult(msg)

	case voiceEndMsg:
		return m, m.handleVoiceEnd(msg)

	case speechDoneMsg:
		if msg.id != m.speakID {
			return m, nil
		}
		m.speaking = false
		m.cancelSpeech = nil
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.setNotice(msg.err)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Next):
		m.move(m.nav.GoNext())
	case key.Matches(msg, m.keys.Prev):
		m.move(m.nav.GoPrevious())
	case key.Matches(msg, m.keys.First):
		m.move(m.nav.FocusSentence(0))
	case key.Matches(msg, m.keys.Last):
		m.move(m.nav.FocusSentence(m.nav.Len() - 1))
	case key.Matches(msg, m.keys.NextWord):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PrevWord):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Simplify):
		m.simplify()
	case key.Matches(msg, m.keys.Mic):
		return m.toggleMic()
	case key.Matches(msg, m.keys.Speak):
		return m.toggleSpeech()
	case key.Matches(msg, m.keys.TOC):
		if len(m.nav.TOC()) == 0 {
			m.notice = "No table of contents for this document."
			return nil
		}
		m.showTOC = true
		m.tocCursor = max(m.nav.CurrentHeading(), 0)
	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
	}
	return nil
}

func (m *Model) handleTOCKey(msg tea.KeyMsg) {
	toc := m.nav.TOC()
	switch {
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.PrevWord):
		if m.tocCursor > 0 {
			m.tocCursor--
		}
	case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.NextWord):
		if m.tocCursor < len(toc)-1 {
			m.tocCursor++
		}
	case key.Matches(msg, m.keys.Simplify):
		m.showTOC = false
		m.move(m.nav.JumpToHeading(m.tocCursor))
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.TOC):
		m.showTOC = false
	}
}

// move accounts for a navigation step and brings the view up to date.
func (m *Model) move(moved bool) {
	if !moved {
		return
	}
	m.activeChanged()
}

func (m *Model) activeChanged() {
	active := m.nav.ActiveIndex()
	if active == m.lastActive {
		return
	}
	m.lastActive = active
	m.moves++
	m.cursor = 0
	m.notice = ""
	m.savePosition()
	m.refresh()
}

func (m *Model) moveCursor(delta int) {
	sv, ok := m.nav.RenderSentence(m.nav.ActiveIndex())
	if !ok || len(sv.Words) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(sv.Words)) % len(sv.Words)
	m.refresh()
}

func (m *Model) simplify() {
	s := m.nav.ActiveIndex()
	w, ok := m.nav.Word(s, m.cursor)
	if !ok {
		return
	}
	if _, ok := m.nav.SimplifyWord(s, m.cursor, w.Original); !ok {
		return
	}
	replacement, _ := m.nav.Word(s, m.cursor)
	m.simplifications = append(m.simplifications, store.Simplification{
		Sentence:    s,
		Word:        m.cursor,
		Original:    synonym.Normalize(w.Original),
		Replacement: replacement.Original,
	})
	m.log.Debug("tui: simplified", "sentence", s, "word", w.Original, "replacement", replacement.Original)
	m.refresh()
}

func (m *Model) toggleMic() tea.Cmd {
	adv := m.opts.Advancer
	if adv == nil {
		m.notice = "Voice navigation needs a recognizer: set [voice] command in the config."
		return nil
	}
	if adv.Listening() {
		if err := adv.Stop(); err != nil {
			m.log.Warn("tui: stop listening", "err", err)
		}
		m.notice = ""
		return nil
	}
	if err := adv.Start(m.ctx); err != nil {
		m.setNotice(err)
		return nil
	}
	m.notice = ""
	return waitForVoice(adv.Session())
}

// waitForVoice delivers the next result, or the end, of sess as a message.
func waitForVoice(sess voice.Session) tea.Cmd {
	if sess == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-sess.Results()
		if !ok {
			return voiceEndMsg{sess: sess}
		}
		return voiceResultMsg{sess: sess, result: r}
	}
}

func (m *Model) handleVoiceResult(msg voiceResultMsg) tea.Cmd {
	adv := m.opts.Advancer
	if adv == nil || msg.sess != adv.Session() {
		return nil
	}
	if adv.HandleResult(msg.result) {
		m.voiceAdvances++
		m.activeChanged()
	}
	return waitForVoice(msg.sess)
}

func (m *Model) handleVoiceEnd(msg voiceEndMsg) tea.Cmd {
	adv := m.opts.Advancer
	if adv == nil {
		return nil
	}
	current := msg.sess == adv.Session()
	if err := adv.HandleEnd(m.ctx, msg.sess); err != nil {
		m.setNotice(err)
		return nil
	}
	if current && adv.Listening() {
		return waitForVoice(adv.Session())
	}
	return nil
}

func (m *Model) toggleSpeech() tea.Cmd {
	if m.speaking {
		m.stopSpeech()
		return nil
	}
	if m.opts.Player == nil {
		m.notice = "Reading aloud needs a synthesizer: set [speech] command in the config."
		return nil
	}
	text, ok := m.nav.ActiveSentence()
	if !ok {
		return nil
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.speakID++
	m.speaking = true
	m.cancelSpeech = cancel
	id, player := m.speakID, m.opts.Player
	return func() tea.Msg {
		defer cancel()
		return speechDoneMsg{id: id, err: player.Play(ctx, text)}
	}
}

func (m *Model) stopSpeech() {
	if m.cancelSpeech != nil {
		m.cancelSpeech()
		m.cancelSpeech = nil
	}
	m.speaking = false
	m.speakID++
}

func (m *Model) setNotice(err error) {
	switch {
	case errors.Is(err, voice.ErrPermissionDenied):
		m.notice = "Microphone permission denied. Voice navigation is off; arrow keys still work."
	case errors.Is(err, voice.ErrGaveUp):
		m.notice = "Stopped listening: no speech heard. Press m to listen again."
	default:
		m.notice = err.Error()
	}
	m.log.Warn("tui: notice", "err", err)
}

func (m *Model) savePosition() {
	if m.opts.State == nil || m.opts.DocHash == "" {
		return
	}
	if err := m.opts.State.SetPosition(m.opts.DocHash, m.nav.ActiveIndex(), m.nav.Len()); err != nil {
		m.log.Warn("tui: save position", "err", err)
	}
}

// finish stops background work and records the session. It runs once.
func (m *Model) finish() {
	if m.finished {
		return
	}
	m.finished = true
	m.stopSpeech()
	if adv := m.opts.Advancer; adv != nil && adv.Listening() {
		if err := adv.Stop(); err != nil {
			m.log.Warn("tui: stop listening", "err", err)
		}
	}
	m.savePosition()

	if m.opts.Store == nil || m.nav.Len() == 0 {
		return
	}
	sess := store.Session{
		DocHash:         m.opts.DocHash,
		Title:           m.opts.Title,
		StartedAt:       m.startedAt,
		EndedAt:         time.Now(),
		Sentences:       m.nav.Len(),
		StartIndex:      m.startIndex,
		EndIndex:        m.nav.ActiveIndex(),
		Moves:           m.moves,
		VoiceAdvances:   m.voiceAdvances,
		Simplifications: m.simplifications,
	}
	if _, err := m.opts.Store.InsertSession(context.Background(), sess); err != nil {
		m.log.Error("tui: save session", "err", err)
	}
}

func (m *Model) contentWidth() int {
	w := int(float64(m.width) * 0.8)
	return max(min(w, maxContent), 20)
}

// refresh re-renders the document into the viewport and scrolls the active
// sentence into view.
func (m *Model) refresh() {
	width := m.contentWidth()
	m.viewport.Width = width
	m.viewport.Height = max(m.height-footerLines, 1)

	view := m.nav.Render()
	headings := map[int]bool{}
	for _, e := range m.nav.TOC() {
		headings[e.SentenceIndex] = true
	}

	var lines []string
	m.lineOf = make([]int, len(view.Sentences))
	for i, sv := range view.Sentences {
		m.lineOf[i] = len(lines)
		cursor := -1
		if sv.Active {
			cursor = m.cursor
		}
		tokens := buildSentenceTokens(sv, headings[i], cursor)
		lines = append(lines, wrapTokens(tokens, width)...)
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	if len(m.lineOf) > 0 {
		top := m.lineOf[view.Active] - m.viewport.Height/3
		m.viewport.SetYOffset(max(top, 0))
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		if m.nav.Len() > 0 && m.nav.AtEnd() {
			return completeStyle.Render("\n  Reading complete!\n")
		}
		return ""
	}
	if m.nav.Len() == 0 {
		return "No text to read."
	}

	body := m.viewport.View()
	if m.showTOC {
		body = m.renderTOC()
	}
	pad := max((m.width-m.contentWidth())/2, 0)
	body = lipgloss.NewStyle().PaddingLeft(pad).Render(body)
	return body + "\n" + m.renderFooter()
}

func (m *Model) renderFooter() string {
	current, total := m.nav.Progress()
	percent := 0
	if total > 0 {
		percent = current * 100 / total
	}
	segments := []string{
		fmt.Sprintf("Sentence %d/%d", current, total),
		fmt.Sprintf("%d%%", percent),
		fmt.Sprintf("Simplified %d", m.nav.SimplifiedCount()),
	}
	if title := m.nav.CurrentHeadingTitle(); title != "" {
		segments = append(segments, title)
	}
	status := footerStyle.Render(strings.Join(segments, " · "))
	if m.opts.Advancer != nil && m.opts.Advancer.Listening() {
		status += " " + listenStyle.Render("● listening")
	}
	if m.speaking {
		status += " " + listenStyle.Render("♪ speaking")
	}

	second := m.renderHelp()
	if m.notice != "" {
		second = noticeStyle.Render(m.notice)
	}
	return status + "\n" + second
}

func (m *Model) renderHelp() string {
	parts := make([]string, 0, len(m.keys.shortHelp()))
	for _, b := range m.keys.shortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, "  "))
}

func (m *Model) renderTOC() string {
	toc := m.nav.TOC()
	height := max(m.viewport.Height-1, 1)
	start := 0
	if m.tocCursor >= height {
		start = m.tocCursor - height + 1
	}
	end := min(start+height, len(toc))

	var b strings.Builder
	b.WriteString(tocTitleStyle.Render("Contents"))
	for i := start; i < end; i++ {
		e := toc[i]
		indent := strings.Repeat("  ", e.Level)
		line := indent + e.Title
		if i == m.tocCursor {
			line = tocSelectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		if e.Preview != "" {
			line += "  " + tocPreviewStyle.Render(e.Preview)
		}
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

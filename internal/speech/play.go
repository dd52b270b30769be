package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/metcalfc/lumina/internal/observe"
)

// DefaultPause is the silence between two sentences.
const DefaultPause = 1200 * time.Millisecond

// Synthesizer speaks one utterance and returns when it has finished.
type Synthesizer interface {
	Speak(ctx context.Context, u Utterance) error
}

// Player reads text aloud through a Synthesizer, one sentence at a time.
type Player struct {
	Synth   Synthesizer
	Pause   time.Duration // zero means DefaultPause; negative means none
	Metrics *observe.Metrics
	Logger  *slog.Logger

	// OnUtterance, when set, is called before each sentence is spoken.
	OnUtterance func(Utterance)
}

// Play speaks text with the default pause.
func Play(ctx context.Context, synth Synthesizer, text string) error {
	p := &Player{Synth: synth}
	return p.Play(ctx, text)
}

// Play speaks every sentence of text in order and returns when the last one
// has finished, ctx is cancelled, or the synthesizer fails.
func (p *Player) Play(ctx context.Context, text string) error {
	if p.Synth == nil {
		return errors.New("speech: no synthesizer")
	}
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	pause := p.Pause
	if pause == 0 {
		pause = DefaultPause
	}

	var seq Sequencer
	defer seq.Cancel()

	u, ok := seq.Say(text)
	for ok {
		if p.OnUtterance != nil {
			p.OnUtterance(u)
		}
		log.Debug("speech: speaking", "index", u.Index, "tone", u.Tone.Name)
		if err := p.Synth.Speak(ctx, u); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("speech: sentence %d: %w", u.Index, err)
		}
		p.Metrics.RecordUtterance(ctx)

		u, ok = seq.Done()
		if ok && pause > 0 {
			t := time.NewTimer(pause)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
	}
	return ctx.Err()
}

const (
	espeakPitch = 50  // espeak default pitch, 0-99
	espeakRate  = 175 // espeak default speed, words per minute
)

// CommandSynthesizer speaks through an espeak-compatible command. Each
// utterance runs Path with Args, then "-p <pitch> -s <rate>" scaled from the
// utterance tone, then the sentence text.
type CommandSynthesizer struct {
	Path string
	Args []string
}

// Speak runs the command and waits for it to exit.
func (c *CommandSynthesizer) Speak(ctx context.Context, u Utterance) error {
	if c.Path == "" {
		return errors.New("speech: no synthesizer command configured")
	}
	cmd := exec.CommandContext(ctx, c.Path, c.argv(u)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%s: %w: %s", c.Path, err, out)
		}
		return fmt.Errorf("%s: %w", c.Path, err)
	}
	return nil
}

func (c *CommandSynthesizer) argv(u Utterance) []string {
	args := append([]string(nil), c.Args...)
	return append(args,
		"-p", strconv.Itoa(scale(espeakPitch, u.Tone.Pitch, 99)),
		"-s", strconv.Itoa(scale(espeakRate, u.Tone.Rate, 500)),
		u.Text,
	)
}

func scale(base int, factor float64, limit int) int {
	if factor <= 0 {
		factor = 1
	}
	n := int(math.Round(float64(base) * factor))
	return min(max(n, 1), limit)
}

// Ensure CommandSynthesizer implements Synthesizer at compile time.
var _ Synthesizer = (*CommandSynthesizer)(nil)

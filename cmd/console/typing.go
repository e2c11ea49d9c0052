package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// typewriter reveals dialogue a few runes at a time. Each Reset bumps the
// generation so ticks scheduled for earlier text are ignored.
type typewriter struct {
	text  []rune
	shown int
	gen   int
}

type typingTickMsg struct {
	gen int
}

// runesPerTick keeps long Korean paragraphs from taking minutes to appear.
const runesPerTick = 2

// Reset starts revealing text and returns the new generation.
func (t *typewriter) Reset(text string) int {
	t.text = []rune(text)
	t.shown = 0
	t.gen++
	return t.gen
}

// Step reveals n more runes and reports whether any remain hidden.
func (t *typewriter) Step(n int) bool {
	t.shown += n
	if t.shown >= len(t.text) {
		t.shown = len(t.text)
	}
	return !t.Done()
}

// Skip reveals the whole text.
func (t *typewriter) Skip() {
	t.shown = len(t.text)
}

func (t *typewriter) Done() bool {
	return t.shown >= len(t.text)
}

func (t *typewriter) Visible() string {
	return string(t.text[:t.shown])
}

// Current reports whether a tick belongs to the text being revealed.
func (t *typewriter) Current(msg typingTickMsg) bool {
	return msg.gen == t.gen
}

// typingTick schedules the next reveal step for generation gen.
func typingTick(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return typingTickMsg{gen: gen}
	})
}

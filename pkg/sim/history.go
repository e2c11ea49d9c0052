package sim

import (
	"github.com/jwebster45206/classroom-sim/pkg/scenario"
	"github.com/jwebster45206/classroom-sim/pkg/score"
)

// HistoryEntry is a snapshot of the presentation state taken before a
// state-advancing transition.
type HistoryEntry struct {
	Node     *scenario.Node
	Mode     Mode
	Dialogue string
	Pending  int // -1 if no option was awaiting acknowledge
	EndingID string
	Score    score.State
}

// push snapshots the current state. Score states are never mutated in place,
// so the entry shares the current map.
func (c *Controller) push() {
	c.history = append(c.history, HistoryEntry{
		Node:     c.node,
		Mode:     c.mode,
		Dialogue: c.dialogue,
		Pending:  c.pending,
		EndingID: c.endingID,
		Score:    c.score,
	})
}

func (c *Controller) restore(h HistoryEntry) {
	c.node = h.Node
	c.mode = h.Mode
	c.dialogue = h.Dialogue
	c.pending = h.Pending
	c.endingID = h.EndingID
	c.score = h.Score
}

// History returns a copy of the history stack, oldest first. Score states in
// the copy are cloned.
func (c *Controller) History() []HistoryEntry {
	out := make([]HistoryEntry, len(c.history))
	for i, h := range c.history {
		h.Score = h.Score.Clone()
		out[i] = h
	}
	return out
}

package sim

import "github.com/jwebster45206/classroom-sim/pkg/score"

// OptionView is an option as shown to the learner.
type OptionView struct {
	Index   int
	ID      string
	Text    string
	Primary bool // First option, may be emphasized
}

// View is an immutable snapshot of what the presentation layer renders.
type View struct {
	ScenarioID string
	Title      string
	NodeID     string
	Mode       Mode
	Dialogue   string
	Options    []OptionView // Set in ModePrompt only
	Pending    *OptionView  // Set in ModeResponse, and in ModeTerminal when reached by a choice
	Score      score.State
	EndingID   string
	CanBack    bool
}

// View returns the current presentation snapshot.
func (c *Controller) View() View {
	v := View{
		ScenarioID: c.scenario.ID,
		Title:      c.scenario.Title,
		NodeID:     c.node.ID,
		Mode:       c.mode,
		Dialogue:   c.dialogue,
		Score:      c.score.Clone(),
		EndingID:   c.endingID,
		CanBack:    len(c.history) > 0,
	}
	if c.mode == ModePrompt {
		v.Options = make([]OptionView, len(c.node.Options))
		for i, o := range c.node.Options {
			v.Options[i] = c.optionView(i, o.Text)
		}
	}
	if c.pending >= 0 && c.pending < len(c.node.Options) {
		ov := c.optionView(c.pending, c.node.Options[c.pending].Text)
		v.Pending = &ov
	}
	return v
}

func (c *Controller) optionView(i int, text string) OptionView {
	return OptionView{Index: i, ID: c.node.OptionID(i), Text: text, Primary: i == 0}
}

// Package sim implements the simulation controller: the state machine that
// walks a scenario graph in response to learner choices.
//
// A Controller owns one run. It is not safe for concurrent use; the outer
// application discards the instance to return home or start a new run.
package sim

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/classroom-sim/pkg/navigation"
	"github.com/jwebster45206/classroom-sim/pkg/scenario"
	"github.com/jwebster45206/classroom-sim/pkg/score"
)

var (
	// ErrIntegrity marks a run aborted by malformed scenario content.
	ErrIntegrity = errors.New("scenario data integrity error")
	// ErrWrongMode is returned for a transition not allowed in the current mode.
	ErrWrongMode = errors.New("transition not allowed in current mode")
	// ErrInvalidChoice is returned for an option index outside the node's options.
	ErrInvalidChoice = errors.New("invalid option index")
)

// Mode is the controller's presentation state.
type Mode int

const (
	ModePrompt   Mode = iota // Showing a node prompt, options pending
	ModeResponse             // Showing the chosen option's response, awaiting acknowledge
	ModeTerminal             // Ending reached; no further transitions
)

func (m Mode) String() string {
	switch m {
	case ModePrompt:
		return "prompt"
	case ModeResponse:
		return "response"
	case ModeTerminal:
		return "terminal"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Recorder receives every choice made during a run.
type Recorder interface {
	RecordSelection(nodeID, optionID, optionText string)
}

// Reporter receives the final score and ending id once per run.
type Reporter interface {
	Report(final score.State, endingID string)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(final score.State, endingID string)

func (f ReporterFunc) Report(final score.State, endingID string) { f(final, endingID) }

// Option configures a Controller.
type Option func(*Controller)

// WithRecorder sets the choice recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithReporter sets the terminal reporting collaborator.
func WithReporter(r Reporter) Option {
	return func(c *Controller) { c.reporter = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller is the state machine for one run of a scenario.
type Controller struct {
	scenario *scenario.Scenario
	index    *scenario.Index
	resolver *navigation.Resolver

	node     *scenario.Node
	mode     Mode
	dialogue string
	pending  int // Index of the option awaiting acknowledge, -1 if none
	endingID string
	score    score.State
	history  []HistoryEntry

	recorder Recorder
	reporter Reporter
	reported bool
	failed   error
	log      *slog.Logger
}

// New creates a controller at the scenario's entry node. A scenario without
// nodes is a data integrity error.
func New(s *scenario.Scenario, opts ...Option) (*Controller, error) {
	index := s.Index()
	entry, err := index.Entry()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIntegrity, err)
	}

	c := &Controller{
		scenario: s,
		index:    index,
		resolver: navigation.NewResolver(index),
		node:     entry,
		mode:     ModePrompt,
		dialogue: entry.Prompt,
		pending:  -1,
		score:    score.New(s.DeclaredCompetencies()),
		history:  make([]HistoryEntry, 0),
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("scenario_id", s.ID)
	c.log.Debug("Run started", "node_id", entry.ID)
	return c, nil
}

// Choose selects the option at index i of the current node.
//
// The pre-choice state is pushed to history, the option's effects are applied
// and the choice is recorded. An option leading to an ending finishes the run
// at once; any other option moves to ModeResponse.
func (c *Controller) Choose(i int) error {
	if c.failed != nil {
		return c.failed
	}
	if c.mode != ModePrompt {
		return fmt.Errorf("choose in %s: %w", c.mode, ErrWrongMode)
	}
	if i < 0 || i >= len(c.node.Options) {
		return fmt.Errorf("choose %d of %d at node %s: %w", i, len(c.node.Options), c.node.ID, ErrInvalidChoice)
	}

	opt := c.node.Options[i]
	c.push()
	c.score = score.Apply(c.score, opt.Effects)
	if c.recorder != nil {
		c.recorder.RecordSelection(c.node.ID, c.node.OptionID(i), opt.Text)
	}
	c.log.Debug("Option chosen", "node_id", c.node.ID, "option", i, "goto", opt.Goto)

	c.mode = ModeResponse
	c.pending = i
	c.dialogue = opt.Response

	if scenario.IsEnding(opt.Goto) {
		return c.advance()
	}
	return nil
}

// Acknowledge advances past the response line to the next node or ending.
// Calling it again after the run has ended is a no-op.
func (c *Controller) Acknowledge() error {
	if c.failed != nil {
		return c.failed
	}
	switch c.mode {
	case ModeTerminal:
		return nil
	case ModeResponse:
		c.push()
		return c.advance()
	default:
		return fmt.Errorf("acknowledge in %s: %w", c.mode, ErrWrongMode)
	}
}

// advance resolves the pending option's destination.
func (c *Controller) advance() error {
	opt := c.node.Options[c.pending]
	res, err := c.resolver.Resolve(opt)
	if err != nil {
		c.failed = fmt.Errorf("%w: node %s: %w", ErrIntegrity, c.node.ID, err)
		c.log.Error("Run aborted", "node_id", c.node.ID, "goto", opt.Goto, "error", err)
		return c.failed
	}

	switch res.Kind {
	case navigation.Terminal:
		c.mode = ModeTerminal
		c.endingID = res.EndingID
		c.log.Debug("Ending reached", "ending_id", res.EndingID)
		c.report()
	default:
		c.node = res.Node
		c.mode = ModePrompt
		c.pending = -1
		c.dialogue = res.Node.Prompt
		c.log.Debug("Node entered", "node_id", res.Node.ID)
	}
	return nil
}

func (c *Controller) report() {
	if c.reported {
		return
	}
	c.reported = true
	if c.reporter != nil {
		c.reporter.Report(c.score.Clone(), c.endingID)
	}
}

// Back restores the most recent history entry. With no history it does
// nothing.
func (c *Controller) Back() error {
	if c.failed != nil {
		return c.failed
	}
	if len(c.history) == 0 {
		return nil
	}
	last := len(c.history) - 1
	c.restore(c.history[last])
	c.history = c.history[:last]
	c.log.Debug("Went back", "node_id", c.node.ID, "mode", c.mode.String())
	return nil
}

// Err returns the integrity error that aborted the run, if any.
func (c *Controller) Err() error { return c.failed }

// Mode returns the current mode.
func (c *Controller) Mode() Mode { return c.mode }

// Node returns the current node.
func (c *Controller) Node() *scenario.Node { return c.node }

// Dialogue returns the full dialogue string for the current state. Any
// progressive reveal is up to the presentation layer.
func (c *Controller) Dialogue() string { return c.dialogue }

// Score returns a copy of the current score.
func (c *Controller) Score() score.State { return c.score.Clone() }

// EndingID returns the ending reached, or "" before the run ends.
func (c *Controller) EndingID() string { return c.endingID }

// Scenario returns the scenario being run.
func (c *Controller) Scenario() *scenario.Scenario { return c.scenario }

// Depth returns the number of history entries available to Back.
func (c *Controller) Depth() int { return len(c.history) }

// Package runlog records the choices made during a run and produces the
// summary record handed to persistence and export.
package runlog

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/classroom-sim/pkg/scenario"
	"github.com/jwebster45206/classroom-sim/pkg/score"
)

// ErrAlreadyFinished is returned when Finish is called a second time.
var ErrAlreadyFinished = errors.New("run already finished")

// Selection is one recorded choice.
type Selection struct {
	NodeID     string    `json:"nodeId" yaml:"nodeId"`
	OptionID   string    `json:"optionId" yaml:"optionId"`
	OptionText string    `json:"optionText" yaml:"optionText"`
	Time       string    `json:"time" yaml:"time"` // Display timestamp
	At         time.Time `json:"at" yaml:"at"`
}

// Summary is the exported record of one run.
type Summary struct {
	RunID         uuid.UUID   `json:"runId" yaml:"runId"`
	ScenarioID    string      `json:"scenarioId" yaml:"scenarioId"`
	ScenarioTitle string      `json:"scenarioTitle" yaml:"scenarioTitle"`
	Selections    []Selection `json:"selections" yaml:"selections"`
	StartedAt     string      `json:"startedAt" yaml:"startedAt"`
	EndedAt       string      `json:"endedAt,omitempty" yaml:"endedAt,omitempty"`
	Score         score.State `json:"score,omitempty" yaml:"score,omitempty"`
	EndID         string      `json:"endId,omitempty" yaml:"endId,omitempty"`
	Started       time.Time   `json:"started" yaml:"started"`
	Ended         *time.Time  `json:"ended,omitempty" yaml:"ended,omitempty"`
}

// Finished reports whether the run reached an ending.
func (s *Summary) Finished() bool {
	return s.Ended != nil
}

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

// Recorder is an append-only log of the selections made in a run.
// Selections are never removed, including when the learner goes back.
type Recorder struct {
	clock   Clock
	summary Summary
	done    bool
}

// New starts a log for a run of s. A nil clock uses time.Now.
func New(s *scenario.Scenario, clock Clock) *Recorder {
	if clock == nil {
		clock = time.Now
	}
	now := clock()
	return &Recorder{
		clock: clock,
		summary: Summary{
			RunID:         uuid.New(),
			ScenarioID:    s.ID,
			ScenarioTitle: s.Title,
			Selections:    make([]Selection, 0),
			StartedAt:     FormatKoreanTime(now),
			Started:       now,
		},
	}
}

// RecordSelection appends a choice to the log.
func (r *Recorder) RecordSelection(nodeID, optionID, optionText string) {
	now := r.clock()
	r.summary.Selections = append(r.summary.Selections, Selection{
		NodeID:     nodeID,
		OptionID:   optionID,
		OptionText: optionText,
		Time:       FormatKoreanTime(now),
		At:         now,
	})
}

// Finish stamps the end time, final score and ending id, and returns the
// completed summary. It can succeed only once per recorder.
func (r *Recorder) Finish(final score.State, endingID string) (*Summary, error) {
	if r.done {
		return nil, fmt.Errorf("finish %s: %w", r.summary.RunID, ErrAlreadyFinished)
	}
	r.done = true

	now := r.clock()
	r.summary.EndedAt = FormatKoreanTime(now)
	r.summary.Ended = &now
	r.summary.Score = final.Clone()
	r.summary.EndID = endingID

	out := r.Snapshot()
	return &out, nil
}

// Snapshot returns a copy of the log as it stands.
func (r *Recorder) Snapshot() Summary {
	out := r.summary
	out.Selections = make([]Selection, len(r.summary.Selections))
	copy(out.Selections, r.summary.Selections)
	if r.summary.Score != nil {
		out.Score = r.summary.Score.Clone()
	}
	return out
}

// Len returns the number of recorded selections.
func (r *Recorder) Len() int {
	return len(r.summary.Selections)
}

// FormatKoreanTime renders t as "2006-01-02 오전 3:04" in local time.
func FormatKoreanTime(t time.Time) string {
	t = t.Local()
	ampm := "오전"
	if t.Hour() >= 12 {
		ampm = "오후"
	}
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%s %s %d:%02d", t.Format("2006-01-02"), ampm, hour, t.Minute())
}

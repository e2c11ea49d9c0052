package main

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jwebster45206/classroom-sim/internal/logger"
	"github.com/jwebster45206/classroom-sim/internal/storage"
	"github.com/jwebster45206/classroom-sim/pkg/report"
	"github.com/jwebster45206/classroom-sim/pkg/runlog"
	"github.com/jwebster45206/classroom-sim/pkg/scenario"
	"github.com/jwebster45206/classroom-sim/pkg/score"
	"github.com/jwebster45206/classroom-sim/pkg/sim"
)

const saveTimeout = 5 * time.Second

// session is one run of a scenario. It owns the controller and the run log.
// The summary is stamped at the first ending reached and is the record that
// gets saved and exported; the report follows the controller's current ending.
type session struct {
	scenario *scenario.Scenario
	theme    scenario.Theme
	ctrl     *sim.Controller
	rec      *runlog.Recorder
	th       score.Thresholds
	log      *slog.Logger

	summary     *runlog.Summary
	report      *report.Report
	reportScore score.State
	finishErr   error
	saved       bool
}

type summarySavedMsg struct {
	runID uuid.UUID
	err   error
}

func newSession(s *scenario.Scenario, th score.Thresholds, clock runlog.Clock, base *slog.Logger) (*session, error) {
	rec := runlog.New(s, clock)
	sess := &session{
		scenario: s,
		theme:    scenario.ThemeFor(s.ID),
		rec:      rec,
		th:       th,
		log:      logger.WithRunID(base, rec.Snapshot().RunID.String()),
	}

	ctrl, err := sim.New(s,
		sim.WithRecorder(rec),
		sim.WithReporter(sim.ReporterFunc(sess.finish)),
		sim.WithLogger(sess.log))
	if err != nil {
		return nil, err
	}
	sess.ctrl = ctrl
	sess.log.Info("Run started", "scenario_id", s.ID)
	return sess, nil
}

// finish is the controller's reporter.
func (s *session) finish(final score.State, endingID string) {
	sum, err := s.rec.Finish(final, endingID)
	if err != nil {
		s.finishErr = err
		logger.WithError(s.log, err).Error("Failed to finish run log")
		return
	}
	s.summary = sum
	s.reportScore = final.Clone()
	s.report = report.Build(s.scenario, s.reportScore, endingID, s.th)
	s.log.Info("Run finished", "ending_id", endingID, "selections", len(sum.Selections))
}

// currentReport builds the report for the ending and score the controller
// is at now. After backing out of one ending and reaching another it differs
// from the report built in finish.
func (s *session) currentReport() *report.Report {
	if s.report == nil || s.report.EndingID != s.ctrl.EndingID() || !s.reportScore.Equal(s.ctrl.Score()) {
		s.reportScore = s.ctrl.Score()
		s.report = report.Build(s.scenario, s.reportScore, s.ctrl.EndingID(), s.th)
	}
	return s.report
}

// takeSave returns the summary the first time it is asked for after the run
// ends, and nil on every later call.
func (s *session) takeSave() *runlog.Summary {
	if s.summary == nil || s.saved {
		return nil
	}
	s.saved = true
	return s.summary
}

func saveSummary(saver storage.Saver, sum *runlog.Summary) tea.Cmd {
	if saver == nil || sum == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		return summarySavedMsg{runID: sum.RunID, err: saver.Save(ctx, sum)}
	}
}

// Package report turns a final score and ending into the learner-facing
// result summary.
package report

import (
	"github.com/jwebster45206/classroom-sim/pkg/scenario"
	"github.com/jwebster45206/classroom-sim/pkg/score"
)

// FallbackFeedback is shown when the ending has no entry in the scenario.
const FallbackFeedback = "전반적으로 우수한 역량을 보였습니다. 일부 영역에서 추가적인 성장이 기대됩니다."

// Line is the result for one competency.
type Line struct {
	Competency scenario.Competency
	Score      int
	Level      score.Level
	Reference  *int // Rubric threshold from the ending, if any
}

// MeetsReference reports whether the score reaches the rubric threshold.
// Lines without a reference always meet it.
func (l Line) MeetsReference() bool {
	return l.Reference == nil || l.Score >= *l.Reference
}

// Report is the final result of a run.
type Report struct {
	ScenarioID   string
	Title        string
	EndingID     string
	Feedback     string
	KnownEnding  bool   // False when Feedback is the fallback text
	Lines        []Line // In declared competency order
	Strengths    []Line
	Improvements []Line
}

// Build assembles the report for a finished run. Competencies are listed in
// the scenario's declared order, followed by any extra keys in the score.
func Build(s *scenario.Scenario, final score.State, endingID string, th score.Thresholds) *Report {
	r := &Report{
		ScenarioID: s.ID,
		Title:      s.Title,
		EndingID:   endingID,
		Feedback:   FallbackFeedback,
	}

	ending, ok := s.Ending(endingID)
	if ok && ending.Feedback != "" {
		r.Feedback = ending.Feedback
		r.KnownEnding = true
	}

	seen := make(map[scenario.Competency]bool)
	order := s.DeclaredCompetencies()
	for _, k := range final.Keys() {
		if !contains(order, k) {
			order = append(order, k)
		}
	}

	for _, c := range order {
		if seen[c] {
			continue
		}
		seen[c] = true

		line := Line{Competency: c, Score: final.Get(c), Level: th.Classify(final.Get(c))}
		if ref, ok := ending.Rubric[c]; ok {
			line.Reference = &ref
		}
		r.Lines = append(r.Lines, line)
		if line.Level == score.LevelStrength {
			r.Strengths = append(r.Strengths, line)
		} else {
			r.Improvements = append(r.Improvements, line)
		}
	}
	return r
}

func contains(list []scenario.Competency, c scenario.Competency) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}

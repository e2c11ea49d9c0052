package scenario

import (
	"strconv"
	"strings"
)

// EndingPrefix marks a goto value as a terminal ending id.
const EndingPrefix = "end"

// Competency is a named skill dimension scored throughout a run.
type Competency string

const (
	InstructionalDesign   Competency = "수업설계"
	InstructionalDelivery Competency = "수업실행"
	StudentAssessment     Competency = "학생평가"
	ReflectivePractice    Competency = "수업성찰"
)

// DefaultCompetencies is used when a scenario declares none.
var DefaultCompetencies = []Competency{
	InstructionalDesign,
	InstructionalDelivery,
	StudentAssessment,
	ReflectivePractice,
}

// Effects maps competencies to signed score deltas. Absent keys mean no change.
type Effects map[Competency]int

// Option is a selectable choice attached to a node.
type Option struct {
	ID       string  `json:"id,omitempty" yaml:"id,omitempty"`             // Optional stable identifier
	Text     string  `json:"text" yaml:"text"`                             // Label shown in the option list
	Response string  `json:"response,omitempty" yaml:"response,omitempty"` // Dialogue shown after the option is picked
	Goto     string  `json:"goto" yaml:"goto"`                             // Next node id, or an ending id ("end...")
	Effects  Effects `json:"effects,omitempty" yaml:"effects,omitempty"`   // Competency deltas applied on selection
}

// Node is one dialogue/decision point in the scenario graph.
type Node struct {
	ID      string   `json:"id" yaml:"id"`
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Options []Option `json:"options" yaml:"options"`
}

// OptionID returns the identity of the option at index i.
// Options without an explicit id are identified as "<node>:<index>".
func (n *Node) OptionID(i int) string {
	if i >= 0 && i < len(n.Options) && n.Options[i].ID != "" {
		return n.Options[i].ID
	}
	return n.ID + ":" + strconv.Itoa(i)
}

// Ending is a terminal outcome with narrative feedback.
type Ending struct {
	Feedback string             `json:"feedback" yaml:"feedback"`
	Rubric   map[Competency]int `json:"rubric,omitempty" yaml:"rubric,omitempty"` // Reference thresholds per competency
}

// Scenario is the root aggregate loaded from a scenario file.
// The first node is the entry point.
type Scenario struct {
	ID           string            `json:"id" yaml:"id"`
	Title        string            `json:"title" yaml:"title"`
	Competencies []Competency      `json:"competencies" yaml:"competencies"`
	Nodes        []Node            `json:"nodes" yaml:"nodes"`
	Endings      map[string]Ending `json:"endings,omitempty" yaml:"endings,omitempty"`
}

// IsEnding reports whether a goto value names a terminal ending.
// This is a prefix test only; the ending need not exist in Endings.
func IsEnding(id string) bool {
	return strings.HasPrefix(id, EndingPrefix)
}

// Ending looks up an ending by id. The second result is false when the
// scenario has no entry for it, in which case callers use generic feedback.
func (s *Scenario) Ending(id string) (Ending, bool) {
	e, ok := s.Endings[id]
	return e, ok
}

// DeclaredCompetencies returns the scenario's competency list, falling back
// to DefaultCompetencies.
func (s *Scenario) DeclaredCompetencies() []Competency {
	if len(s.Competencies) == 0 {
		out := make([]Competency, len(DefaultCompetencies))
		copy(out, DefaultCompetencies)
		return out
	}
	out := make([]Competency, len(s.Competencies))
	copy(out, s.Competencies)
	return out
}

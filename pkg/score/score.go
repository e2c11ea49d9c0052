// Package score holds the competency score state and the pure functions that
// advance and classify it.
package score

import (
	"sort"

	"github.com/jwebster45206/classroom-sim/pkg/scenario"
)

// State maps every declared competency to a running total.
// A State is never mutated after it is produced; Apply returns a new one.
type State map[scenario.Competency]int

// New returns a State with every competency at zero.
func New(competencies []scenario.Competency) State {
	s := make(State, len(competencies))
	for _, c := range competencies {
		s[c] = 0
	}
	return s
}

// Apply returns a new State with each effect delta added.
// Keys missing from s are treated as zero; s is left unchanged.
func Apply(s State, effects scenario.Effects) State {
	out := s.Clone()
	for k, d := range effects {
		out[k] += d
	}
	return out
}

// Clone returns an independent copy of s.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Get returns the value for c, zero if absent.
func (s State) Get(c scenario.Competency) int {
	return s[c]
}

// Keys returns the competencies in s, sorted for stable output.
func (s State) Keys() []scenario.Competency {
	keys := make([]scenario.Competency, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Equal reports whether two states hold the same totals.
func (s State) Equal(o State) bool {
	if len(s) != len(o) {
		return false
	}
	for k, v := range s {
		if ov, ok := o[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

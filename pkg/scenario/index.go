package scenario

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound is returned when a node id is not in the node set.
	ErrNodeNotFound = errors.New("node not found")
	// ErrNoEntryNode is returned when a scenario has no nodes.
	ErrNoEntryNode = errors.New("scenario has no entry node")
)

// LookupError reports a failed node lookup.
type LookupError struct {
	ScenarioID string
	NodeID     string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("노드를 찾을 수 없습니다: %s (scenario %q)", e.NodeID, e.ScenarioID)
}

func (e *LookupError) Unwrap() error { return ErrNodeNotFound }

// Index is an immutable lookup table over a scenario's nodes.
type Index struct {
	scenario *Scenario
	nodes    map[string]*Node
}

// Index builds the node lookup table. Duplicate ids keep the last node,
// matching a plain map build over the node list.
func (s *Scenario) Index() *Index {
	nodes := make(map[string]*Node, len(s.Nodes))
	for i := range s.Nodes {
		nodes[s.Nodes[i].ID] = &s.Nodes[i]
	}
	return &Index{scenario: s, nodes: nodes}
}

// Scenario returns the indexed scenario.
func (x *Index) Scenario() *Scenario { return x.scenario }

// Node returns the node with the given id or a *LookupError.
func (x *Index) Node(id string) (*Node, error) {
	n, ok := x.nodes[id]
	if !ok {
		return nil, &LookupError{ScenarioID: x.scenario.ID, NodeID: id}
	}
	return n, nil
}

// Has reports whether id is a known node.
func (x *Index) Has(id string) bool {
	_, ok := x.nodes[id]
	return ok
}

// Entry returns the first node of the scenario.
func (x *Index) Entry() (*Node, error) {
	if len(x.scenario.Nodes) == 0 {
		return nil, fmt.Errorf("scenario %q: %w", x.scenario.ID, ErrNoEntryNode)
	}
	return &x.scenario.Nodes[0], nil
}

// Len returns the number of distinct node ids.
func (x *Index) Len() int { return len(x.nodes) }

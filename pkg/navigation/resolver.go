// Package navigation resolves an option's destination into the next node or
// a terminal ending.
package navigation

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/classroom-sim/pkg/scenario"
)

// ErrDanglingGoto marks a goto that names neither a node nor an ending.
// It indicates malformed scenario content, never illegal user input.
var ErrDanglingGoto = errors.New("dangling goto reference")

// IntegrityError reports a scenario data error found during resolution.
type IntegrityError struct {
	Goto string
	Err  error // Underlying lookup failure
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrDanglingGoto, e.Goto, e.Err)
}

// Unwrap exposes both ErrDanglingGoto and the lookup error.
func (e *IntegrityError) Unwrap() []error {
	return []error{ErrDanglingGoto, e.Err}
}

// Kind distinguishes the two resolution outcomes.
type Kind int

const (
	Continue Kind = iota
	Terminal
)

func (k Kind) String() string {
	if k == Terminal {
		return "terminal"
	}
	return "continue"
}

// Result is the outcome of resolving an option.
type Result struct {
	Kind     Kind
	Node     *scenario.Node // Set for Continue
	EndingID string         // Set for Terminal
}

// Resolver resolves goto references against a scenario index.
type Resolver struct {
	index *scenario.Index
}

// NewResolver creates a resolver over the given index.
func NewResolver(index *scenario.Index) *Resolver {
	return &Resolver{index: index}
}

// Resolve returns Terminal for ending-prefixed gotos without consulting the
// node table, otherwise Continue with the destination node.
func (r *Resolver) Resolve(opt scenario.Option) (Result, error) {
	if scenario.IsEnding(opt.Goto) {
		return Result{Kind: Terminal, EndingID: opt.Goto}, nil
	}
	node, err := r.index.Node(opt.Goto)
	if err != nil {
		return Result{}, &IntegrityError{Goto: opt.Goto, Err: err}
	}
	return Result{Kind: Continue, Node: node}, nil
}

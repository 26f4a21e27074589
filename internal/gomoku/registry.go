package gomoku

import (
	"fmt"
	"sort"
)

// Validator is a status-scoped guard. It is skipped when the game is not in
// Status; otherwise Check must return true for the action to proceed.
type Validator struct {
	Name   string
	Status Status
	Types  []ActionType
	Reason string
	Check  func(g *Game, a Action) bool
}

// Executor competes with the other executors of its action types. The lowest
// Priority whose Status matches and whose Applies returns true runs Apply.
type Executor struct {
	Name     string
	Priority int
	Status   Status
	Types    []ActionType
	Applies  func(g *Game, a Action) bool
	Apply    func(g *Game, a Action, out *Outcome) error
}

// Outcome describes what a successful dispatch did.
type Outcome struct {
	Executor string
	// Archived is set when a restart was agreed; the caller must persist it
	// together with the reset aggregate.
	Archived *HistoryRecord
	// Reverted counts MOVE actions removed by an agreed undo.
	Reverted int
	// Finished is true when this dispatch moved the game into FINISHED.
	Finished bool
}

// Registry holds the per-action-type validator and executor chains. It is
// immutable after Build.
type Registry struct {
	validators map[ActionType][]Validator
	executors  map[ActionType][]Executor
}

// Validators returns the chain registered for t.
func (r *Registry) Validators(t ActionType) []Validator { return r.validators[t] }

// Executors returns the chain for t in ascending priority.
func (r *Registry) Executors(t ActionType) []Executor { return r.executors[t] }

// Builder assembles a Registry.
type Builder struct {
	validators []Validator
	executors  []Executor
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) Validate(vs ...Validator) *Builder {
	b.validators = append(b.validators, vs...)
	return b
}

func (b *Builder) Execute(es ...Executor) *Builder {
	b.executors = append(b.executors, es...)
	return b
}

// Build indexes the handlers by action type and sorts executors by priority.
// Every known action type must end up with at least one executor.
func (b *Builder) Build() (*Registry, error) {
	known := make(map[ActionType]bool)
	for _, t := range AllActionTypes() {
		known[t] = true
	}
	r := &Registry{
		validators: make(map[ActionType][]Validator),
		executors:  make(map[ActionType][]Executor),
	}
	for _, v := range b.validators {
		if v.Check == nil {
			return nil, fmt.Errorf("validator %s: nil check", v.Name)
		}
		if v.Status == "" {
			return nil, fmt.Errorf("validator %s: status required", v.Name)
		}
		for _, t := range v.Types {
			if !known[t] {
				return nil, fmt.Errorf("validator %s: unknown action type %q", v.Name, t)
			}
			r.validators[t] = append(r.validators[t], v)
		}
	}
	for _, e := range b.executors {
		if e.Applies == nil || e.Apply == nil {
			return nil, fmt.Errorf("executor %s: nil handler", e.Name)
		}
		for _, t := range e.Types {
			if !known[t] {
				return nil, fmt.Errorf("executor %s: unknown action type %q", e.Name, t)
			}
			r.executors[t] = append(r.executors[t], e)
		}
	}
	for _, t := range AllActionTypes() {
		chain := r.executors[t]
		if len(chain) == 0 {
			return nil, fmt.Errorf("no executor registered for %s", t)
		}
		sort.SliceStable(chain, func(i, j int) bool { return chain[i].Priority < chain[j].Priority })
	}
	return r, nil
}

// DefaultRegistry returns the standard Omok rules.
func DefaultRegistry() *Registry {
	r, err := NewBuilder().
		Validate(defaultValidators()...).
		Execute(defaultExecutors()...).
		Build()
	if err != nil {
		panic(fmt.Sprintf("gomoku: default registry: %v", err))
	}
	return r
}

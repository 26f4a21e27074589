package gomoku

import (
	"time"
)

// Clock supplies timestamps for history and snapshot updates.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Dispatcher validates and applies actions against one aggregate at a time.
// It holds no per-room state; callers serialize dispatches per room.
type Dispatcher struct {
	reg   *Registry
	clock Clock
}

// NewDispatcher wires a registry and clock. Nil arguments fall back to the
// default rules and the system clock.
func NewDispatcher(reg *Registry, clock Clock) *Dispatcher {
	if reg == nil {
		reg = DefaultRegistry()
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Dispatcher{reg: reg, clock: clock}
}

func (d *Dispatcher) Clock() Clock { return d.clock }

// Dispatch runs the validator chain, then the first applicable executor,
// then records the action. On any error the aggregate is left exactly as it
// was: rejections wrap ErrRejected, invariant violations are returned as-is.
func (d *Dispatcher) Dispatch(g *Game, a Action) (*Outcome, error) {
	if g == nil {
		return nil, ErrNilGame
	}
	if _, ok := d.reg.executors[a.Type]; !ok {
		return nil, reject(a.Type, ReasonNoApplicableRule)
	}

	for _, v := range d.reg.Validators(a.Type) {
		if v.Status != g.Status {
			continue
		}
		if !v.Check(g, a) {
			return nil, reject(a.Type, v.Reason)
		}
	}

	exec, reason := d.selectExecutor(g, a)
	if exec == nil {
		return nil, reject(a.Type, reason)
	}

	// Executors mutate a working copy so a failing Apply cannot leave a
	// half-applied aggregate behind.
	work := g.Clone()
	out := &Outcome{Executor: exec.Name}
	if err := exec.Apply(work, a, out); err != nil {
		return nil, err
	}

	d.record(work, a)
	*g = *work
	return out, nil
}

func (d *Dispatcher) selectExecutor(g *Game, a Action) (*Executor, string) {
	reason := ReasonWrongStatus
	chain := d.reg.Executors(a.Type)
	for i := range chain {
		e := &chain[i]
		if e.Status != g.Status {
			continue
		}
		reason = ReasonNoApplicableRule
		if e.Applies(g, a) {
			return e, ""
		}
	}
	return nil, reason
}

func (d *Dispatcher) record(g *Game, a Action) {
	entry := a
	if a.Position != nil {
		p := *a.Position
		entry.Position = &p
	}
	g.Actions = append(g.Actions, entry)
	g.Version++
	now := d.clock.Now()
	g.UpdatedAt = now
	if g.Snapshot != nil {
		g.Snapshot.SnapshotTime = now
	}
}

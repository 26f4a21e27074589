package gomoku

// Executor priorities. Lower runs first.
const (
	prioWin    = 10
	prioFull   = 20
	prioNormal = 30

	prioStart = 10
	prioMark  = 20

	prioSingle = 100
)

func defaultExecutors() []Executor {
	return []Executor{
		// READY
		{
			Name:     "ready_start",
			Priority: prioStart,
			Status:   StatusWaiting,
			Types:    []ActionType{ActionReady},
			Applies:  func(g *Game, a Action) bool { return g.Ready(a.Color.Opponent()) },
			Apply:    applyStart,
		},
		{
			Name:     "ready_mark",
			Priority: prioMark,
			Status:   StatusWaiting,
			Types:    []ActionType{ActionReady},
			Applies:  always,
			Apply: func(g *Game, a Action, out *Outcome) error {
				g.setReady(a.Color, true)
				return nil
			},
		},

		// MOVE
		{
			Name:     "move_win",
			Priority: prioWin,
			Status:   StatusPlaying,
			Types:    []ActionType{ActionMove},
			Applies: func(g *Game, a Action) bool {
				return g.Snapshot != nil && CheckWin(g.Snapshot.Board, a.Position, a.Color)
			},
			Apply: func(g *Game, a Action, out *Outcome) error {
				g.Snapshot.place(*a.Position, a.Color)
				g.DrawProposer = NoColor
				finish(g, WinnerOf(a.Color), out)
				return nil
			},
		},
		{
			Name:     "move_board_full",
			Priority: prioFull,
			Status:   StatusPlaying,
			Types:    []ActionType{ActionMove},
			Applies: func(g *Game, a Action) bool {
				return g.Snapshot != nil && a.Position != nil && fillsBoard(g.Snapshot.Board, *a.Position)
			},
			Apply: func(g *Game, a Action, out *Outcome) error {
				g.Snapshot.place(*a.Position, a.Color)
				g.DrawProposer = NoColor
				finish(g, WinnerDraw, out)
				return nil
			},
		},
		{
			Name:     "move_normal",
			Priority: prioNormal,
			Status:   StatusPlaying,
			Types:    []ActionType{ActionMove},
			Applies: func(g *Game, a Action) bool {
				return g.Snapshot != nil && a.Position != nil
			},
			Apply: func(g *Game, a Action, out *Outcome) error {
				g.Snapshot.place(*a.Position, a.Color)
				g.Snapshot.CurrentTurn = a.Color.Opponent()
				g.DrawProposer = NoColor
				return nil
			},
		},

		// SURRENDER / TIMEOUT
		{
			Name:     "surrender",
			Priority: prioSingle,
			Status:   StatusPlaying,
			Types:    []ActionType{ActionSurrender},
			Applies:  hasSnapshot,
			Apply:    opponentWins,
		},
		{
			Name:     "timeout",
			Priority: prioSingle,
			Status:   StatusPlaying,
			Types:    []ActionType{ActionTimeout},
			Applies:  hasSnapshot,
			Apply:    opponentWins,
		},

		// DRAW
		proposeExecutor("draw_propose", StatusPlaying, ActionDraw, func(g *Game) *Color { return &g.DrawProposer }),
		{
			Name:     "draw_agree",
			Priority: prioSingle,
			Status:   StatusPlaying,
			Types:    []ActionType{ActionDrawAgree},
			Applies:  hasSnapshot,
			Apply: func(g *Game, a Action, out *Outcome) error {
				finish(g, WinnerDraw, out)
				return nil
			},
		},
		clearExecutor("draw_disagree", StatusPlaying, ActionDrawDisagree, func(g *Game) *Color { return &g.DrawProposer }),

		// UNDO
		proposeExecutor("undo_propose", StatusPlaying, ActionUndo, func(g *Game) *Color { return &g.UndoProposer }),
		{
			Name:     "undo_agree",
			Priority: prioSingle,
			Status:   StatusPlaying,
			Types:    []ActionType{ActionUndoAgree},
			Applies:  hasSnapshot,
			Apply:    applyUndo,
		},
		clearExecutor("undo_disagree", StatusPlaying, ActionUndoDisagree, func(g *Game) *Color { return &g.UndoProposer }),

		// RESTART
		proposeExecutor("restart_propose", StatusFinished, ActionRestart, func(g *Game) *Color { return &g.RestartProposer }),
		{
			Name:     "restart_agree",
			Priority: prioSingle,
			Status:   StatusFinished,
			Types:    []ActionType{ActionRestartAgree},
			Applies:  always,
			Apply: func(g *Game, a Action, out *Outcome) error {
				out.Archived = archive(g, a.Timestamp)
				resetForRematch(g, a.Timestamp)
				return nil
			},
		},
		clearExecutor("restart_disagree", StatusFinished, ActionRestartDisagree, func(g *Game) *Color { return &g.RestartProposer }),
	}
}

func always(*Game, Action) bool { return true }

func hasSnapshot(g *Game, _ Action) bool { return g.Snapshot != nil }

func proposeExecutor(name string, st Status, t ActionType, field func(*Game) *Color) Executor {
	return Executor{
		Name:     name,
		Priority: prioSingle,
		Status:   st,
		Types:    []ActionType{t},
		Applies:  always,
		Apply: func(g *Game, a Action, out *Outcome) error {
			*field(g) = a.Color
			return nil
		},
	}
}

func clearExecutor(name string, st Status, t ActionType, field func(*Game) *Color) Executor {
	return Executor{
		Name:     name,
		Priority: prioSingle,
		Status:   st,
		Types:    []ActionType{t},
		Applies:  always,
		Apply: func(g *Game, a Action, out *Outcome) error {
			*field(g) = NoColor
			return nil
		},
	}
}

func applyStart(g *Game, a Action, out *Outcome) error {
	g.setReady(a.Color, true)
	g.Snapshot = NewSnapshot(g.boardSize(), a.Timestamp)
	g.Status = StatusPlaying
	g.StartedAt = a.Timestamp
	g.clearProposals()
	return nil
}

func opponentWins(g *Game, a Action, out *Outcome) error {
	finish(g, WinnerOf(a.Color.Opponent()), out)
	return nil
}

func finish(g *Game, w Winner, out *Outcome) {
	g.Snapshot.Winner = w
	g.Status = StatusFinished
	g.clearProposals()
	out.Finished = true
}

// applyUndo reverts one or two trailing MOVE actions. If the latest move
// belongs to the proposer's opponent, the proposer's own move before it goes
// too so the proposer replays their turn.
func applyUndo(g *Game, a Action, out *Outcome) error {
	proposer := g.UndoProposer
	need := 1
	for i := len(g.Actions) - 1; i >= 0; i-- {
		if g.Actions[i].Type == ActionMove {
			if g.Actions[i].Color == proposer.Opponent() {
				need = 2
			}
			break
		}
	}

	drop := make(map[int]bool, need)
	for i := len(g.Actions) - 1; i >= 0 && len(drop) < need; i-- {
		if g.Actions[i].Type == ActionMove && g.Actions[i].Position != nil {
			drop[i] = true
		}
	}
	if len(drop) < need {
		return ErrUndoHistoryExhausted
	}

	kept := make([]Action, 0, len(g.Actions)-len(drop))
	for i, act := range g.Actions {
		if drop[i] {
			g.Snapshot.remove(*act.Position)
			continue
		}
		kept = append(kept, act)
	}
	g.Actions = kept
	g.Snapshot.CurrentTurn = proposer
	g.UndoProposer = NoColor
	out.Reverted = need
	return nil
}

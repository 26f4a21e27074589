package gomoku

func defaultValidators() []Validator {
	vs := []Validator{
		{
			Name:   "ready_not_repeated",
			Status: StatusWaiting,
			Types:  []ActionType{ActionReady},
			Reason: ReasonAlreadyReady,
			Check:  func(g *Game, a Action) bool { return !g.Ready(a.Color) },
		},
		{
			Name:   "move_has_position",
			Status: StatusPlaying,
			Types:  []ActionType{ActionMove},
			Reason: ReasonNoPosition,
			Check:  func(g *Game, a Action) bool { return a.Position != nil },
		},
		{
			Name:   "move_game_ongoing",
			Status: StatusPlaying,
			Types:  []ActionType{ActionMove},
			Reason: ReasonGameOver,
			Check: func(g *Game, a Action) bool {
				return g.Snapshot != nil && g.Snapshot.Winner == WinnerOngoing
			},
		},
		{
			Name:   "move_in_bounds",
			Status: StatusPlaying,
			Types:  []ActionType{ActionMove},
			Reason: ReasonOutOfBounds,
			Check: func(g *Game, a Action) bool {
				return a.Position != nil && g.Snapshot != nil && a.Position.InBounds(g.Snapshot.Board.Size())
			},
		},
		{
			Name:   "move_cell_empty",
			Status: StatusPlaying,
			Types:  []ActionType{ActionMove},
			Reason: ReasonOccupied,
			Check: func(g *Game, a Action) bool {
				return a.Position != nil && g.Snapshot != nil && g.Snapshot.Board.At(*a.Position) == NoColor
			},
		},
		{
			Name:   "move_on_turn",
			Status: StatusPlaying,
			Types:  []ActionType{ActionMove},
			Reason: ReasonNotYourTurn,
			Check:  onTurn,
		},
		{
			Name:   "timeout_on_turn",
			Status: StatusPlaying,
			Types:  []ActionType{ActionTimeout},
			Reason: ReasonNotYourTurn,
			Check:  onTurn,
		},
		{
			Name:   "draw_not_pending",
			Status: StatusPlaying,
			Types:  []ActionType{ActionDraw},
			Reason: ReasonProposalPending,
			Check:  func(g *Game, a Action) bool { return g.DrawProposer == NoColor },
		},
		{
			Name:   "draw_pending",
			Status: StatusPlaying,
			Types:  []ActionType{ActionDrawAgree, ActionDrawDisagree},
			Reason: ReasonNoProposal,
			Check:  func(g *Game, a Action) bool { return g.DrawProposer != NoColor },
		},
		{
			Name:   "draw_responder",
			Status: StatusPlaying,
			Types:  []ActionType{ActionDrawAgree, ActionDrawDisagree},
			Reason: ReasonOwnProposal,
			Check:  func(g *Game, a Action) bool { return g.DrawProposer != a.Color },
		},
		{
			Name:   "undo_not_pending",
			Status: StatusPlaying,
			Types:  []ActionType{ActionUndo},
			Reason: ReasonProposalPending,
			Check:  func(g *Game, a Action) bool { return g.UndoProposer == NoColor },
		},
		{
			Name:   "undo_has_move",
			Status: StatusPlaying,
			Types:  []ActionType{ActionUndo},
			Reason: ReasonNothingToUndo,
			Check:  func(g *Game, a Action) bool { return g.MoveCount() > 0 },
		},
		{
			Name:   "undo_pending",
			Status: StatusPlaying,
			Types:  []ActionType{ActionUndoAgree, ActionUndoDisagree},
			Reason: ReasonNoProposal,
			Check:  func(g *Game, a Action) bool { return g.UndoProposer != NoColor },
		},
		{
			Name:   "undo_responder",
			Status: StatusPlaying,
			Types:  []ActionType{ActionUndoAgree, ActionUndoDisagree},
			Reason: ReasonOwnProposal,
			Check:  func(g *Game, a Action) bool { return g.UndoProposer != a.Color },
		},
		{
			Name:   "restart_not_pending",
			Status: StatusFinished,
			Types:  []ActionType{ActionRestart},
			Reason: ReasonProposalPending,
			Check:  func(g *Game, a Action) bool { return g.RestartProposer == NoColor },
		},
		{
			Name:   "restart_pending",
			Status: StatusFinished,
			Types:  []ActionType{ActionRestartAgree, ActionRestartDisagree},
			Reason: ReasonNoProposal,
			Check:  func(g *Game, a Action) bool { return g.RestartProposer != NoColor },
		},
		{
			Name:   "restart_responder",
			Status: StatusFinished,
			Types:  []ActionType{ActionRestartAgree, ActionRestartDisagree},
			Reason: ReasonOwnProposal,
			Check:  func(g *Game, a Action) bool { return g.RestartProposer != a.Color },
		},
	}
	// Seat check runs in every status and ahead of the rule checks.
	seat := make([]Validator, 0, 3)
	for _, st := range []Status{StatusWaiting, StatusPlaying, StatusFinished} {
		seat = append(seat, Validator{
			Name:   "seated_" + string(st),
			Status: st,
			Types:  AllActionTypes(),
			Reason: ReasonNotSeated,
			Check:  seated,
		})
	}
	return append(seat, vs...)
}

// seated requires a.Color to be the acting player's seat.
func seated(g *Game, a Action) bool {
	return a.Color.Valid() && g.ColorOf(a.PlayerID) == a.Color
}

func onTurn(g *Game, a Action) bool {
	return g.Snapshot != nil && g.Snapshot.CurrentTurn == a.Color
}

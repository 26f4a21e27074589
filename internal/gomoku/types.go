package gomoku

import (
	"time"
)

// DefaultBoardSize is the standard 15x15 goban.
const DefaultBoardSize = 15

// WinLength is the run of same-colored stones that ends a game.
const WinLength = 5

// Color identifies a player's stones. NoColor doubles as the empty cell
// and as "nobody proposed" on the proposal fields.
type Color int

const (
	NoColor Color = 0
	Black   Color = 1
	White   Color = 2
)

// Opponent returns the other color. NoColor has no opponent.
func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return NoColor
	}
}

func (c Color) Valid() bool { return c == Black || c == White }

func (c Color) String() string {
	switch c {
	case Black:
		return "BLACK"
	case White:
		return "WHITE"
	default:
		return "NONE"
	}
}

// Winner is the result marker kept on the snapshot.
type Winner int

const (
	WinnerOngoing Winner = -1
	WinnerDraw    Winner = 0
	WinnerBlack   Winner = 1
	WinnerWhite   Winner = 2
)

// WinnerOf maps a color to its winning marker.
func WinnerOf(c Color) Winner {
	switch c {
	case Black:
		return WinnerBlack
	case White:
		return WinnerWhite
	default:
		return WinnerOngoing
	}
}

// Color returns the winning color, or NoColor for ongoing/draw.
func (w Winner) Color() Color {
	switch w {
	case WinnerBlack:
		return Black
	case WinnerWhite:
		return White
	default:
		return NoColor
	}
}

// Status is the lifecycle state of a game aggregate.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusPlaying  Status = "PLAYING"
	StatusFinished Status = "FINISHED"
)

// ActionType is the dispatch key of a player intent.
type ActionType string

const (
	ActionReady           ActionType = "READY"
	ActionMove            ActionType = "MOVE"
	ActionSurrender       ActionType = "SURRENDER"
	ActionDraw            ActionType = "DRAW"
	ActionDrawAgree       ActionType = "DRAW_AGREE"
	ActionDrawDisagree    ActionType = "DRAW_DISAGREE"
	ActionUndo            ActionType = "UNDO"
	ActionUndoAgree       ActionType = "UNDO_AGREE"
	ActionUndoDisagree    ActionType = "UNDO_DISAGREE"
	ActionRestart         ActionType = "RESTART"
	ActionRestartAgree    ActionType = "RESTART_AGREE"
	ActionRestartDisagree ActionType = "RESTART_DISAGREE"
	ActionTimeout         ActionType = "TIMEOUT"
)

// AllActionTypes lists every action the engine knows about, in declaration order.
func AllActionTypes() []ActionType {
	return []ActionType{
		ActionReady,
		ActionMove,
		ActionSurrender,
		ActionDraw,
		ActionDrawAgree,
		ActionDrawDisagree,
		ActionUndo,
		ActionUndoAgree,
		ActionUndoDisagree,
		ActionRestart,
		ActionRestartAgree,
		ActionRestartDisagree,
		ActionTimeout,
	}
}

// Mode tags a room for ranking purposes. The engine does not branch on it.
type Mode string

const (
	ModeCasual Mode = "CASUAL"
	ModeRanked Mode = "RANKED"
)

// EndReason classifies how an archived game ended.
type EndReason string

const (
	EndWin       EndReason = "WIN"
	EndDraw      EndReason = "DRAW"
	EndSurrender EndReason = "SURRENDER"
	EndTimeout   EndReason = "TIMEOUT"
	EndOngoing   EndReason = "ONGOING"
	EndUnknown   EndReason = "UNKNOWN"
)

// Action is one player intent. Treat it as immutable once built; history
// stores it verbatim.
type Action struct {
	Type      ActionType `json:"type"`
	PlayerID  string     `json:"player_id"`
	Color     Color      `json:"color"`
	Position  *Position  `json:"position,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewMove builds a MOVE action.
func NewMove(playerID string, color Color, pos Position, at time.Time) Action {
	p := pos
	return Action{Type: ActionMove, PlayerID: playerID, Color: color, Position: &p, Timestamp: at}
}

// NewAction builds a position-less action.
func NewAction(t ActionType, playerID string, color Color, at time.Time) Action {
	return Action{Type: t, PlayerID: playerID, Color: color, Timestamp: at}
}

// Game is the versioned aggregate owned by exactly one room.
type Game struct {
	ID     string `json:"id"`
	RoomID string `json:"room_id"`

	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Actions  []Action  `json:"actions"`
	Status   Status    `json:"status"`

	BlackPlayerID string `json:"black_player_id"`
	WhitePlayerID string `json:"white_player_id"`
	BlackReady    bool   `json:"black_ready"`
	WhiteReady    bool   `json:"white_ready"`

	DrawProposer    Color `json:"draw_proposer_color,omitempty"`
	UndoProposer    Color `json:"undo_proposer_color,omitempty"`
	RestartProposer Color `json:"restart_proposer_color,omitempty"`

	Version   int64     `json:"version"`
	GameCount int       `json:"game_count"`
	Mode      Mode      `json:"mode_type"`
	BoardSize int       `json:"board_size"`
	StartedAt time.Time `json:"started_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGame creates a WAITING aggregate for two seated players.
func NewGame(id, roomID, blackID, whiteID string, mode Mode, boardSize int, now time.Time) *Game {
	if boardSize <= 0 {
		boardSize = DefaultBoardSize
	}
	if mode == "" {
		mode = ModeCasual
	}
	return &Game{
		ID:            id,
		RoomID:        roomID,
		Actions:       []Action{},
		Status:        StatusWaiting,
		BlackPlayerID: blackID,
		WhitePlayerID: whiteID,
		GameCount:     1,
		Mode:          mode,
		BoardSize:     boardSize,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ColorOf returns the seat of a player, or NoColor if they are not seated.
func (g *Game) ColorOf(playerID string) Color {
	if g == nil || playerID == "" {
		return NoColor
	}
	switch playerID {
	case g.BlackPlayerID:
		return Black
	case g.WhitePlayerID:
		return White
	default:
		return NoColor
	}
}

// PlayerOf returns the player id seated at c.
func (g *Game) PlayerOf(c Color) string {
	switch c {
	case Black:
		return g.BlackPlayerID
	case White:
		return g.WhitePlayerID
	default:
		return ""
	}
}

// Ready reports the ready flag of a seat.
func (g *Game) Ready(c Color) bool {
	switch c {
	case Black:
		return g.BlackReady
	case White:
		return g.WhiteReady
	default:
		return false
	}
}

func (g *Game) setReady(c Color, v bool) {
	switch c {
	case Black:
		g.BlackReady = v
	case White:
		g.WhiteReady = v
	}
}

func (g *Game) clearProposals() {
	g.DrawProposer = NoColor
	g.UndoProposer = NoColor
	g.RestartProposer = NoColor
}

func (g *Game) boardSize() int {
	if g.BoardSize > 0 {
		return g.BoardSize
	}
	return DefaultBoardSize
}

// Winner returns the snapshot winner, or ongoing when no snapshot exists.
func (g *Game) Winner() Winner {
	if g == nil || g.Snapshot == nil {
		return WinnerOngoing
	}
	return g.Snapshot.Winner
}

// MoveCount counts MOVE entries in the action history.
func (g *Game) MoveCount() int {
	n := 0
	for _, a := range g.Actions {
		if a.Type == ActionMove {
			n++
		}
	}
	return n
}

// Clone deep-copies the aggregate.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	cp := *g
	cp.Snapshot = g.Snapshot.Clone()
	cp.Actions = cloneActions(g.Actions)
	return &cp
}

func cloneActions(in []Action) []Action {
	out := make([]Action, len(in))
	for i, a := range in {
		out[i] = a
		if a.Position != nil {
			p := *a.Position
			out[i].Position = &p
		}
	}
	return out
}

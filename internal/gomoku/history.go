package gomoku

import (
	"fmt"
	"time"
)

// HistoryRecord is the immutable archive of one finished game in a room.
type HistoryRecord struct {
	ID            string    `json:"id"`
	GameID        string    `json:"game_id"`
	RoomID        string    `json:"room_id"`
	GameCount     int       `json:"game_count"`
	BlackPlayerID string    `json:"black_player_id"`
	WhitePlayerID string    `json:"white_player_id"`
	Mode          Mode      `json:"mode_type"`
	EndReason     EndReason `json:"end_reason"`
	Winner        Winner    `json:"winner"`
	FinalSnapshot *Snapshot `json:"final_snapshot,omitempty"`
	Actions       []Action  `json:"actions"`
	StartedAt     time.Time `json:"started_at"`
	ArchivedAt    time.Time `json:"archived_at"`
}

// RecordID is stable per game and round so a redelivered archive overwrites
// instead of duplicating.
func RecordID(gameID string, gameCount int) string {
	return fmt.Sprintf("%s#%d", gameID, gameCount)
}

// WinnerPlayerID returns the id of the winning player, or "" for draws.
func (r *HistoryRecord) WinnerPlayerID() string {
	switch r.Winner {
	case WinnerBlack:
		return r.BlackPlayerID
	case WinnerWhite:
		return r.WhitePlayerID
	default:
		return ""
	}
}

// Archive copies the current aggregate into a history record without
// touching it. Callers use it for games that finished but were never
// restarted.
func Archive(g *Game, now time.Time) *HistoryRecord {
	if g == nil {
		return nil
	}
	return archive(g, now)
}

func archive(g *Game, now time.Time) *HistoryRecord {
	count := g.GameCount
	if count <= 0 {
		count = 1
	}
	return &HistoryRecord{
		ID:            RecordID(g.ID, count),
		GameID:        g.ID,
		RoomID:        g.RoomID,
		GameCount:     count,
		BlackPlayerID: g.BlackPlayerID,
		WhitePlayerID: g.WhitePlayerID,
		Mode:          g.Mode,
		EndReason:     EndReasonOf(g),
		Winner:        g.Winner(),
		FinalSnapshot: g.Snapshot.Clone(),
		Actions:       cloneActions(g.Actions),
		StartedAt:     g.StartedAt,
		ArchivedAt:    now,
	}
}

// EndReasonOf classifies the current game. The action that ended the game
// wins over the winner marker, since surrender and timeout also set a winner.
func EndReasonOf(g *Game) EndReason {
	if g == nil || g.Snapshot == nil {
		return EndUnknown
	}
	if a, ok := lastBeforeRestart(g); ok {
		switch a.Type {
		case ActionSurrender:
			return EndSurrender
		case ActionTimeout:
			return EndTimeout
		case ActionDrawAgree:
			return EndDraw
		}
	}
	switch g.Snapshot.Winner {
	case WinnerBlack, WinnerWhite:
		return EndWin
	case WinnerDraw:
		return EndDraw
	default:
		return EndOngoing
	}
}

func lastBeforeRestart(g *Game) (Action, bool) {
	for i := len(g.Actions) - 1; i >= 0; i-- {
		switch g.Actions[i].Type {
		case ActionRestart, ActionRestartAgree, ActionRestartDisagree:
			continue
		}
		return g.Actions[i], true
	}
	return Action{}, false
}

// resetForRematch clears the room for the next round. Colors swap so the
// previous WHITE player opens.
func resetForRematch(g *Game, now time.Time) {
	g.BlackPlayerID, g.WhitePlayerID = g.WhitePlayerID, g.BlackPlayerID
	g.Snapshot = NewSnapshot(g.boardSize(), now)
	g.Actions = []Action{}
	g.BlackReady = false
	g.WhiteReady = false
	g.Status = StatusWaiting
	g.clearProposals()
	if g.GameCount <= 0 {
		g.GameCount = 1
	}
	g.GameCount++
	g.StartedAt = time.Time{}
	g.UpdatedAt = now
}

package omokpresenter

import (
	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
	"github.com/park285/Omok-KakaoTalk-bot/internal/lobby"
	"github.com/park285/Omok-KakaoTalk-bot/internal/room"
	"github.com/park285/Omok-KakaoTalk-bot/pkg/omokdto"
)

// ToRoomView projects a stored room. The board image is left for the caller.
func ToRoomView(r *room.Room) *omokdto.RoomView {
	if r == nil || r.Game == nil {
		return nil
	}
	g := r.Game
	v := &omokdto.RoomView{
		RoomID:    r.ID,
		GameID:    g.ID,
		ChatRooms: append([]string(nil), r.ChatRooms...),
		Round:     max(g.GameCount, 1),
		Status:    string(g.Status),
		Black:     omokdto.Seat{ID: g.BlackPlayerID, Name: r.NameOf(g.BlackPlayerID), Ready: g.BlackReady},
		White:     omokdto.Seat{ID: g.WhitePlayerID, Name: r.NameOf(g.WhitePlayerID), Ready: g.WhiteReady},
		Moves:     g.MoveCount(),
		BoardSize: g.BoardSize,
	}
	if g.Snapshot != nil {
		if g.Status == gomoku.StatusPlaying {
			v.Turn = g.Snapshot.CurrentTurn.String()
		}
		if p, ok := lastMove(g); ok {
			v.LastMove = FormatCoord(p)
		}
	}
	if g.Status == gomoku.StatusFinished {
		v.EndReason = string(gomoku.EndReasonOf(g))
		v.Winner = winnerName(g.Winner())
	}
	return v
}

// ToActionSummary describes an accepted action for the formatter.
func ToActionSummary(res *room.ActResult) *omokdto.ActionSummary {
	if res == nil {
		return nil
	}
	s := &omokdto.ActionSummary{
		Type:       string(res.Action.Type),
		ActorID:    res.Action.PlayerID,
		ActorColor: res.Action.Color.String(),
	}
	if res.Room != nil {
		s.ActorName = res.Room.NameOf(res.Action.PlayerID)
	}
	if res.Action.Position != nil {
		s.Coord = FormatCoord(*res.Action.Position)
	}
	if out := res.Outcome; out != nil {
		s.Executor = out.Executor
		s.Reverted = out.Reverted
		s.Finished = out.Finished
		s.Archived = out.Archived != nil
	}
	return s
}

// ToHistoryEntries turns archive records into rows seen from userID.
func ToHistoryEntries(userID string, recs []*gomoku.HistoryRecord) []omokdto.HistoryEntry {
	out := make([]omokdto.HistoryEntry, 0, len(recs))
	for _, rec := range recs {
		if rec == nil {
			continue
		}
		e := omokdto.HistoryEntry{
			RecordID:   rec.ID,
			Round:      rec.GameCount,
			EndReason:  string(rec.EndReason),
			ArchivedAt: rec.ArchivedAt,
		}
		if rec.FinalSnapshot != nil {
			e.Moves = rec.FinalSnapshot.TotalMoves
		}
		mine := gomoku.NoColor
		switch userID {
		case rec.BlackPlayerID:
			mine, e.OpponentID = gomoku.Black, rec.WhitePlayerID
		case rec.WhitePlayerID:
			mine, e.OpponentID = gomoku.White, rec.BlackPlayerID
		}
		e.Color = mine.String()
		switch w := rec.Winner.Color(); {
		case rec.Winner == gomoku.WinnerDraw:
			e.Result = "DRAW"
		case w == mine:
			e.Result = "WIN"
		default:
			e.Result = "LOSS"
		}
		out = append(out, e)
	}
	return out
}

func ToLobbyEntries(metas []*lobby.Meta) []omokdto.LobbyEntry {
	out := make([]omokdto.LobbyEntry, 0, len(metas))
	for _, m := range metas {
		name := m.CreatorName
		if name == "" {
			name = m.CreatorID
		}
		out = append(out, omokdto.LobbyEntry{Code: m.Code, Name: name, CreatedAt: m.CreatedAt})
	}
	return out
}

func lastMove(g *gomoku.Game) (gomoku.Position, bool) {
	for i := len(g.Actions) - 1; i >= 0; i-- {
		if a := g.Actions[i]; a.Type == gomoku.ActionMove && a.Position != nil {
			return *a.Position, true
		}
	}
	return gomoku.Position{}, false
}

// LastMove exposes the latest MOVE position for the board marker.
func LastMove(g *gomoku.Game) *gomoku.Position {
	if g == nil {
		return nil
	}
	if p, ok := lastMove(g); ok {
		return &p
	}
	return nil
}

func winnerName(w gomoku.Winner) string {
	switch w {
	case gomoku.WinnerBlack:
		return "BLACK"
	case gomoku.WinnerWhite:
		return "WHITE"
	case gomoku.WinnerDraw:
		return "DRAW"
	default:
		return ""
	}
}

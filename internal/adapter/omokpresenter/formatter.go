package omokpresenter

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
	"github.com/park285/Omok-KakaoTalk-bot/internal/lobby"
	"github.com/park285/Omok-KakaoTalk-bot/internal/msgcat"
	"github.com/park285/Omok-KakaoTalk-bot/internal/obslog"
	"github.com/park285/Omok-KakaoTalk-bot/pkg/omokdto"
)

var kst = time.FixedZone("KST", 9*60*60)

// Formatter turns views into catalog-rendered Korean replies.
type Formatter struct {
	cat    *msgcat.Catalog
	prefix string
}

func NewFormatter(cat *msgcat.Catalog, prefix string) *Formatter {
	return &Formatter{cat: cat, prefix: strings.TrimSpace(prefix)}
}

func (f *Formatter) Prefix() string { return f.prefix }

// render never fails: a broken template is logged and its key returned so
// the chat still gets an answer.
func (f *Formatter) render(key string, data map[string]any) string {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Prefix"]; !ok {
		data["Prefix"] = f.prefix
	}
	out, err := f.cat.Render(key, data)
	if err != nil {
		obslog.L().Warn("msgcat_render_failed", zap.String("key", key), zap.Error(err))
		return key
	}
	return out
}

func (f *Formatter) colorLabel(color string) string {
	switch color {
	case "BLACK":
		return f.render("color.black", nil)
	case "WHITE":
		return f.render("color.white", nil)
	default:
		return color
	}
}

func (f *Formatter) endLabel(reason string) string {
	if reason == "" {
		reason = string(gomoku.EndUnknown)
	}
	return f.render("end."+reason, nil)
}

func (f *Formatter) Help() string {
	return withSeeMore(f.render("help.text", nil))
}

func (f *Formatter) LobbyMade(name, code string) string {
	return f.render("lobby.made", map[string]any{"Name": name, "Code": code})
}

func (f *Formatter) LobbyStarted(v *omokdto.RoomView) string {
	return f.render("lobby.started", map[string]any{"Black": v.Black.Name, "White": v.White.Name})
}

func (f *Formatter) LobbyList(entries []omokdto.LobbyEntry) string {
	if len(entries) == 0 {
		return f.render("lobby.list_empty", nil)
	}
	lines := []string{f.render("lobby.list_header", map[string]any{"Count": len(entries)})}
	for _, e := range entries {
		lines = append(lines, f.render("lobby.list_item", map[string]any{"Code": e.Code, "Name": e.Name}))
	}
	return strings.Join(lines, "\n")
}

// LobbyError maps lobby failures to replies. ok is false for errors the
// caller should treat as internal.
func (f *Formatter) LobbyError(err error) (string, bool) {
	keys := []struct {
		err error
		key string
	}{
		{lobby.ErrInvalidArgs, "lobby.err.invalid"},
		{lobby.ErrChannelGone, "lobby.err.gone"},
		{lobby.ErrChannelActive, "lobby.err.active"},
		{lobby.ErrFull, "lobby.err.full"},
		{lobby.ErrOwnLobby, "lobby.err.own"},
		{lobby.ErrPlayerBusy, "lobby.err.busy"},
		{lobby.ErrCreatorHasLobby, "lobby.err.has_lobby"},
	}
	for _, k := range keys {
		if errors.Is(err, k.err) {
			return f.render(k.key, nil), true
		}
	}
	return "", false
}

// Action describes an accepted command in the room's chats.
func (f *Formatter) Action(v *omokdto.RoomView, s *omokdto.ActionSummary) string {
	if v == nil || s == nil {
		return ""
	}
	actor := map[string]any{"Name": s.ActorName}
	switch s.Executor {
	case "ready_mark":
		return f.render("ready.marked", actor)
	case "ready_start":
		return f.render("game.started", map[string]any{"Black": v.Black.Name})
	case "move_normal":
		return f.render("game.turn", map[string]any{
			"Name":  s.ActorName,
			"Color": f.colorLabel(s.ActorColor),
			"Coord": s.Coord,
			"Next":  f.next(v),
		})
	case "move_win":
		return f.finished("game.win", map[string]any{
			"Name":   s.ActorName,
			"Color":  f.colorLabel(s.ActorColor),
			"Coord":  s.Coord,
			"Winner": v.SeatOf(v.Winner).Name,
		})
	case "move_board_full":
		return f.finished("game.full", map[string]any{"Coord": s.Coord})
	case "surrender":
		return f.finished("game.surrender", map[string]any{"Name": s.ActorName, "Winner": v.SeatOf(v.Winner).Name})
	case "timeout":
		return f.finished("game.timeout", map[string]any{"Name": s.ActorName, "Winner": v.SeatOf(v.Winner).Name})
	case "draw_propose":
		return f.render("draw.proposed", actor)
	case "draw_agree":
		return f.finished("game.draw", nil)
	case "draw_disagree":
		return f.render("draw.declined", actor)
	case "undo_propose":
		return f.render("undo.proposed", actor)
	case "undo_agree":
		return f.render("undo.done", map[string]any{"Count": s.Reverted, "Next": f.next(v)})
	case "undo_disagree":
		return f.render("undo.declined", actor)
	case "restart_propose":
		return f.render("restart.proposed", actor)
	case "restart_agree":
		return f.render("restart.done", map[string]any{"Round": v.Round, "Black": v.Black.Name, "White": v.White.Name})
	case "restart_disagree":
		return f.render("restart.declined", actor)
	default:
		return f.Status(v)
	}
}

func (f *Formatter) finished(key string, data map[string]any) string {
	return f.render(key, data) + "\n" + f.render("game.after", nil)
}

func (f *Formatter) next(v *omokdto.RoomView) string {
	if v.Turn == "" {
		return "-"
	}
	return v.SeatOf(v.Turn).Name + "(" + f.colorLabel(v.Turn) + ")"
}

func (f *Formatter) Status(v *omokdto.RoomView) string {
	if v == nil {
		return f.NoRoom()
	}
	switch v.Status {
	case string(gomoku.StatusWaiting):
		return f.render("status.waiting", map[string]any{
			"Round":      v.Round,
			"Black":      v.Black.Name,
			"White":      v.White.Name,
			"BlackReady": readyMark(v.Black.Ready),
			"WhiteReady": readyMark(v.White.Ready),
		})
	case string(gomoku.StatusPlaying):
		return f.render("status.playing", map[string]any{
			"Round": v.Round,
			"Moves": v.Moves + 1,
			"Next":  f.next(v),
			"Black": v.Black.Name,
			"White": v.White.Name,
		})
	default:
		return f.render("status.finished", map[string]any{
			"Round":  v.Round,
			"Reason": f.endLabel(v.EndReason),
			"Black":  v.Black.Name,
			"White":  v.White.Name,
		})
	}
}

func readyMark(ready bool) string {
	if ready {
		return "(준비)"
	}
	return "(대기)"
}

func (f *Formatter) NoRoom() string { return f.render("status.none", nil) }

// History lists archived games. nameOf resolves opponent ids; nil shows ids.
func (f *Formatter) History(name string, entries []omokdto.HistoryEntry, nameOf func(string) string) string {
	if len(entries) == 0 {
		return f.render("history.empty", nil)
	}
	if nameOf == nil {
		nameOf = func(id string) string { return id }
	}
	lines := []string{f.render("history.header", map[string]any{"Name": name, "Count": len(entries)})}
	for _, e := range entries {
		lines = append(lines, f.render("history.item", map[string]any{
			"Date":     e.ArchivedAt.In(kst).Format("01/02 15:04"),
			"Color":    f.colorLabel(e.Color),
			"Opponent": nameOf(e.OpponentID),
			"Result":   f.render("history."+strings.ToLower(e.Result), nil),
			"Reason":   f.endLabel(e.EndReason),
			"Moves":    e.Moves,
		}))
	}
	return withSeeMore(strings.Join(lines, "\n"))
}

func (f *Formatter) Rejected(reason string) string {
	text := f.render("reason."+reason, nil)
	return f.render("err.rejected", map[string]any{"Reason": text})
}

func (f *Formatter) CoordError(input string, size int) string {
	return f.render("err.coord", map[string]any{"Input": input, "Max": MaxCoord(size)})
}

func (f *Formatter) Unknown() string            { return f.render("err.unknown", nil) }
func (f *Formatter) Internal() string           { return f.render("err.internal", nil) }
func (f *Formatter) ArchiveUnavailable() string { return f.render("err.archive", nil) }

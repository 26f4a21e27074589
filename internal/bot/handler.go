// Package bot routes KakaoTalk commands to the lobby, the room manager and
// the archive, and answers through the presenter.
package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Omok-KakaoTalk-bot/internal/adapter/omokpresenter"
	"github.com/park285/Omok-KakaoTalk-bot/internal/archive"
	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
	"github.com/park285/Omok-KakaoTalk-bot/internal/irisfast"
	"github.com/park285/Omok-KakaoTalk-bot/internal/lobby"
	"github.com/park285/Omok-KakaoTalk-bot/internal/obslog"
	"github.com/park285/Omok-KakaoTalk-bot/internal/room"
	"github.com/park285/Omok-KakaoTalk-bot/pkg/omokdto"
)

const keyword = "오목"

// Deps wires the handler. Archive may be nil; 기록 then answers with the
// archive-unavailable message.
type Deps struct {
	Rooms        *room.Manager
	Lobby        *lobby.Manager
	Archive      archive.Repository
	Presenter    *omokpresenter.Presenter
	Formatter    *omokpresenter.Formatter
	Prefix       string
	HistoryLimit int
	// CommandTimeout bounds one command end to end. Zero means 15s.
	CommandTimeout time.Duration
}

type Handler struct {
	d        Deps
	commands map[string]commandFunc
}

type commandFunc func(ctx context.Context, meta omokdto.RequestMeta, args []string)

var actionCommands = map[string]gomoku.ActionType{
	"준비":    gomoku.ActionReady,
	"기권":    gomoku.ActionSurrender,
	"무승부":   gomoku.ActionDraw,
	"무승부수락": gomoku.ActionDrawAgree,
	"무승부거절": gomoku.ActionDrawDisagree,
	"무르기":   gomoku.ActionUndo,
	"무르기수락": gomoku.ActionUndoAgree,
	"무르기거절": gomoku.ActionUndoDisagree,
	"재대국":   gomoku.ActionRestart,
	"재대국수락": gomoku.ActionRestartAgree,
	"재대국거절": gomoku.ActionRestartDisagree,
}

func NewHandler(d Deps) *Handler {
	if d.HistoryLimit <= 0 {
		d.HistoryLimit = 10
	}
	if d.CommandTimeout <= 0 {
		d.CommandTimeout = 15 * time.Second
	}
	h := &Handler{d: d}
	h.commands = map[string]commandFunc{
		"방만들기": h.makeLobby,
		"참가":   h.joinLobby,
		"목록":   h.listLobby,
		"착수":   h.place,
		"현황":   h.status,
		"기록":   h.history,
		"도움":   h.help,
	}
	for name, t := range actionCommands {
		h.commands[name] = h.actionCommand(t)
	}
	return h
}

// Accepts reports whether text is addressed to this bot.
func (h *Handler) Accepts(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), h.d.Prefix+keyword)
}

// HandleMessage runs one chat command. It never returns an error: failures
// are answered in the chat and logged.
func (h *Handler) HandleMessage(ctx context.Context, msg *irisfast.Message) {
	if msg == nil || !h.Accepts(msg.Msg) {
		return
	}
	meta := omokdto.RequestMeta{Room: msg.Room, UserID: msg.UserID(), UserName: msg.SenderName()}
	if meta.UserName == "" {
		meta.UserName = meta.UserID
	}
	if meta.UserID == "" {
		obslog.L().Warn("bot_message_without_user", zap.String("chat_room", msg.Room))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, h.d.CommandTimeout)
	defer cancel()

	args := strings.Fields(strings.TrimPrefix(strings.TrimSpace(msg.Msg), h.d.Prefix+keyword))
	args = joinAnswer(args)
	if len(args) == 0 {
		h.help(ctx, meta, nil)
		return
	}
	obslog.L().Info("bot_command",
		zap.String("chat_room", meta.Room),
		zap.String("user_id", meta.UserID),
		zap.String("command", args[0]),
	)
	if cmd, ok := h.commands[args[0]]; ok {
		cmd(ctx, meta, args[1:])
		return
	}
	if omokpresenter.LooksLikeCoord(args[0]) {
		h.place(ctx, meta, args)
		return
	}
	h.reply(ctx, meta, h.d.Formatter.Unknown())
}

// joinAnswer folds "무승부 수락" into "무승부수락".
func joinAnswer(args []string) []string {
	if len(args) >= 2 && (args[1] == "수락" || args[1] == "거절") {
		if _, ok := actionCommands[args[0]+args[1]]; ok {
			return append([]string{args[0] + args[1]}, args[2:]...)
		}
	}
	return args
}

// OnTimeout announces a TIMEOUT dispatched by the turn timer.
func (h *Handler) OnTimeout(ctx context.Context, res *room.ActResult) {
	if res == nil || res.Room == nil {
		return
	}
	h.announce(ctx, res.Room.ChatRooms, res)
}

func (h *Handler) help(ctx context.Context, meta omokdto.RequestMeta, _ []string) {
	h.reply(ctx, meta, h.d.Formatter.Help())
}

func (h *Handler) makeLobby(ctx context.Context, meta omokdto.RequestMeta, _ []string) {
	res, err := h.d.Lobby.Make(ctx, meta.Room, meta.UserID, meta.UserName)
	if err != nil {
		h.lobbyFailure(ctx, meta, "lobby_make", err)
		return
	}
	h.reply(ctx, meta, h.d.Formatter.LobbyMade(meta.UserName, res.Code))
}

func (h *Handler) joinLobby(ctx context.Context, meta omokdto.RequestMeta, args []string) {
	code := ""
	if len(args) > 0 {
		code = args[0]
	}
	res, err := h.d.Lobby.Join(ctx, meta.Room, code, meta.UserID, meta.UserName)
	if err != nil {
		h.lobbyFailure(ctx, meta, "lobby_join", err)
		return
	}
	r, err := h.d.Rooms.Get(ctx, res.RoomID)
	if err != nil {
		h.failure(ctx, meta, "room_load", err)
		return
	}
	text := h.d.Formatter.LobbyStarted(omokpresenter.ToRoomView(r))
	h.logDelivery(r.ID, h.d.Presenter.Broadcast(ctx, targets(r, meta.Room), text))
}

func (h *Handler) listLobby(ctx context.Context, meta omokdto.RequestMeta, _ []string) {
	metas, err := h.d.Lobby.ListLobby(ctx)
	if err != nil {
		h.failure(ctx, meta, "lobby_list", err)
		return
	}
	h.reply(ctx, meta, h.d.Formatter.LobbyList(omokpresenter.ToLobbyEntries(metas)))
}

func (h *Handler) lobbyFailure(ctx context.Context, meta omokdto.RequestMeta, op string, err error) {
	if text, ok := h.d.Formatter.LobbyError(err); ok {
		h.reply(ctx, meta, text)
		return
	}
	h.failure(ctx, meta, op, err)
}

func (h *Handler) actionCommand(t gomoku.ActionType) commandFunc {
	return func(ctx context.Context, meta omokdto.RequestMeta, _ []string) {
		r, ok := h.currentRoom(ctx, meta)
		if !ok {
			return
		}
		h.act(ctx, meta, r, t, nil)
	}
}

func (h *Handler) place(ctx context.Context, meta omokdto.RequestMeta, args []string) {
	r, ok := h.currentRoom(ctx, meta)
	if !ok {
		return
	}
	input := strings.Join(args, "")
	if input == "" {
		h.reply(ctx, meta, h.d.Formatter.Rejected(gomoku.ReasonNoPosition))
		return
	}
	pos, err := omokpresenter.ParseCoord(input, r.Game.BoardSize)
	if err != nil {
		h.reply(ctx, meta, h.d.Formatter.CoordError(input, r.Game.BoardSize))
		return
	}
	h.act(ctx, meta, r, gomoku.ActionMove, &pos)
}

func (h *Handler) act(ctx context.Context, meta omokdto.RequestMeta, r *room.Room, t gomoku.ActionType, pos *gomoku.Position) {
	res, err := h.d.Rooms.Act(ctx, r.ID, meta.UserID, t, pos)
	switch {
	case err == nil:
		h.announce(ctx, targets(res.Room, meta.Room), res)
	case errors.Is(err, gomoku.ErrRejected):
		h.reply(ctx, meta, h.d.Formatter.Rejected(gomoku.RejectionReason(err)))
	case errors.Is(err, room.ErrRoomNotFound):
		h.reply(ctx, meta, h.d.Formatter.NoRoom())
	default:
		h.failure(ctx, meta, "room_act", err)
	}
}

// announce tells every chat of the room what happened. Board-changing
// outcomes carry the rendered board.
func (h *Handler) announce(ctx context.Context, chats []string, res *room.ActResult) {
	view := omokpresenter.ToRoomView(res.Room)
	summary := omokpresenter.ToActionSummary(res)
	text := h.d.Formatter.Action(view, summary)
	if withBoard(summary) {
		h.logDelivery(res.Room.ID, h.d.Presenter.Board(ctx, chats, res.Room, text))
		return
	}
	h.logDelivery(res.Room.ID, h.d.Presenter.Broadcast(ctx, chats, text))
}

func withBoard(s *omokdto.ActionSummary) bool {
	if s == nil {
		return false
	}
	if s.Finished {
		return true
	}
	switch s.Executor {
	case "ready_start", "move_normal", "undo_agree":
		return true
	}
	return false
}

func (h *Handler) status(ctx context.Context, meta omokdto.RequestMeta, _ []string) {
	r, ok := h.currentRoom(ctx, meta)
	if !ok {
		return
	}
	text := h.d.Formatter.Status(omokpresenter.ToRoomView(r))
	h.logDelivery(r.ID, h.d.Presenter.Board(ctx, []string{meta.Room}, r, text))
}

func (h *Handler) history(ctx context.Context, meta omokdto.RequestMeta, _ []string) {
	if h.d.Archive == nil {
		h.reply(ctx, meta, h.d.Formatter.ArchiveUnavailable())
		return
	}
	recs, err := h.d.Archive.RecentByPlayer(ctx, meta.UserID, h.d.HistoryLimit)
	if err != nil {
		obslog.L().Error("archive_recent_failed", zap.String("user_id", meta.UserID), zap.Error(err))
		h.reply(ctx, meta, h.d.Formatter.ArchiveUnavailable())
		return
	}
	var names map[string]string
	if r, err := h.d.Rooms.RoomOfUser(ctx, meta.UserID); err == nil {
		names = r.Names
	}
	nameOf := func(id string) string {
		if n := names[id]; n != "" {
			return n
		}
		return id
	}
	entries := omokpresenter.ToHistoryEntries(meta.UserID, recs)
	h.reply(ctx, meta, h.d.Formatter.History(meta.UserName, entries, nameOf))
}

// currentRoom loads the caller's room or answers that there is none.
func (h *Handler) currentRoom(ctx context.Context, meta omokdto.RequestMeta) (*room.Room, bool) {
	r, err := h.d.Rooms.RoomOfUser(ctx, meta.UserID)
	if errors.Is(err, room.ErrRoomNotFound) {
		h.reply(ctx, meta, h.d.Formatter.NoRoom())
		return nil, false
	}
	if err != nil {
		h.failure(ctx, meta, "room_load", err)
		return nil, false
	}
	return r, true
}

func (h *Handler) reply(ctx context.Context, meta omokdto.RequestMeta, text string) {
	if err := h.d.Presenter.Text(ctx, meta.Room, text); err != nil {
		obslog.L().Warn("bot_reply_failed", zap.String("chat_room", meta.Room), zap.Error(err))
	}
}

func (h *Handler) failure(ctx context.Context, meta omokdto.RequestMeta, op string, err error) {
	obslog.L().Error("bot_command_failed",
		zap.String("op", op),
		zap.String("chat_room", meta.Room),
		zap.String("user_id", meta.UserID),
		zap.Error(err),
	)
	if errors.Is(err, room.ErrArchiveUnavailable) {
		h.reply(ctx, meta, h.d.Formatter.ArchiveUnavailable())
		return
	}
	h.reply(ctx, meta, h.d.Formatter.Internal())
}

func (h *Handler) logDelivery(roomID string, err error) {
	if err != nil {
		obslog.Room(roomID).Warn("bot_delivery_failed", zap.Error(err))
	}
}

// targets is the room's chats plus the chat the command came from.
func targets(r *room.Room, chat string) []string {
	out := append([]string(nil), r.ChatRooms...)
	for _, c := range out {
		if c == chat {
			return out
		}
	}
	if chat != "" {
		out = append(out, chat)
	}
	return out
}

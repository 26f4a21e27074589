package room

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
	"github.com/park285/Omok-KakaoTalk-bot/internal/obslog"
)

// Manager is the only writer of room documents. It serialises actions per
// room in-process and relies on the store's version check across processes.
type Manager struct {
	store      *Store
	dispatcher *gomoku.Dispatcher
	locks      *roomLocks
	opts       Options
}

func NewManager(store *Store, dispatcher *gomoku.Dispatcher, opts Options) *Manager {
	if dispatcher == nil {
		dispatcher = gomoku.NewDispatcher(nil, nil)
	}
	return &Manager{
		store:      store,
		dispatcher: dispatcher,
		locks:      newRoomLocks(),
		opts:       opts.withDefaults(),
	}
}

// CreateRoom seats two players with a coin flip for colors and stores a
// WAITING game bound to chatRoom.
func (m *Manager) CreateRoom(ctx context.Context, chatRooms []string, p1, p2 Player) (*Room, error) {
	if m == nil || m.store == nil {
		return nil, fmt.Errorf("room manager not initialized")
	}
	p1.ID, p2.ID = strings.TrimSpace(p1.ID), strings.TrimSpace(p2.ID)
	if p1.ID == "" || p2.ID == "" {
		return nil, ErrInvalidArgs
	}
	if p1.ID == p2.ID {
		return nil, ErrSamePlayer
	}

	black, white := p1, p2
	if n, err := rand.Int(rand.Reader, big.NewInt(2)); err == nil && n.Int64() == 0 {
		black, white = p2, p1
	}

	now := m.dispatcher.Clock().Now()
	id := uuid.NewString()
	r := &Room{
		ID:        id,
		ChatRooms: compactRooms(chatRooms),
		Names: map[string]string{
			black.ID: strings.TrimSpace(black.Name),
			white.ID: strings.TrimSpace(white.Name),
		},
		Game:      gomoku.NewGame(uuid.NewString(), id, black.ID, white.ID, m.opts.Mode, m.opts.BoardSize, now),
		CreatedAt: now,
	}
	if err := m.store.Create(ctx, r); err != nil {
		return nil, err
	}
	obslog.Room(r.ID).Info("room_create",
		zap.String("game_id", r.Game.ID),
		zap.String("black_id", black.ID),
		zap.String("white_id", white.ID),
		zap.Strings("chat_rooms", r.ChatRooms),
		zap.Int("board_size", r.Game.BoardSize),
	)
	return r, nil
}

func turnPassed(out *gomoku.Outcome) bool {
	switch out.Executor {
	case "move_normal", "undo_agree":
		return true
	}
	return false
}

func compactRooms(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// Get loads a room by id.
func (m *Manager) Get(ctx context.Context, roomID string) (*Room, error) {
	return m.store.Load(ctx, roomID)
}

// RoomOfUser returns the latest room the user was seated in.
func (m *Manager) RoomOfUser(ctx context.Context, userID string) (*Room, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidArgs
	}
	id, err := m.store.RoomIDOfUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return m.store.Load(ctx, id)
}

// Act turns a user's intent into an Action and commits it. Rejections come
// back wrapping gomoku.ErrRejected with the room untouched.
func (m *Manager) Act(ctx context.Context, roomID, userID string, t gomoku.ActionType, pos *gomoku.Position) (*ActResult, error) {
	if strings.TrimSpace(roomID) == "" || strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidArgs
	}
	release := m.locks.lock(roomID)
	defer release()

	log := obslog.Room(roomID)
	for attempt := 0; attempt <= m.opts.MaxRetries; attempt++ {
		res, err := m.actOnce(ctx, roomID, userID, t, pos)
		if errors.Is(err, ErrVersionConflict) {
			log.Warn("room_action_conflict", zap.String("type", string(t)), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			if errors.Is(err, gomoku.ErrRejected) {
				log.Info("room_action_rejected",
					zap.String("user_id", userID),
					zap.String("type", string(t)),
					zap.String("reason", gomoku.RejectionReason(err)),
				)
			} else {
				log.Error("room_action_error", zap.String("user_id", userID), zap.String("type", string(t)), zap.Error(err))
			}
			return nil, err
		}
		log.Info("room_action",
			zap.String("user_id", userID),
			zap.String("type", string(t)),
			zap.String("executor", res.Outcome.Executor),
			zap.Int64("version", res.Room.Version()),
			zap.String("status", string(res.Room.Game.Status)),
		)
		return res, nil
	}
	return nil, fmt.Errorf("act %s on %s: %w", t, roomID, ErrVersionConflict)
}

func (m *Manager) actOnce(ctx context.Context, roomID, userID string, t gomoku.ActionType, pos *gomoku.Position) (*ActResult, error) {
	r, err := m.store.Load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	g := r.Game
	now := m.dispatcher.Clock().Now()
	a := gomoku.NewAction(t, userID, g.ColorOf(userID), now)
	if pos != nil {
		p := *pos
		a.Position = &p
	}

	expected := g.Version
	wasPlaying := g.Status == gomoku.StatusPlaying
	out, err := m.dispatcher.Dispatch(g, a)
	if err != nil {
		return nil, err
	}

	var fx Effects
	switch {
	case out.Archived != nil:
		fx.Archive = append(fx.Archive, out.Archived)
	case out.Finished:
		// Reported now; an agreed restart later upserts the same record id.
		fx.Archive = append(fx.Archive, gomoku.Archive(g, now))
	}
	if g.Status == gomoku.StatusPlaying {
		// Only a new turn restarts the clock; proposals and answers leave it.
		if !wasPlaying || turnPassed(out) {
			r.TurnStartedAt = now
			if m.opts.TurnTimeout > 0 {
				fx.Deadline = now.Add(m.opts.TurnTimeout)
			}
		} else {
			fx.KeepDeadline = true
		}
	}

	if err := m.store.Save(ctx, r, expected, fx); err != nil {
		return nil, err
	}
	for _, rec := range fx.Archive {
		obslog.Room(roomID).Info("room_archive_enqueue",
			zap.String("record_id", rec.ID),
			zap.String("end_reason", string(rec.EndReason)),
			zap.Int("winner", int(rec.Winner)),
		)
	}
	return &ActResult{Room: r, Action: a, Outcome: out}, nil
}

package room

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
	"github.com/park285/Omok-KakaoTalk-bot/internal/obslog"
)

// TimeoutHandler is told about every TIMEOUT the timer committed.
type TimeoutHandler func(ctx context.Context, res *ActResult)

// TurnTimer feeds TIMEOUT actions for rooms whose player on turn let the
// deadline pass.
type TurnTimer struct {
	mgr       *Manager
	onTimeout TimeoutHandler
}

func NewTurnTimer(mgr *Manager, onTimeout TimeoutHandler) *TurnTimer {
	return &TurnTimer{mgr: mgr, onTimeout: onTimeout}
}

// Poll dispatches TIMEOUT for every room past its deadline and returns how
// many timed out.
func (t *TurnTimer) Poll(ctx context.Context) (int, error) {
	timeout := t.mgr.opts.TurnTimeout
	if timeout <= 0 {
		return 0, nil
	}
	store := t.mgr.store
	now := t.mgr.dispatcher.Clock().Now()
	due, err := store.dueRooms(ctx, now)
	if err != nil {
		return 0, err
	}

	fired := 0
	for _, roomID := range due {
		claimed, err := store.claimDeadline(ctx, roomID)
		if err != nil {
			return fired, err
		}
		if !claimed {
			continue
		}
		r, err := store.Load(ctx, roomID)
		if errors.Is(err, ErrRoomNotFound) {
			continue
		}
		if err != nil {
			t.requeue(ctx, roomID, now)
			return fired, err
		}
		g := r.Game
		if g.Status != gomoku.StatusPlaying || g.Snapshot == nil {
			continue
		}
		// The turn changed after the deadline was read; push it back.
		if expiry := r.turnExpiry(timeout); now.Before(expiry) {
			if err := store.setDeadline(ctx, roomID, expiry); err != nil {
				return fired, err
			}
			continue
		}

		player := g.PlayerOf(g.Snapshot.CurrentTurn)
		res, err := t.mgr.Act(ctx, roomID, player, gomoku.ActionTimeout, nil)
		if err != nil {
			if errors.Is(err, gomoku.ErrRejected) {
				continue
			}
			obslog.Room(roomID).Error("turn_timeout_error", zap.String("user_id", player), zap.Error(err))
			t.requeue(ctx, roomID, now)
			continue
		}
		fired++
		obslog.Room(roomID).Info("turn_timeout", zap.String("user_id", player))
		if t.onTimeout != nil {
			t.onTimeout(ctx, res)
		}
	}
	return fired, nil
}

// requeue puts a claimed deadline back so the next poll retries the room.
func (t *TurnTimer) requeue(ctx context.Context, roomID string, at time.Time) {
	if err := t.mgr.store.setDeadline(ctx, roomID, at); err != nil {
		obslog.Room(roomID).Error("turn_timeout_requeue_failed", zap.Error(err))
	}
}

// Run polls every interval until ctx is cancelled.
func (t *TurnTimer) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := t.Poll(ctx); err != nil && ctx.Err() == nil {
				obslog.L().Warn("turn_timer_poll_error", zap.Error(err))
			}
		}
	}
}

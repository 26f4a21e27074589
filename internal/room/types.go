package room

import (
	"errors"
	"time"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
)

var (
	ErrInvalidArgs        = errors.New("room: invalid arguments")
	ErrRoomNotFound       = errors.New("room: not found or expired")
	ErrVersionConflict    = errors.New("room: version conflict")
	ErrArchiveUnavailable = errors.New("room: archive sink unavailable")
	ErrSamePlayer         = errors.New("room: both seats would be the same player")
)

// Player is a seated participant as seen by the chat layer.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Room is the Redis document: the game aggregate plus the chat context it
// is played in. Its version is the aggregate's version.
type Room struct {
	ID        string            `json:"id"`
	ChatRooms []string          `json:"chat_rooms"`
	Names     map[string]string `json:"names"`
	Game      *gomoku.Game      `json:"game"`
	CreatedAt time.Time         `json:"created_at"`
	// TurnStartedAt is when the player on turn got the move.
	TurnStartedAt time.Time `json:"turn_started_at"`
}

func (r *Room) Version() int64 {
	if r == nil || r.Game == nil {
		return 0
	}
	return r.Game.Version
}

// NameOf returns the display name of a participant, falling back to the id.
func (r *Room) NameOf(userID string) string {
	if r != nil {
		if n, ok := r.Names[userID]; ok && n != "" {
			return n
		}
	}
	return userID
}

// turnExpiry is when the player on turn runs out of time.
func (r *Room) turnExpiry(timeout time.Duration) time.Time {
	started := r.TurnStartedAt
	if started.IsZero() {
		started = r.Game.UpdatedAt
	}
	return started.Add(timeout)
}

// ActResult is what a successful Act produced.
type ActResult struct {
	Room    *Room
	Action  gomoku.Action
	Outcome *gomoku.Outcome
}

// Options tunes the manager.
type Options struct {
	BoardSize   int
	Mode        gomoku.Mode
	TurnTimeout time.Duration
	// MaxRetries bounds re-reads after a version conflict.
	MaxRetries int
}

func (o Options) withDefaults() Options {
	if o.BoardSize <= 0 {
		o.BoardSize = gomoku.DefaultBoardSize
	}
	if o.Mode == "" {
		o.Mode = gomoku.ModeCasual
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.TurnTimeout < 0 {
		o.TurnTimeout = 0
	}
	return o
}

package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
)

const defaultRoomTTL = 24 * time.Hour

// Store persists rooms as JSON documents with a per-user index, the archive
// outbox and the turn deadline set.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultRoomTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// NewRedisClient parses REDIS_URL and pings the server.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for room store")
	}
	opts, err := redis.ParseURL(strings.TrimSpace(redisURL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func roomKey(id string) string { return "omok:room:" + strings.TrimSpace(id) }
func userIdxKey(uid string) string { return "omok:index:user:" + strings.TrimSpace(uid) }
func outboxKey() string { return "omok:archive:outbox" }
func deadLetterKey() string { return "omok:archive:dead" }
func deadlinesKey() string { return "omok:deadlines" }

// Effects are written in the same transaction as the room document.
type Effects struct {
	Archive []*gomoku.HistoryRecord
	// Deadline is the next turn deadline; zero clears it unless
	// KeepDeadline is set.
	Deadline     time.Time
	KeepDeadline bool
}

// Create stores a new room and points both players' index at it.
func (s *Store) Create(ctx context.Context, r *Room) error {
	if r == nil || r.Game == nil || strings.TrimSpace(r.ID) == "" {
		return ErrInvalidArgs
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal room: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, roomKey(r.ID), raw, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("room %s already exists", r.ID)
	}
	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, uid := range []string{r.Game.BlackPlayerID, r.Game.WhitePlayerID} {
			pipe.Set(ctx, userIdxKey(uid), r.ID, s.ttl)
		}
		return nil
	})
	return err
}

// Load returns the room or ErrRoomNotFound.
func (s *Store) Load(ctx context.Context, id string) (*Room, error) {
	raw, err := s.rdb.Get(ctx, roomKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRoom(raw)
}

func decodeRoom(raw []byte) (*Room, error) {
	var r Room
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode room: %w", err)
	}
	if r.Game == nil {
		return nil, fmt.Errorf("decode room %s: missing game", r.ID)
	}
	return &r, nil
}

// Save writes r only if the stored version still equals expected. The room,
// any archive outbox entries and the deadline change commit together.
func (s *Store) Save(ctx context.Context, r *Room, expected int64, fx Effects) error {
	if r == nil || r.Game == nil {
		return ErrInvalidArgs
	}
	key := roomKey(r.ID)
	newRaw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal room: %w", err)
	}
	entries := make([]any, 0, len(fx.Archive))
	for _, rec := range fx.Archive {
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal archive record: %w", err)
		}
		entries = append(entries, b)
	}

	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		cur, err := decodeRoom(raw)
		if err != nil {
			return err
		}
		if cur.Version() != expected {
			return ErrVersionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newRaw, s.ttl)
			for _, uid := range []string{r.Game.BlackPlayerID, r.Game.WhitePlayerID} {
				pipe.Expire(ctx, userIdxKey(uid), s.ttl)
			}
			if len(entries) > 0 {
				pipe.LPush(ctx, outboxKey(), entries...)
			}
			switch {
			case !fx.Deadline.IsZero():
				pipe.ZAdd(ctx, deadlinesKey(), redis.Z{Score: float64(fx.Deadline.UnixMilli()), Member: r.ID})
			case !fx.KeepDeadline:
				pipe.ZRem(ctx, deadlinesKey(), r.ID)
			}
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionConflict
	}
	return err
}

// RoomIDOfUser returns the id of the user's latest room.
func (s *Store) RoomIDOfUser(ctx context.Context, userID string) (string, error) {
	id, err := s.rdb.Get(ctx, userIdxKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrRoomNotFound
	}
	return id, err
}

// oldestOutbox peeks the oldest pending archive entry without removing it.
func (s *Store) oldestOutbox(ctx context.Context) ([]byte, error) {
	raw, err := s.rdb.LIndex(ctx, outboxKey(), -1).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return raw, err
}

func (s *Store) ackOutbox(ctx context.Context, raw []byte) error {
	return s.rdb.LRem(ctx, outboxKey(), -1, raw).Err()
}

func (s *Store) deadLetter(ctx context.Context, raw []byte) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, deadLetterKey(), raw)
		pipe.LRem(ctx, outboxKey(), -1, raw)
		return nil
	})
	return err
}

// OutboxLen reports how many archive entries are waiting.
func (s *Store) OutboxLen(ctx context.Context) (int64, error) {
	return s.rdb.LLen(ctx, outboxKey()).Result()
}

// dueRooms lists rooms whose deadline is at or before now.
func (s *Store) dueRooms(ctx context.Context, now time.Time) ([]string, error) {
	return s.rdb.ZRangeByScore(ctx, deadlinesKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
}

// claimDeadline removes a due entry; false means another poller took it.
func (s *Store) claimDeadline(ctx context.Context, roomID string) (bool, error) {
	n, err := s.rdb.ZRem(ctx, deadlinesKey(), roomID).Result()
	return n > 0, err
}

func (s *Store) setDeadline(ctx context.Context, roomID string, at time.Time) error {
	return s.rdb.ZAdd(ctx, deadlinesKey(), redis.Z{Score: float64(at.UnixMilli()), Member: roomID}).Err()
}

// Deadline returns the pending turn deadline of a room, if any.
func (s *Store) Deadline(ctx context.Context, roomID string) (time.Time, bool, error) {
	score, err := s.rdb.ZScore(ctx, deadlinesKey(), roomID).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(int64(score)).UTC(), true, nil
}

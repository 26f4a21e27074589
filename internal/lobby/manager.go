package lobby

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
	"github.com/park285/Omok-KakaoTalk-bot/internal/obslog"
	"github.com/park285/Omok-KakaoTalk-bot/internal/room"
)

// Manager pairs two players through a short code and hands them to the room
// manager once the second one joins.
type Manager struct {
	rdb   *redis.Client
	store *Store
	rooms *room.Manager
}

func NewManager(rdb *redis.Client, rooms *room.Manager) *Manager {
	return &Manager{rdb: rdb, store: NewStore(rdb), rooms: rooms}
}

func (m *Manager) Make(ctx context.Context, chatRoom, userID, userName string) (*MakeResult, error) {
	chatRoom, userID = strings.TrimSpace(chatRoom), strings.TrimSpace(userID)
	if chatRoom == "" || userID == "" {
		return nil, ErrInvalidArgs
	}
	if err := m.ensureIdle(ctx, userID); err != nil {
		return nil, err
	}
	if m.hasOpenLobby(ctx, userID) {
		return nil, ErrCreatorHasLobby
	}

	for i := 0; i < 5; i++ {
		code, err := codeGen()
		if err != nil {
			return nil, err
		}
		ok, err := m.rdb.SetNX(ctx, m.store.keyMeta(code), []byte("{}"), ttlLobby).Result()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		meta := &Meta{
			Code:        code,
			State:       StateLobby,
			CreatedAt:   time.Now(),
			CreatorID:   userID,
			CreatorName: strings.TrimSpace(userName),
			CreatorRoom: chatRoom,
		}
		if err := m.store.SaveMeta(ctx, meta); err != nil {
			return nil, err
		}
		if err := m.store.AddParticipant(ctx, code, userID); err != nil {
			return nil, err
		}
		if err := m.store.AddOpen(ctx, code); err != nil {
			return nil, err
		}
		obslog.L().Info("lobby_make", zap.String("code", code), zap.String("chat_room", chatRoom), zap.String("creator_id", userID))
		return &MakeResult{Code: code, Meta: meta}, nil
	}
	return nil, fmt.Errorf("failed to allocate lobby code")
}

func (m *Manager) Join(ctx context.Context, chatRoom, code, userID, userName string) (*JoinResult, error) {
	chatRoom, userID = strings.TrimSpace(chatRoom), strings.TrimSpace(userID)
	code = strings.ToUpper(strings.TrimSpace(code))
	if chatRoom == "" || code == "" || userID == "" {
		return nil, ErrInvalidArgs
	}
	meta, err := m.store.LoadMeta(ctx, code)
	if err != nil {
		return nil, err
	}
	if meta == nil || meta.Code == "" {
		return nil, ErrChannelGone
	}
	if meta.State != StateLobby {
		return nil, ErrChannelActive
	}
	if meta.CreatorID == userID {
		return nil, ErrOwnLobby
	}
	if err := m.ensureIdle(ctx, userID); err != nil {
		return nil, err
	}

	partKey := m.store.keyParticipants(code)
	err = m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cnt, err := tx.SCard(ctx, partKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cnt >= 2 {
			return ErrFull
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SAdd(ctx, partKey, userID)
			pipe.Expire(ctx, partKey, ttlLobby)
			pipe.SAdd(ctx, m.store.keyUserIdx(userID), code)
			pipe.Expire(ctx, m.store.keyUserIdx(userID), ttlLobby)
			return nil
		})
		return err
	}, partKey)
	if errors.Is(err, redis.TxFailedErr) {
		err = ErrFull
	}
	if err != nil {
		obslog.L().Warn("lobby_join_error", zap.String("code", code), zap.String("chat_room", chatRoom), zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	r, err := m.rooms.CreateRoom(ctx, []string{meta.CreatorRoom, chatRoom},
		room.Player{ID: meta.CreatorID, Name: meta.CreatorName},
		room.Player{ID: userID, Name: strings.TrimSpace(userName)},
	)
	if err != nil {
		return nil, err
	}

	meta.State = StateActive
	meta.JoinerID = userID
	meta.JoinerName = strings.TrimSpace(userName)
	meta.JoinerRoom = chatRoom
	meta.RoomID = r.ID
	if err := m.store.SaveMeta(ctx, meta); err != nil {
		return nil, err
	}
	_ = m.store.RemoveOpen(ctx, code)
	obslog.L().Info("lobby_start_room",
		zap.String("code", code),
		zap.String("room_id", r.ID),
		zap.String("black_id", r.Game.BlackPlayerID),
		zap.String("white_id", r.Game.WhitePlayerID),
	)
	return &JoinResult{Started: true, RoomID: r.ID, Meta: meta}, nil
}

// ListLobby returns lobbies still waiting for a second player.
func (m *Manager) ListLobby(ctx context.Context) ([]*Meta, error) { return m.store.ListOpen(ctx) }

// ensureIdle rejects users whose latest game is being played. A WAITING room
// nobody readied in is abandoned by making or joining a new lobby.
func (m *Manager) ensureIdle(ctx context.Context, userID string) error {
	r, err := m.rooms.RoomOfUser(ctx, userID)
	if errors.Is(err, room.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if r.Game.Status == gomoku.StatusPlaying {
		return ErrPlayerBusy
	}
	return nil
}

func (m *Manager) hasOpenLobby(ctx context.Context, userID string) bool {
	codes, err := m.store.CodesByUser(ctx, userID)
	if err != nil {
		return false
	}
	for _, c := range codes {
		meta, _ := m.store.LoadMeta(ctx, c)
		if meta != nil && meta.State == StateLobby && meta.CreatorID == userID {
			return true
		}
	}
	return false
}

package lobby

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
	"github.com/park285/Omok-KakaoTalk-bot/internal/room"
)

func newTestManager(t *testing.T) (*Manager, *room.Manager) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rooms := room.NewManager(room.NewStore(rdb, time.Hour), gomoku.NewDispatcher(nil, nil), room.Options{})
	return NewManager(rdb, rooms), rooms
}

func TestMakeAndJoinStartsRoom(t *testing.T) {
	m, rooms := newTestManager(t)
	ctx := context.Background()

	mk, err := m.Make(ctx, "chatA", "u1", "Alice")
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if !strings.HasPrefix(mk.Code, "OM-") || len(mk.Code) != 9 {
		t.Fatalf("code format: %q", mk.Code)
	}
	open, err := m.ListLobby(ctx)
	if err != nil || len(open) != 1 || open[0].Code != mk.Code {
		t.Fatalf("ListLobby: %v %v", open, err)
	}

	jr, err := m.Join(ctx, "chatB", strings.ToLower(mk.Code), "u2", "Bob")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !jr.Started || jr.RoomID == "" || jr.Meta.State != StateActive {
		t.Fatalf("join result: %+v", jr)
	}
	r, err := rooms.Get(ctx, jr.RoomID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(r.ChatRooms) != 2 || r.Game.Status != gomoku.StatusWaiting {
		t.Fatalf("room: chats=%v status=%s", r.ChatRooms, r.Game.Status)
	}
	if open, _ := m.ListLobby(ctx); len(open) != 0 {
		t.Fatalf("started lobby still listed: %d", len(open))
	}
}

func TestJoinRejections(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Join(ctx, "chatB", "OM-NOPE00", "u2", "Bob"); !errors.Is(err, ErrChannelGone) {
		t.Fatalf("unknown code: %v", err)
	}
	mk, err := m.Make(ctx, "chatA", "u1", "Alice")
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if _, err := m.Join(ctx, "chatA", mk.Code, "u1", "Alice"); !errors.Is(err, ErrOwnLobby) {
		t.Fatalf("own lobby: %v", err)
	}
	if _, err := m.Join(ctx, "chatB", mk.Code, "u2", "Bob"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := m.Join(ctx, "chatC", mk.Code, "u3", "Carol"); !errors.Is(err, ErrChannelActive) {
		t.Fatalf("started lobby: %v", err)
	}
	if _, err := m.Join(ctx, "", mk.Code, "u3", "Carol"); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("empty chat: %v", err)
	}
}

func TestMakeRejectsBusyPlayers(t *testing.T) {
	m, rooms := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Make(ctx, "chatA", "u1", "Alice"); err != nil {
		t.Fatalf("Make: %v", err)
	}
	if _, err := m.Make(ctx, "chatA", "u1", "Alice"); !errors.Is(err, ErrCreatorHasLobby) {
		t.Fatalf("second lobby: %v", err)
	}

	r, err := rooms.CreateRoom(ctx, []string{"chatZ"}, room.Player{ID: "p1"}, room.Player{ID: "p2"})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	for _, uid := range []string{"p1", "p2"} {
		if _, err := rooms.Act(ctx, r.ID, uid, gomoku.ActionReady, nil); err != nil {
			t.Fatalf("ready: %v", err)
		}
	}
	if _, err := m.Make(ctx, "chatZ", "p1", ""); !errors.Is(err, ErrPlayerBusy) {
		t.Fatalf("busy creator: %v", err)
	}

	// A finished game frees both players.
	if _, err := rooms.Act(ctx, r.ID, "p2", gomoku.ActionSurrender, nil); err != nil {
		t.Fatalf("surrender: %v", err)
	}
	if _, err := m.Make(ctx, "chatZ", "p1", ""); err != nil {
		t.Fatalf("Make after finish: %v", err)
	}
}

func TestUnreadiedRoomDoesNotBlockNewLobby(t *testing.T) {
	m, rooms := newTestManager(t)
	ctx := context.Background()

	mk, err := m.Make(ctx, "chatA", "u1", "Alice")
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	jr, err := m.Join(ctx, "chatB", mk.Code, "u2", "Bob")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}

	// Nobody readied; u1 walks away and opens another lobby.
	next, err := m.Make(ctx, "chatA", "u1", "Alice")
	if err != nil {
		t.Fatalf("Make with a waiting room: %v", err)
	}
	jr2, err := m.Join(ctx, "chatC", next.Code, "u3", "Carol")
	if err != nil {
		t.Fatalf("Join second lobby: %v", err)
	}
	cur, err := rooms.RoomOfUser(ctx, "u1")
	if err != nil || cur.ID != jr2.RoomID || cur.ID == jr.RoomID {
		t.Fatalf("u1 should be indexed to the new room: %v %v", cur, err)
	}

	// u2 is left in the abandoned room and may start over too.
	if _, err := m.Make(ctx, "chatB", "u2", "Bob"); err != nil {
		t.Fatalf("Make for abandoned partner: %v", err)
	}
}

func TestConcurrentJoinAdmitsOne(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	mk, err := m.Make(ctx, "chatA", "u1", "Alice")
	if err != nil {
		t.Fatalf("Make: %v", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	started := 0
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uid := "joiner" + string(rune('a'+i))
			if _, err := m.Join(ctx, "chatB", mk.Code, uid, uid); err == nil {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if started != 1 {
		t.Fatalf("expected exactly one joiner, got %d", started)
	}
}

package bot

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/park285/Omok-KakaoTalk-bot/internal/adapter/omokpresenter"
	"github.com/park285/Omok-KakaoTalk-bot/internal/archive"
	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
	"github.com/park285/Omok-KakaoTalk-bot/internal/irisfast"
	"github.com/park285/Omok-KakaoTalk-bot/internal/lobby"
	"github.com/park285/Omok-KakaoTalk-bot/internal/msgcat"
	"github.com/park285/Omok-KakaoTalk-bot/internal/room"
)

type sent struct{ chat, kind, data string }

type recorder struct {
	mu  sync.Mutex
	out []sent
}

func (r *recorder) SendText(_ context.Context, chat, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = append(r.out, sent{chat, "text", message})
	return nil
}

func (r *recorder) SendImage(_ context.Context, chat, img string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = append(r.out, sent{chat, "image", img})
	return nil
}

// take returns and clears everything sent so far.
func (r *recorder) take() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.out
	r.out = nil
	return out
}

type harness struct {
	h     *Handler
	rec   *recorder
	rooms *room.Manager
	repo  archive.Repository
	store *room.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat: %v", err)
	}
	store := room.NewStore(rdb, time.Hour)
	rooms := room.NewManager(store, gomoku.NewDispatcher(nil, nil), room.Options{})
	rec := &recorder{}
	repo := archive.NewMemoryRepository()
	h := NewHandler(Deps{
		Rooms:     rooms,
		Lobby:     lobby.NewManager(rdb, rooms),
		Archive:   repo,
		Presenter: omokpresenter.NewPresenter(rec, nil),
		Formatter: omokpresenter.NewFormatter(cat, "!"),
		Prefix:    "!",
	})
	return &harness{h: h, rec: rec, rooms: rooms, repo: repo, store: store}
}

func (hs *harness) say(chat, user, text string) []sent {
	name := user
	hs.h.HandleMessage(context.Background(), &irisfast.Message{
		Msg:    text,
		Room:   chat,
		Sender: &name,
		JSON:   &irisfast.MessageJSON{UserID: user},
	})
	return hs.rec.take()
}

func joined(out []sent) string {
	var parts []string
	for _, s := range out {
		if s.kind == "text" {
			parts = append(parts, s.chat+"|"+s.data)
		}
	}
	return strings.Join(parts, "\n")
}

var codeRe = regexp.MustCompile(`OM-[A-Z0-9]{6}`)

// seatedPlaying pairs alice (chatA) and bob (chatB) and readies both.
func (hs *harness) seatedPlaying(t *testing.T) *room.Room {
	t.Helper()
	out := hs.say("chatA", "alice", "!오목 방만들기")
	code := codeRe.FindString(joined(out))
	if code == "" {
		t.Fatalf("no lobby code in %q", joined(out))
	}
	out = hs.say("chatB", "bob", "!오목 참가 "+code)
	if len(out) != 2 || !strings.Contains(out[0].data, "대국방이 열렸습니다") {
		t.Fatalf("join announcement: %+v", out)
	}
	hs.say("chatA", "alice", "!오목 준비")
	out = hs.say("chatB", "bob", "!오목 준비")
	if !strings.Contains(joined(out), "대국 시작") {
		t.Fatalf("start announcement: %q", joined(out))
	}
	r, err := hs.rooms.RoomOfUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("RoomOfUser: %v", err)
	}
	return r
}

func chatOf(user string) string {
	if user == "alice" {
		return "chatA"
	}
	return "chatB"
}

func TestIgnoresOtherPrefixes(t *testing.T) {
	hs := newHarness(t)
	if out := hs.say("chatA", "alice", "안녕하세요"); len(out) != 0 {
		t.Fatalf("unexpected reply: %+v", out)
	}
	if out := hs.say("chatA", "alice", "!체스 시작"); len(out) != 0 {
		t.Fatalf("unexpected reply: %+v", out)
	}
	out := hs.say("chatA", "alice", "!오목")
	if len(out) != 1 || !strings.Contains(out[0].data, "[오목 명령어]") {
		t.Fatalf("bare keyword should show help: %+v", out)
	}
	if out := hs.say("chatA", "alice", "!오목 춤추기"); !strings.Contains(joined(out), "알 수 없는 명령") {
		t.Fatalf("unknown command: %q", joined(out))
	}
}

func TestFullGameFlow(t *testing.T) {
	hs := newHarness(t)
	r := hs.seatedPlaying(t)
	black, white := r.Game.BlackPlayerID, r.Game.WhitePlayerID

	out := hs.say(chatOf(black), black, "!오목 h8")
	text := joined(out)
	if !strings.Contains(text, "H8 착수") || !strings.Contains(text, "chatA|") || !strings.Contains(text, "chatB|") {
		t.Fatalf("move broadcast: %q", text)
	}

	if text := joined(hs.say(chatOf(white), white, "!오목 착수 H8")); !strings.Contains(text, "이미 돌이 놓인 자리") {
		t.Fatalf("occupied rejection: %q", text)
	}
	if text := joined(hs.say(chatOf(black), black, "!오목 H9")); !strings.Contains(text, "상대의 차례") {
		t.Fatalf("turn rejection: %q", text)
	}
	if text := joined(hs.say(chatOf(white), white, "!오목 Z99")); !strings.Contains(text, "좌표를 이해하지 못했습니다") || !strings.Contains(text, "O15") {
		t.Fatalf("coordinate error: %q", text)
	}

	if text := joined(hs.say(chatOf(white), white, "!오목 무승부")); !strings.Contains(text, "무승부를 제안") {
		t.Fatalf("draw proposal: %q", text)
	}
	if text := joined(hs.say(chatOf(black), black, "!오목 무승부 거절")); !strings.Contains(text, "거절") {
		t.Fatalf("draw decline: %q", text)
	}

	if text := joined(hs.say(chatOf(white), white, "!오목 기권")); !strings.Contains(text, "기권했습니다") {
		t.Fatalf("surrender: %q", text)
	}
	if text := joined(hs.say(chatOf(black), black, "!오목 현황")); !strings.Contains(text, "종료 (기권)") {
		t.Fatalf("status after finish: %q", text)
	}

	// Deliver the outbox, then the record is listed.
	if _, err := room.NewArchiveDrainer(hs.store, hs.repo, 10).DrainOnce(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	text = joined(hs.say(chatOf(black), black, "!오목 기록"))
	if !strings.Contains(text, "최근 대국 1건") || !strings.Contains(text, "승") {
		t.Fatalf("history: %q", text)
	}

	hs.say(chatOf(white), white, "!오목 재대국")
	text = joined(hs.say(chatOf(black), black, "!오목 재대국수락"))
	if !strings.Contains(text, "2번째 대국") {
		t.Fatalf("restart: %q", text)
	}
	next, _ := hs.rooms.RoomOfUser(context.Background(), black)
	if next.Game.BlackPlayerID != white {
		t.Fatalf("colors should swap on restart")
	}
}

func TestUndoFlow(t *testing.T) {
	hs := newHarness(t)
	r := hs.seatedPlaying(t)
	black, white := r.Game.BlackPlayerID, r.Game.WhitePlayerID

	hs.say(chatOf(black), black, "!오목 H8")
	hs.say(chatOf(white), white, "!오목 H9")
	hs.say(chatOf(black), black, "!오목 무르기")
	text := joined(hs.say(chatOf(white), white, "!오목 무르기수락"))
	if !strings.Contains(text, "무르기 완료") {
		t.Fatalf("undo: %q", text)
	}
	got, _ := hs.rooms.Get(context.Background(), r.ID)
	if got.Game.MoveCount() != 0 {
		t.Fatalf("moves after undo=%d", got.Game.MoveCount())
	}
}

func TestCommandsWithoutRoom(t *testing.T) {
	hs := newHarness(t)
	for _, cmd := range []string{"!오목 준비", "!오목 H8", "!오목 현황", "!오목 재대국수락"} {
		if text := joined(hs.say("chatA", "nobody", cmd)); !strings.Contains(text, "참여 중인 오목 대국이 없습니다") {
			t.Errorf("%s: %q", cmd, text)
		}
	}
	if text := joined(hs.say("chatA", "nobody", "!오목 기록")); !strings.Contains(text, "저장된 대국 기록이 없습니다") {
		t.Fatalf("empty history: %q", text)
	}
	if text := joined(hs.say("chatA", "nobody", "!오목 참가")); !strings.Contains(text, "코드를 함께 입력") {
		t.Fatalf("join without code: %q", text)
	}
	if text := joined(hs.say("chatA", "nobody", "!오목 목록")); !strings.Contains(text, "대기 중인 오목방이 없습니다") {
		t.Fatalf("empty list: %q", text)
	}
}

func TestOnTimeoutAnnounces(t *testing.T) {
	hs := newHarness(t)
	r := hs.seatedPlaying(t)
	res, err := hs.rooms.Act(context.Background(), r.ID, r.Game.BlackPlayerID, gomoku.ActionTimeout, nil)
	if err != nil {
		t.Fatalf("timeout: %v", err)
	}
	hs.h.OnTimeout(context.Background(), res)
	out := hs.rec.take()
	if len(out) != 2 || !strings.Contains(out[0].data, "시간이 초과") {
		t.Fatalf("timeout announcement: %+v", out)
	}
}

func TestJoinAnswer(t *testing.T) {
	got := joinAnswer([]string{"재대국", "수락"})
	if len(got) != 1 || got[0] != "재대국수락" {
		t.Fatalf("joinAnswer: %v", got)
	}
	got = joinAnswer([]string{"참가", "수락"})
	if len(got) != 2 {
		t.Fatalf("only action commands fold: %v", got)
	}
}

package archive

import (
	"context"
	"testing"
	"time"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleRecord(gameID string, count int, black, white string, archivedAt time.Time) *gomoku.HistoryRecord {
	snap := gomoku.NewSnapshot(15, archivedAt)
	snap.Board.Set(gomoku.Position{Row: 7, Col: 7}, gomoku.Black)
	snap.TotalMoves = 1
	snap.Winner = gomoku.WinnerWhite
	return &gomoku.HistoryRecord{
		ID:            gomoku.RecordID(gameID, count),
		GameID:        gameID,
		RoomID:        "room-" + gameID,
		GameCount:     count,
		BlackPlayerID: black,
		WhitePlayerID: white,
		Mode:          gomoku.ModeCasual,
		EndReason:     gomoku.EndSurrender,
		Winner:        gomoku.WinnerWhite,
		FinalSnapshot: snap,
		Actions: []gomoku.Action{
			gomoku.NewMove(black, gomoku.Black, gomoku.Position{Row: 7, Col: 7}, archivedAt),
			gomoku.NewAction(gomoku.ActionSurrender, black, gomoku.Black, archivedAt),
		},
		StartedAt:  archivedAt.Add(-time.Minute),
		ArchivedAt: archivedAt,
	}
}

func repositories(t *testing.T) map[string]Repository {
	t.Helper()
	sqlRepo, err := Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlRepo.Close() })
	return map[string]Repository{
		"sqlite": sqlRepo,
		"memory": NewMemoryRepository(),
	}
}

func TestSaveAndGet(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := sampleRecord("g1", 1, "u1", "u2", base)
			if err := repo.SaveRecord(ctx, rec); err != nil {
				t.Fatalf("SaveRecord: %v", err)
			}
			got, err := repo.Get(ctx, rec.ID)
			if err != nil || got == nil {
				t.Fatalf("Get: rec=%v err=%v", got, err)
			}
			if got.EndReason != gomoku.EndSurrender || got.Winner != gomoku.WinnerWhite || got.WinnerPlayerID() != "u2" {
				t.Fatalf("decoded record: %+v", got)
			}
			if len(got.Actions) != 2 || got.Actions[0].Position == nil || *got.Actions[0].Position != (gomoku.Position{Row: 7, Col: 7}) {
				t.Fatalf("actions: %+v", got.Actions)
			}
			if got.FinalSnapshot == nil || got.FinalSnapshot.Board.At(gomoku.Position{Row: 7, Col: 7}) != gomoku.Black {
				t.Fatalf("final snapshot lost")
			}
			if !got.ArchivedAt.Equal(base) || !got.StartedAt.Equal(base.Add(-time.Minute)) {
				t.Fatalf("times: started=%v archived=%v", got.StartedAt, got.ArchivedAt)
			}

			missing, err := repo.Get(ctx, "nope#1")
			if err != nil || missing != nil {
				t.Fatalf("missing record: %v %v", missing, err)
			}
		})
	}
}

func TestSaveIsUpsert(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := sampleRecord("g1", 1, "u1", "u2", base)
			first.EndReason = gomoku.EndWin
			if err := repo.SaveRecord(ctx, first); err != nil {
				t.Fatalf("SaveRecord: %v", err)
			}
			second := sampleRecord("g1", 1, "u1", "u2", base.Add(time.Minute))
			if err := repo.SaveRecord(ctx, second); err != nil {
				t.Fatalf("SaveRecord again: %v", err)
			}
			list, err := repo.RecentByPlayer(ctx, "u1", 10)
			if err != nil {
				t.Fatalf("RecentByPlayer: %v", err)
			}
			if len(list) != 1 || list[0].EndReason != gomoku.EndSurrender {
				t.Fatalf("want single overwritten record, got %d", len(list))
			}
		})
	}
}

func TestRecentByPlayerOrdersAndLimits(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 1; i <= 4; i++ {
				black, white := "u1", "u2"
				if i%2 == 0 {
					black, white = white, black
				}
				if err := repo.SaveRecord(ctx, sampleRecord("g1", i, black, white, base.Add(time.Duration(i)*time.Hour))); err != nil {
					t.Fatalf("SaveRecord %d: %v", i, err)
				}
			}
			if err := repo.SaveRecord(ctx, sampleRecord("g9", 1, "u8", "u9", base)); err != nil {
				t.Fatalf("SaveRecord other: %v", err)
			}

			list, err := repo.RecentByPlayer(ctx, "u1", 3)
			if err != nil {
				t.Fatalf("RecentByPlayer: %v", err)
			}
			if len(list) != 3 {
				t.Fatalf("len=%d want 3", len(list))
			}
			if list[0].GameCount != 4 || list[2].GameCount != 2 {
				t.Fatalf("order: %d,%d,%d", list[0].GameCount, list[1].GameCount, list[2].GameCount)
			}
			none, err := repo.RecentByPlayer(ctx, "", 3)
			if err != nil || len(none) != 0 {
				t.Fatalf("blank user: %v %v", none, err)
			}
		})
	}
}

func TestRebindPostgres(t *testing.T) {
	r := &sqlRepo{driver: DriverPostgres}
	if got := r.rebind("a = ? AND b = ? LIMIT ?"); got != "a = $1 AND b = $2 LIMIT $3" {
		t.Fatalf("rebind=%q", got)
	}
	r.driver = DriverSQLite
	if got := r.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite rebind=%q", got)
	}
}

func TestSaveNilRecord(t *testing.T) {
	if err := NewMemoryRepository().SaveRecord(context.Background(), nil); err != ErrNilRecord {
		t.Fatalf("err=%v", err)
	}
}

package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type sqlRepo struct {
	db     *sql.DB
	driver string
}

// Open connects to postgres (lib/pq) or sqlite (modernc), pings, and applies
// the schema.
func Open(driver, dsn string) (Repository, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("archive dsn is required")
	}

	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverPostgres:
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(30 * time.Minute)
	case DriverSQLite:
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// one writer; also keeps ":memory:" on a single connection
		db.SetMaxOpenConns(1)
	default:
		return nil, fmt.Errorf("unsupported archive driver %q", driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	r := &sqlRepo{db: db, driver: driver}
	if err := r.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS omok_games (
		record_id      TEXT PRIMARY KEY,
		game_id        TEXT NOT NULL,
		room_id        TEXT NOT NULL,
		game_count     INTEGER NOT NULL,
		black_id       TEXT NOT NULL,
		white_id       TEXT NOT NULL,
		mode           TEXT NOT NULL,
		end_reason     TEXT NOT NULL,
		winner         INTEGER NOT NULL,
		final_snapshot TEXT,
		actions        TEXT NOT NULL,
		started_at     BIGINT NOT NULL,
		archived_at    BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS omok_games_black_idx ON omok_games (black_id, archived_at)`,
	`CREATE INDEX IF NOT EXISTS omok_games_white_idx ON omok_games (white_id, archived_at)`,
}

// Migrate creates the archive table and indexes when missing.
func (r *sqlRepo) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate archive: %w", err)
		}
	}
	return nil
}

func (r *sqlRepo) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres.
func (r *sqlRepo) rebind(q string) string {
	if r.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, ch := range q {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func (r *sqlRepo) SaveRecord(ctx context.Context, rec *gomoku.HistoryRecord) error {
	if rec == nil {
		return ErrNilRecord
	}
	actions, err := json.Marshal(rec.Actions)
	if err != nil {
		return fmt.Errorf("marshal actions: %w", err)
	}
	var snapshot sql.NullString
	if rec.FinalSnapshot != nil {
		raw, err := json.Marshal(rec.FinalSnapshot)
		if err != nil {
			return fmt.Errorf("marshal final snapshot: %w", err)
		}
		snapshot = sql.NullString{String: string(raw), Valid: true}
	}

	const query = `
		INSERT INTO omok_games (
			record_id, game_id, room_id, game_count,
			black_id, white_id, mode, end_reason, winner,
			final_snapshot, actions, started_at, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (record_id) DO UPDATE SET
			end_reason = excluded.end_reason,
			winner = excluded.winner,
			final_snapshot = excluded.final_snapshot,
			actions = excluded.actions,
			started_at = excluded.started_at,
			archived_at = excluded.archived_at`

	_, err = r.db.ExecContext(ctx, r.rebind(query),
		rec.ID, rec.GameID, rec.RoomID, rec.GameCount,
		rec.BlackPlayerID, rec.WhitePlayerID, string(rec.Mode), string(rec.EndReason), int(rec.Winner),
		snapshot, string(actions), toMillis(rec.StartedAt), toMillis(rec.ArchivedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert omok game %s: %w", rec.ID, err)
	}
	return nil
}

const selectColumns = `
	SELECT record_id, game_id, room_id, game_count,
		black_id, white_id, mode, end_reason, winner,
		final_snapshot, actions, started_at, archived_at
	FROM omok_games`

func (r *sqlRepo) RecentByPlayer(ctx context.Context, userID string, limit int) ([]*gomoku.HistoryRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []*gomoku.HistoryRecord{}, nil
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	query := selectColumns + `
		WHERE black_id = ? OR white_id = ?
		ORDER BY archived_at DESC, record_id DESC
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, r.rebind(query), userID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent omok games: %w", err)
	}
	defer rows.Close()

	out := make([]*gomoku.HistoryRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate omok games: %w", err)
	}
	return out, nil
}

func (r *sqlRepo) Get(ctx context.Context, id string) (*gomoku.HistoryRecord, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(selectColumns+` WHERE record_id = ?`), strings.TrimSpace(id))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (*gomoku.HistoryRecord, error) {
	var (
		rec        gomoku.HistoryRecord
		mode       string
		endReason  string
		winner     int
		snapshot   sql.NullString
		actions    string
		startedAt  int64
		archivedAt int64
	)
	err := s.Scan(
		&rec.ID, &rec.GameID, &rec.RoomID, &rec.GameCount,
		&rec.BlackPlayerID, &rec.WhitePlayerID, &mode, &endReason, &winner,
		&snapshot, &actions, &startedAt, &archivedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan omok game: %w", err)
	}
	rec.Mode = gomoku.Mode(mode)
	rec.EndReason = gomoku.EndReason(endReason)
	rec.Winner = gomoku.Winner(winner)
	if err := json.Unmarshal([]byte(actions), &rec.Actions); err != nil {
		return nil, fmt.Errorf("decode actions of %s: %w", rec.ID, err)
	}
	if snapshot.Valid && snapshot.String != "" {
		var snap gomoku.Snapshot
		if err := json.Unmarshal([]byte(snapshot.String), &snap); err != nil {
			return nil, fmt.Errorf("decode final snapshot of %s: %w", rec.ID, err)
		}
		rec.FinalSnapshot = &snap
	}
	rec.StartedAt = fromMillis(startedAt)
	rec.ArchivedAt = fromMillis(archivedAt)
	return &rec, nil
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMilli(v).UTC()
}

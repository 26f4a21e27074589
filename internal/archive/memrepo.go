package archive

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
)

// memrepo is a development-only archive used when no database is configured.
type memrepo struct {
	mu   sync.RWMutex
	byID map[string]*gomoku.HistoryRecord
}

func NewMemoryRepository() Repository {
	return &memrepo{byID: make(map[string]*gomoku.HistoryRecord)}
}

func (m *memrepo) SaveRecord(ctx context.Context, rec *gomoku.HistoryRecord) error {
	if rec == nil {
		return ErrNilRecord
	}
	copy := cloneRecord(rec)
	m.mu.Lock()
	m.byID[rec.ID] = copy
	m.mu.Unlock()
	return nil
}

func (m *memrepo) RecentByPlayer(ctx context.Context, userID string, limit int) ([]*gomoku.HistoryRecord, error) {
	userID = strings.TrimSpace(userID)
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	m.mu.RLock()
	var items []*gomoku.HistoryRecord
	for _, r := range m.byID {
		if userID != "" && (r.BlackPlayerID == userID || r.WhitePlayerID == userID) {
			items = append(items, r)
		}
	}
	m.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].ArchivedAt.Equal(items[j].ArchivedAt) {
			return items[i].ArchivedAt.After(items[j].ArchivedAt)
		}
		return items[i].ID > items[j].ID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]*gomoku.HistoryRecord, 0, len(items))
	for _, r := range items {
		out = append(out, cloneRecord(r))
	}
	return out, nil
}

func (m *memrepo) Get(ctx context.Context, id string) (*gomoku.HistoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.byID[strings.TrimSpace(id)]; ok {
		return cloneRecord(r), nil
	}
	return nil, nil
}

func (m *memrepo) Close() error { return nil }

func cloneRecord(r *gomoku.HistoryRecord) *gomoku.HistoryRecord {
	copy := *r
	copy.FinalSnapshot = r.FinalSnapshot.Clone()
	copy.Actions = append([]gomoku.Action(nil), r.Actions...)
	return &copy
}

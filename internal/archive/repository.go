// Package archive stores finished Omok games.
package archive

import (
	"context"
	"errors"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
)

var ErrNilRecord = errors.New("archive: nil record")

// Repository is the archive sink. SaveRecord upserts on record id so a
// redelivered outbox entry overwrites instead of duplicating. Get returns
// (nil, nil) when the id is unknown.
type Repository interface {
	SaveRecord(ctx context.Context, rec *gomoku.HistoryRecord) error
	RecentByPlayer(ctx context.Context, userID string, limit int) ([]*gomoku.HistoryRecord, error)
	Get(ctx context.Context, id string) (*gomoku.HistoryRecord, error)
	Close() error
}

const defaultRecentLimit = 10

package room

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
	"github.com/park285/Omok-KakaoTalk-bot/internal/obslog"
)

// ArchiveSink receives finished games. archive.Repository satisfies it.
type ArchiveSink interface {
	SaveRecord(ctx context.Context, rec *gomoku.HistoryRecord) error
}

// ArchiveDrainer moves outbox entries into the sink, oldest first. An entry
// leaves the outbox only after the sink accepted it.
type ArchiveDrainer struct {
	store *Store
	sink  ArchiveSink
	batch int
}

func NewArchiveDrainer(store *Store, sink ArchiveSink, batch int) *ArchiveDrainer {
	if batch <= 0 {
		batch = 50
	}
	return &ArchiveDrainer{store: store, sink: sink, batch: batch}
}

// DrainOnce delivers up to one batch and returns how many entries were
// acknowledged. A sink failure stops the batch with ErrArchiveUnavailable.
func (d *ArchiveDrainer) DrainOnce(ctx context.Context) (int, error) {
	if d == nil || d.sink == nil {
		return 0, ErrArchiveUnavailable
	}
	done := 0
	for done < d.batch {
		raw, err := d.store.oldestOutbox(ctx)
		if err != nil {
			return done, err
		}
		if raw == nil {
			return done, nil
		}

		var rec gomoku.HistoryRecord
		if err := json.Unmarshal(raw, &rec); err != nil || rec.ID == "" {
			obslog.L().Error("archive_outbox_malformed", zap.ByteString("entry", raw), zap.Error(err))
			if err := d.store.deadLetter(ctx, raw); err != nil {
				return done, err
			}
			continue
		}

		if err := d.sink.SaveRecord(ctx, &rec); err != nil {
			obslog.Room(rec.RoomID).Warn("archive_sink_error", zap.String("record_id", rec.ID), zap.Error(err))
			return done, fmt.Errorf("%w: %v", ErrArchiveUnavailable, err)
		}
		if err := d.store.ackOutbox(ctx, raw); err != nil {
			return done, err
		}
		obslog.Room(rec.RoomID).Info("archive_saved", zap.String("record_id", rec.ID), zap.String("end_reason", string(rec.EndReason)))
		done++
	}
	return done, nil
}

// Run drains every interval until ctx is cancelled.
func (d *ArchiveDrainer) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.DrainOnce(ctx); err != nil && ctx.Err() == nil {
				obslog.L().Warn("archive_drain_error", zap.Error(err))
			}
		}
	}
}

package omokdto

import "time"

// HistoryEntry is one archived game from the viewer's side.
type HistoryEntry struct {
	RecordID   string
	Round      int
	Color      string
	OpponentID string
	// Result is WIN, LOSS or DRAW for the viewer.
	Result     string
	EndReason  string
	Moves      int
	ArchivedAt time.Time
}

// LobbyEntry is a waiting lobby code.
type LobbyEntry struct {
	Code      string
	Name      string
	CreatedAt time.Time
}

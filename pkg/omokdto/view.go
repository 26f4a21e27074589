package omokdto

// Seat is one player as the chat layer shows them.
type Seat struct {
	ID    string
	Name  string
	Ready bool
}

// RoomView is a read-only projection of a room for replies.
type RoomView struct {
	RoomID    string
	GameID    string
	ChatRooms []string
	Round     int
	Status    string
	Black     Seat
	White     Seat
	// Turn is BLACK or WHITE while playing, empty otherwise.
	Turn      string
	Moves     int
	BoardSize int
	LastMove  string
	EndReason string
	// Winner is BLACK, WHITE, DRAW or empty while the game runs.
	Winner     string
	BoardImage []byte
}

// SeatOf returns the seat of a color name.
func (v *RoomView) SeatOf(color string) Seat {
	if v == nil {
		return Seat{}
	}
	switch color {
	case "BLACK":
		return v.Black
	case "WHITE":
		return v.White
	default:
		return Seat{}
	}
}

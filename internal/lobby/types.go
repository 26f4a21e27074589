package lobby

import "time"

// State is the lifecycle of a lobby code.
type State string

const (
	StateLobby  State = "LOBBY"
	StateActive State = "ACTIVE"
)

// Meta is stored as JSON in Redis under omok:lobby:<code>.
type Meta struct {
	Code      string    `json:"code"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`

	CreatorID   string `json:"creator_id"`
	CreatorName string `json:"creator_name"`
	CreatorRoom string `json:"creator_room"`

	JoinerID   string `json:"joiner_id,omitempty"`
	JoinerName string `json:"joiner_name,omitempty"`
	JoinerRoom string `json:"joiner_room,omitempty"`

	RoomID string `json:"room_id,omitempty"`
}

type MakeResult struct {
	Code string
	Meta *Meta
}

type JoinResult struct {
	Started bool
	RoomID  string
	Meta    *Meta
}

var (
	ErrInvalidArgs     = errf("invalid arguments")
	ErrChannelGone     = errf("lobby not found or expired")
	ErrChannelActive   = errf("lobby already started")
	ErrFull            = errf("lobby already has two participants")
	ErrOwnLobby        = errf("cannot join your own lobby")
	ErrPlayerBusy      = errf("player has a game in progress")
	ErrCreatorHasLobby = errf("user already has a lobby")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error          { return staticErr(s) }

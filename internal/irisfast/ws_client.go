package irisfast

import "context"

type MessageCallback func(message *Message)

type StateCallback func(state WebSocketState)

// WSClient is the event-stream side of Iris: inbound chat messages plus
// reply frames written back on the same connection.
type WSClient interface {
	Connect(ctx context.Context) error
	Connected() bool
	WriteJSON(ctx context.Context, v any) error
	OnMessage(cb MessageCallback) int
	RemoveMessageCallback(id int)
	OnStateChange(cb StateCallback) int
	RemoveStateCallback(id int)
	Close(ctx context.Context) error
}

package omokdto

// ActionSummary describes what one accepted command did.
type ActionSummary struct {
	Type      string
	Executor  string
	ActorID   string
	ActorName string
	// ActorColor is BLACK or WHITE.
	ActorColor string
	Coord      string
	Reverted   int
	Finished   bool
	Archived   bool
}

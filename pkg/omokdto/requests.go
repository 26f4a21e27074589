package omokdto

// RequestMeta identifies who sent a command and where.
type RequestMeta struct {
	Room     string
	UserID   string
	UserName string
}

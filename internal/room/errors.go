package room

// Error is a typed error for room operations. All of these are
// recoverable from the caller's perspective: they are reported on the
// request path and never mutate room state.
type Error string

// Error implements the error interface
func (e Error) Error() string {
	return string(e)
}

// Define errors
const (
	ErrRoomExists     Error = "room already exists"
	ErrNoRoom         Error = "room not found"
	ErrAlreadyStarted Error = "game already started"
	ErrNotStarted     Error = "game not started"
	ErrFinished       Error = "game is finished"
	ErrNoNumbers      Error = "no numbers remaining"
	ErrRoomFull       Error = "room is at maximum capacity"
)

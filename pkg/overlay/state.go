package overlay

// State is a step of the session lifecycle. Transitions only go forward:
//
//	Unopened -> Connected -> WindowCreated -> Visible -> EventLoopRunning
//
// EventLoopRunning is terminal. The process leaves it only by exiting
// (signal or lost connection).
type State int

const (
	StateUnopened State = iota
	StateConnected
	StateWindowCreated
	StateVisible
	StateEventLoopRunning
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateConnected:
		return "connected"
	case StateWindowCreated:
		return "window-created"
	case StateVisible:
		return "visible"
	case StateEventLoopRunning:
		return "event-loop-running"
	default:
		return "invalid"
	}
}

package storage

// State is the lifecycle state of a storage connection.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateErrored
)

// String returns the lower-case state name used in logs and /ready.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

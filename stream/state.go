package stream

// State is the connection lifecycle state. There is exactly one State per
// logical connection, owned by the Client; transitions are the only legal
// mutation path and follow the edges documented on Client.
type State int

const (
	// StateClosed means no link is active and no retry is pending.
	StateClosed State = iota
	// StateConnecting means a transport handshake is in flight.
	StateConnecting
	// StateOpen means the link is established.
	StateOpen
	// StateReconnectScheduled means a retry timer is pending.
	StateReconnectScheduled
	// StateExhausted means the retry budget is spent; only a resume
	// signal or a manual Connect leaves this state.
	StateExhausted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnectScheduled:
		return "reconnect_scheduled"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Status is the coarse connection status exposed to the presentation layer.
type Status string

const (
	// StatusConnecting covers Connecting and ReconnectScheduled.
	StatusConnecting Status = "connecting"
	// StatusConnected covers Open.
	StatusConnected Status = "connected"
	// StatusDisconnected covers Closed and Exhausted.
	StatusDisconnected Status = "disconnected"
)

// Coarse projects the internal state onto the user-facing status.
func (s State) Coarse() Status {
	switch s {
	case StateConnecting, StateReconnectScheduled:
		return StatusConnecting
	case StateOpen:
		return StatusConnected
	default:
		return StatusDisconnected
	}
}

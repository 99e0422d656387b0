package session

// WindowState is the lifecycle state of one coordinated window.
//
// Empty -> Populating -> Active -> Closing -> Closed
type WindowState int

const (
	StateEmpty WindowState = iota
	StatePopulating
	StateActive
	StateClosing
	StateClosed
)

func (s WindowState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulating:
		return "populating"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

package exam

import "time"

// loadedMsg is sent when the question fetch has returned.
type loadedMsg struct {
	Err error
}

// tickMsg is sent every second to refresh the clock.
type tickMsg time.Time

package presence

import "time"

// Window is the freshness window: an account is online iff its last
// activity is more recent than this.
const Window = 60 * time.Second

// IsOnline derives online status from the last-activity timestamp. A nil
// timestamp (never seen) is offline.
func IsOnline(lastActive *time.Time, now time.Time) bool {
	if lastActive == nil {
		return false
	}
	return now.Sub(*lastActive) < Window
}

package interfaces

import "time"

// CancelToken cancels a scheduled callback. Cancel is a no-op once the
// callback has fired.
type CancelToken interface {
	Cancel()
}

// Scheduler schedules a callback after a delay. The timer implementation uses
// real timers; tests use a virtual-clock implementation so delay policy can be
// asserted without sleeping.
type Scheduler interface {
	ScheduleAfter(d time.Duration, fn func()) CancelToken
}

package scheduler

import (
	"time"

	"github.com/sourdin/jobsieve/internal/interfaces"
)

// TimerScheduler schedules callbacks on real timers
type TimerScheduler struct{}

// NewTimerScheduler creates the production scheduler
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

type timerToken struct {
	timer *time.Timer
}

func (t *timerToken) Cancel() {
	t.timer.Stop()
}

// ScheduleAfter runs fn after d on its own goroutine
func (s *TimerScheduler) ScheduleAfter(d time.Duration, fn func()) interfaces.CancelToken {
	return &timerToken{timer: time.AfterFunc(d, fn)}
}

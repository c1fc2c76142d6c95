package gateway

import (
	"sync"
	"time"
)

// pollTimers schedules the auto-end callback for active polls, one timer per
// session. Cancel and Schedule are safe to race with an expiring timer; the
// expiry callback re-checks the poll id so a stale fire cannot end a newer
// poll.
type pollTimers struct {
	mu     sync.Mutex
	timers map[string]*time.Timer // session key -> active poll timer
	expire func(sessionKey, pollID string)
}

func newPollTimers(expire func(sessionKey, pollID string)) *pollTimers {
	return &pollTimers{
		timers: make(map[string]*time.Timer),
		expire: expire,
	}
}

// Schedule arms the auto-end timer for a freshly created poll, replacing any
// leftover timer for the session.
func (pt *pollTimers) Schedule(sessionKey, pollID string, timeLimitSeconds int) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if old, ok := pt.timers[sessionKey]; ok {
		old.Stop()
	}

	pt.timers[sessionKey] = time.AfterFunc(time.Duration(timeLimitSeconds)*time.Second, func() {
		pt.mu.Lock()
		delete(pt.timers, sessionKey)
		pt.mu.Unlock()
		pt.expire(sessionKey, pollID)
	})
}

// Cancel disarms the session's timer after a manual end. A timer that
// already fired is harmless; its callback loses the EndPollByID race.
func (pt *pollTimers) Cancel(sessionKey string) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if t, ok := pt.timers[sessionKey]; ok {
		t.Stop()
		delete(pt.timers, sessionKey)
	}
}

// Shutdown stops every outstanding timer.
func (pt *pollTimers) Shutdown() {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	for key, t := range pt.timers {
		t.Stop()
		delete(pt.timers, key)
	}
}

package relay

import (
	"sync"
	"time"
)

const DefaultTypingDebounce = 3 * time.Second

type typingKey struct {
	conversationID string
	userID         string
}

// TypingTimers debounces typing indicators: at most one live timer per
// (conversation, user); the timer firing clears the state itself.
type TypingTimers struct {
	mu       sync.Mutex
	debounce time.Duration
	timers   map[typingKey]*time.Timer
}

func NewTypingTimers(debounce time.Duration) *TypingTimers {
	if debounce <= 0 {
		debounce = DefaultTypingDebounce
	}
	return &TypingTimers{
		debounce: debounce,
		timers:   make(map[typingKey]*time.Timer),
	}
}

// Start arms a timer if none exists for the key and reports whether it did.
// A second start within the debounce window neither resets nor duplicates.
// fire runs after the debounce interval unless the timer is stopped first.
func (t *TypingTimers) Start(conversationID, userID string, fire func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := typingKey{conversationID, userID}
	if _, ok := t.timers[k]; ok {
		return false
	}
	t.timers[k] = time.AfterFunc(t.debounce, func() {
		t.mu.Lock()
		_, live := t.timers[k]
		delete(t.timers, k)
		t.mu.Unlock()
		// a concurrent Stop may have won; fire only if the timer was still ours
		if live {
			fire()
		}
	})
	return true
}

// Stop cancels the timer for the key and reports whether one existed.
func (t *TypingTimers) Stop(conversationID, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := typingKey{conversationID, userID}
	timer, ok := t.timers[k]
	if !ok {
		return false
	}
	timer.Stop()
	delete(t.timers, k)
	return true
}

// StopUser cancels every timer belonging to the user and returns the
// affected conversation ids. Used by the disconnect reconciler.
func (t *TypingTimers) StopUser(userID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var convs []string
	for k, timer := range t.timers {
		if k.userID == userID {
			timer.Stop()
			delete(t.timers, k)
			convs = append(convs, k.conversationID)
		}
	}
	return convs
}

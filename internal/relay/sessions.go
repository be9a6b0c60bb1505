package relay

import (
	"sync"

	"github.com/cwrk-planet/relay-service/internal/domain"
)

// CallSession is the ephemeral signaling-pendency record for one call.
// The durable lifecycle (ringing/active/duration) lives in the call record,
// not here.
type CallSession struct {
	ID          string
	CallerID    string
	RecipientID string
	CallType    domain.CallType
}

// Other returns the counterpart of the given identity in the session.
func (s CallSession) Other(userID string) string {
	if s.CallerID == userID {
		return s.RecipientID
	}
	return s.CallerID
}

type CallSessions struct {
	mu       sync.Mutex
	sessions map[string]CallSession
}

func NewCallSessions() *CallSessions {
	return &CallSessions{sessions: make(map[string]CallSession)}
}

func (t *CallSessions) Create(s CallSession) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[s.ID] = s
}

func (t *CallSessions) Get(id string) (CallSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	return s, ok
}

// Remove deletes and returns the session. At most one caller observes
// ok=true, which keeps terminal relays exactly-once.
func (t *CallSessions) Remove(id string) (CallSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	if ok {
		delete(t.sessions, id)
	}
	return s, ok
}

// TakeByUser removes and returns every session referencing the identity as
// caller or recipient.
func (t *CallSessions) TakeByUser(userID string) []CallSession {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []CallSession
	for id, s := range t.sessions {
		if s.CallerID == userID || s.RecipientID == userID {
			delete(t.sessions, id)
			out = append(out, s)
		}
	}
	return out
}

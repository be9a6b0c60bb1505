package relay

import "sync"

// Presence maps an identity to its single live connection. A reconnect
// overwrites the entry; multi-device fan-out is not supported.
type Presence struct {
	mu      sync.RWMutex
	entries map[string]Conn
}

func NewPresence() *Presence {
	return &Presence{entries: make(map[string]Conn)}
}

// Register stores the connection and returns the replaced one, if any.
func (p *Presence) Register(userID string, c Conn) (prior Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prior = p.entries[userID]
	p.entries[userID] = c
	return prior
}

func (p *Presence) Lookup(userID string) (Conn, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.entries[userID]
	return c, ok
}

// Unregister removes the entry only if it still belongs to this connection,
// so a replaced connection's cleanup cannot evict its successor.
func (p *Presence) Unregister(userID string, c Conn) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cur, ok := p.entries[userID]; ok && cur == c {
		delete(p.entries, userID)
		return true
	}
	return false
}

func (p *Presence) Online(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.entries[userID]
	return ok
}

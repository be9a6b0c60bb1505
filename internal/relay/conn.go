package relay

// Conn is a live client connection as seen by the relay. The transport
// layer owns the socket; the relay only sends events and closes.
type Conn interface {
	Send(ev Event) error
	Close() error
	ID() string     // unique per connection
	UserID() string // authenticated identity, immutable for the connection
}

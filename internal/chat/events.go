package chat

import (
	"time"

	"huddle/internal/models"
)

// Event is an input to the coordinator's transition function. The concrete
// types below are the only implementations.
type Event interface {
	Kind() string
}

// Connect registers a freshly upgraded connection.
type Connect struct {
	Peer Peer
}

// Disconnect is raised by the transport when a connection goes away. It may
// arrive more than once for the same id.
type Disconnect struct {
	ID string
}

type Join struct {
	ID       string
	Username string
	Avatar   string
}

type SendMessage struct {
	ID   string
	Text string
}

type TypingStart struct {
	ID string
}

type TypingStop struct {
	ID string
}

// Announce logs a system message and broadcasts it to everyone.
type Announce struct {
	Text string
}

// Sweep clears typing indicators whose idle timeout elapsed by Now.
type Sweep struct {
	Now time.Time
}

func (Connect) Kind() string     { return "connect" }
func (Disconnect) Kind() string  { return "disconnect" }
func (Join) Kind() string        { return string(models.ClientMessageTypeJoin) }
func (SendMessage) Kind() string { return string(models.ClientMessageTypeSend) }
func (TypingStart) Kind() string { return string(models.ClientMessageTypeTypingStart) }
func (TypingStop) Kind() string  { return string(models.ClientMessageTypeTypingStop) }
func (Announce) Kind() string    { return "announce" }
func (Sweep) Kind() string       { return "sweep" }

// FromClient maps a decoded client frame onto its event. Unknown frame types
// return false.
func FromClient(id string, msg models.ClientMessage) (Event, bool) {
	switch msg.Type {
	case models.ClientMessageTypeJoin:
		return Join{ID: id, Username: msg.Username, Avatar: msg.Avatar}, true
	case models.ClientMessageTypeSend:
		return SendMessage{ID: id, Text: msg.Text}, true
	case models.ClientMessageTypeTypingStart:
		return TypingStart{ID: id}, true
	case models.ClientMessageTypeTypingStop:
		return TypingStop{ID: id}, true
	}
	return nil, false
}

// Target selects the recipients of an outbound frame.
type Target int

const (
	// TargetSelf delivers only to the originating connection.
	TargetSelf Target = iota
	// TargetAll delivers to every registered connection.
	TargetAll
	// TargetAllExcept delivers to every registered connection but the origin.
	TargetAllExcept
)

func (t Target) String() string {
	switch t {
	case TargetSelf:
		return "self"
	case TargetAll:
		return "all"
	case TargetAllExcept:
		return "all_except"
	}
	return "unknown"
}

// Outbound is one frame produced by a transition together with its audience.
type Outbound struct {
	Target  Target
	Origin  string
	Message models.ServerMessage
}

package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"huddle/internal/content"
	"huddle/internal/metrics"
	"huddle/internal/models"
)

const defaultInboxSize = 1024

// SystemUser authors announcements.
var SystemUser = models.User{ID: "system", Username: "system"}

// State is the lifecycle stage of a connection as seen by the coordinator.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateJoined
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateJoined:
		return "joined"
	}
	return "disconnected"
}

type Config struct {
	// HistoryLimit caps the retained messages, zero keeps everything.
	HistoryLimit int
	// TypingTimeout clears a typing indicator that was not refreshed or
	// stopped in time. Zero disables the server side expiry.
	TypingTimeout time.Duration
	InboxSize     int
}

// Coordinator owns the registry, presence, history and typing state and is
// the only writer to any of them. Events are applied one at a time by Run.
type Coordinator struct {
	registry *Registry
	presence *Presence
	history  *History
	typing   *Typing

	typingTimeout time.Duration

	inbox chan Event
	done  chan struct{}

	logger zerolog.Logger
	now    func() time.Time
}

func NewCoordinator(cfg Config, logger zerolog.Logger) *Coordinator {
	size := cfg.InboxSize
	if size <= 0 {
		size = defaultInboxSize
	}
	return &Coordinator{
		registry:      NewRegistry(),
		presence:      NewPresence(),
		history:       NewHistory(cfg.HistoryLimit),
		typing:        NewTyping(),
		typingTimeout: cfg.TypingTimeout,
		inbox:         make(chan Event, size),
		done:          make(chan struct{}),
		logger:        logger.With().Str("component", "coordinator").Logger(),
		now:           time.Now,
	}
}

// Run applies queued events until ctx is cancelled, then closes every
// registered connection.
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.done)

	var sweep <-chan time.Time
	if c.typingTimeout > 0 {
		ticker := time.NewTicker(sweepInterval(c.typingTimeout))
		defer ticker.Stop()
		sweep = ticker.C
	}

	c.logger.Info().Dur("typing_timeout", c.typingTimeout).Msg("coordinator started")

	for {
		select {
		case <-ctx.Done():
			c.closeAll()
			c.logger.Info().Msg("coordinator stopped")
			return nil
		case ev := <-c.inbox:
			c.deliver(c.Step(ev))
		case now := <-sweep:
			c.deliver(c.Step(Sweep{Now: now}))
		}
	}
}

// Connect queues registration of a new connection. It must be called before
// any Dispatch for the same id.
func (c *Coordinator) Connect(p Peer) {
	c.submit(Connect{Peer: p})
}

// Dispatch queues a client frame received on connection id.
func (c *Coordinator) Dispatch(id string, msg models.ClientMessage) {
	ev, ok := FromClient(id, msg)
	if !ok {
		metrics.EventsIgnored.WithLabelValues("unknown").Inc()
		c.logger.Debug().Str("id", id).Str("type", string(msg.Type)).Msg("unknown client event")
		return
	}
	c.submit(ev)
}

func (c *Coordinator) Disconnect(id string) {
	c.submit(Disconnect{ID: id})
}

func (c *Coordinator) Announce(text string) {
	c.submit(Announce{Text: text})
}

// Done is closed once Run has returned. Events submitted after that are
// dropped.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// submit never blocks once Run has returned; late events are dropped.
func (c *Coordinator) submit(ev Event) {
	select {
	case c.inbox <- ev:
	case <-c.done:
	}
}

// Step applies one event to the coordinator state and returns the frames it
// produces. It performs no I/O.
func (c *Coordinator) Step(ev Event) []Outbound {
	if _, ok := ev.(Sweep); !ok {
		metrics.EventsTotal.WithLabelValues(ev.Kind()).Inc()
	}

	var out []Outbound
	switch ev := ev.(type) {
	case Connect:
		out = c.connect(ev)
	case Disconnect:
		out = c.disconnect(ev)
	case Join:
		out = c.join(ev)
	case SendMessage:
		out = c.sendMessage(ev)
	case TypingStart:
		out = c.typingStart(ev)
	case TypingStop:
		out = c.typingStop(ev)
	case Announce:
		out = c.announce(ev)
	case Sweep:
		out = c.sweep(ev)
	}

	c.observe()
	return out
}

// observe publishes the size of every store.
func (c *Coordinator) observe() {
	metrics.Connections.Set(float64(c.ConnectionCount()))
	metrics.UsersOnline.Set(float64(c.UserCount()))
	metrics.TypingUsers.Set(float64(c.typing.Len()))
	metrics.HistoryMessages.Set(float64(c.history.Len()))
}

func (c *Coordinator) connect(ev Connect) []Outbound {
	c.registry.Register(ev.Peer)
	c.logger.Debug().Str("id", ev.Peer.ID()).Msg("connection registered")
	return nil
}

func (c *Coordinator) disconnect(ev Disconnect) []Outbound {
	if !c.registry.Unregister(ev.ID) {
		return nil
	}
	c.typing.Stop(ev.ID)

	user, joined := c.presence.Remove(ev.ID)
	if !joined {
		c.logger.Debug().Str("id", ev.ID).Msg("connection closed before joining")
		return nil
	}
	c.logger.Info().Str("id", ev.ID).Str("username", user.Username).Msg("user left")

	return []Outbound{
		{Target: TargetAll, Origin: ev.ID, Message: c.usersUpdate()},
		{Target: TargetAllExcept, Origin: ev.ID, Message: models.ServerMessage{
			Type:    models.ServerMessageTypeUserLeft,
			Payload: user,
		}},
	}
}

func (c *Coordinator) join(ev Join) []Outbound {
	switch c.State(ev.ID) {
	case StateDisconnected:
		return c.ignore(ev, "unknown connection")
	case StateJoined:
		return c.ignore(ev, "already joined")
	}

	name, err := content.Username(ev.Username)
	if err != nil {
		return c.ignore(ev, err.Error())
	}

	user := models.User{
		ID:       ev.ID,
		Username: name,
		Avatar:   content.Avatar(ev.Avatar),
		JoinedAt: c.now(),
	}
	c.presence.Add(user)
	c.logger.Info().Str("id", ev.ID).Str("username", name).Msg("user joined")

	return []Outbound{
		{Target: TargetSelf, Origin: ev.ID, Message: models.ServerMessage{
			Type:    models.ServerMessageTypeHistory,
			Payload: c.history.All(),
		}},
		{Target: TargetAll, Origin: ev.ID, Message: c.usersUpdate()},
		{Target: TargetAllExcept, Origin: ev.ID, Message: models.ServerMessage{
			Type:    models.ServerMessageTypeUserJoined,
			Payload: user,
		}},
	}
}

func (c *Coordinator) sendMessage(ev SendMessage) []Outbound {
	user, ok := c.presence.Get(ev.ID)
	if !ok {
		return c.ignore(ev, "not joined")
	}

	text, err := content.MessageText(ev.Text)
	if err != nil {
		return c.ignore(ev, err.Error())
	}

	msg := c.history.Append(models.Message{
		Text:      text,
		HTML:      content.Render(text),
		User:      user,
		Timestamp: c.now(),
		Kind:      models.MessageKindMessage,
	})
	metrics.MessagesLogged.WithLabelValues(string(msg.Kind)).Inc()

	return []Outbound{
		{Target: TargetAll, Origin: ev.ID, Message: models.ServerMessage{
			Type:    models.ServerMessageTypeNewMessage,
			Payload: msg,
		}},
	}
}

func (c *Coordinator) typingStart(ev TypingStart) []Outbound {
	user, ok := c.presence.Get(ev.ID)
	if !ok {
		return c.ignore(ev, "not joined")
	}

	var deadline time.Time
	if c.typingTimeout > 0 {
		deadline = c.now().Add(c.typingTimeout)
	}
	c.typing.Start(user, deadline)

	return []Outbound{typingFrame(user, true)}
}

func (c *Coordinator) typingStop(ev TypingStop) []Outbound {
	user, ok := c.presence.Get(ev.ID)
	if !ok {
		return c.ignore(ev, "not joined")
	}
	c.typing.Stop(ev.ID)

	return []Outbound{typingFrame(user, false)}
}

func (c *Coordinator) announce(ev Announce) []Outbound {
	text, err := content.MessageText(ev.Text)
	if err != nil {
		return c.ignore(ev, err.Error())
	}

	msg := c.history.Append(models.Message{
		Text:      text,
		HTML:      content.Render(text),
		User:      SystemUser,
		Timestamp: c.now(),
		Kind:      models.MessageKindSystem,
	})
	metrics.MessagesLogged.WithLabelValues(string(msg.Kind)).Inc()

	return []Outbound{
		{Target: TargetAll, Message: models.ServerMessage{
			Type:    models.ServerMessageTypeNewMessage,
			Payload: msg,
		}},
	}
}

func (c *Coordinator) sweep(ev Sweep) []Outbound {
	if c.typingTimeout <= 0 {
		return nil
	}

	expired := c.typing.Expired(ev.Now)
	if len(expired) == 0 {
		return nil
	}

	out := make([]Outbound, 0, len(expired))
	for _, user := range expired {
		metrics.TypingExpired.Inc()
		c.logger.Debug().Str("id", user.ID).Msg("typing indicator expired")
		out = append(out, typingFrame(user, false))
	}
	return out
}

func (c *Coordinator) ignore(ev Event, reason string) []Outbound {
	metrics.EventsIgnored.WithLabelValues(ev.Kind()).Inc()
	c.logger.Debug().Str("event", ev.Kind()).Str("reason", reason).Msg("event ignored")
	return nil
}

func (c *Coordinator) usersUpdate() models.ServerMessage {
	return models.ServerMessage{
		Type:    models.ServerMessageTypeUsers,
		Payload: c.presence.List(),
	}
}

func typingFrame(user models.User, typing bool) Outbound {
	return Outbound{
		Target: TargetAllExcept,
		Origin: user.ID,
		Message: models.ServerMessage{
			Type:    models.ServerMessageTypeTyping,
			Payload: models.TypingUser{User: user, Typing: typing},
		},
	}
}

// deliver hands every frame to its recipients. A peer that cannot accept a
// frame is logged and skipped; its disconnect path cleans it up.
func (c *Coordinator) deliver(out []Outbound) {
	for _, o := range out {
		for _, p := range c.recipients(o) {
			if err := p.Send(o.Message); err != nil {
				metrics.DeliveryFailures.Inc()
				c.logger.Warn().
					Err(err).
					Str("id", p.ID()).
					Str("type", string(o.Message.Type)).
					Msg("delivery failed")
			}
		}
	}
}

func (c *Coordinator) recipients(o Outbound) []Peer {
	switch o.Target {
	case TargetSelf:
		if p, ok := c.registry.Get(o.Origin); ok {
			return []Peer{p}
		}
		return nil
	case TargetAllExcept:
		return c.registry.AllExcept(o.Origin)
	default:
		return c.registry.All()
	}
}

func (c *Coordinator) closeAll() {
	for _, p := range c.registry.All() {
		if err := p.Close(); err != nil {
			c.logger.Debug().Err(err).Str("id", p.ID()).Msg("close failed")
		}
	}
}

// State reports where connection id is in its lifecycle.
func (c *Coordinator) State(id string) State {
	if _, ok := c.presence.Get(id); ok {
		return StateJoined
	}
	if _, ok := c.registry.Get(id); ok {
		return StateConnected
	}
	return StateDisconnected
}

// Users returns the joined users in join order.
func (c *Coordinator) Users() []models.User {
	return c.presence.List()
}

// Messages returns the newest limit messages, all of them when limit is zero.
func (c *Coordinator) Messages(limit int) []models.Message {
	return c.history.Last(limit)
}

// Typing returns the users currently shown as typing.
func (c *Coordinator) Typing() []models.User {
	return c.typing.Users()
}

func (c *Coordinator) ConnectionCount() int {
	return c.registry.Len()
}

func (c *Coordinator) UserCount() int {
	return c.presence.Len()
}

func sweepInterval(timeout time.Duration) time.Duration {
	interval := timeout / 4
	if interval < 50*time.Millisecond {
		interval = 50 * time.Millisecond
	}
	return interval
}

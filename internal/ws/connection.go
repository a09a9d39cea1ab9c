package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"huddle/internal/chat"
	"huddle/internal/models"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)

type wsConnection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type messageHub interface {
	Connect(p chat.Peer)
	Dispatch(id string, msg models.ClientMessage)
	Disconnect(id string)
	Done() <-chan struct{}
}

var _ chat.Peer = (*Connection)(nil)

type ConnectionConfig struct {
	SendBuffer   int
	WriteTimeout time.Duration
	// PingInterval of zero disables keepalive pings.
	PingInterval time.Duration
}

// Connection pumps frames between one websocket and the coordinator. It is
// the chat.Peer the coordinator delivers to.
type Connection struct {
	ws     wsConnection
	hub    messageHub
	codec  Codec
	id     string
	cfg    ConnectionConfig
	logger zerolog.Logger

	toClient  chan models.ServerMessage
	closed    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func NewConnection(
	hub messageHub,
	ws wsConnection,
	codec Codec,
	id string,
	cfg ConnectionConfig,
	logger zerolog.Logger,
) *Connection {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 1
	}
	return &Connection{
		ws:       ws,
		hub:      hub,
		codec:    codec,
		id:       id,
		cfg:      cfg,
		logger:   logger.With().Str("conn", id).Logger(),
		toClient: make(chan models.ServerMessage, cfg.SendBuffer),
		closed:   make(chan struct{}),
	}
}

func (c *Connection) ID() string {
	return c.id
}

// Send queues msg for the writer without blocking.
func (c *Connection) Send(msg models.ServerMessage) error {
	select {
	case <-c.closed:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.toClient <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close shuts the socket down. It is safe to call more than once and from
// any goroutine.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

// Handle registers the connection with the hub and runs it until the client
// goes away, the connection is closed, ctx is cancelled or the hub stops. The hub sees
// Disconnect only after the reader stopped, so no client event can follow it.
func (c *Connection) Handle(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.hub.Connect(c)
	defer c.hub.Disconnect(c.id)

	errorCh := make(chan error, 2)

	var wg sync.WaitGroup
	wg.Go(func() {
		errorCh <- c.readLoop()
		cancel()
	})

	wg.Go(func() {
		errorCh <- c.writeLoop(ctx)
		cancel()
	})

	var err error
	select {
	case err = <-errorCh:
	case <-ctx.Done():
	case <-c.hub.Done():
		c.logger.Debug().Msg("hub stopped, closing connection")
	}
	_ = c.Close()
	wg.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func (c *Connection) readLoop() error {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
				return nil
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return nil
			}
			return err
		}

		var msg models.ClientMessage
		if err := c.codec.Decode(data, &msg); err != nil {
			c.logger.Debug().Err(err).Msg("malformed frame ignored")
			continue
		}
		c.hub.Dispatch(c.id, msg)
	}
}

func (c *Connection) writeLoop(ctx context.Context) error {
	var ping <-chan time.Time
	if c.cfg.PingInterval > 0 {
		ticker := time.NewTicker(c.cfg.PingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case msg := <-c.toClient:
			data, err := c.codec.Encode(msg)
			if err != nil {
				c.logger.Error().Err(err).Str("type", string(msg.Type)).Msg("encode failed")
				continue
			}
			if err := c.write(c.codec.FrameType(), data); err != nil {
				return err
			}
		case <-ping:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return err
			}
		case <-c.closed:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Connection) write(messageType int, data []byte) error {
	if c.cfg.WriteTimeout > 0 {
		if err := c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
			return err
		}
	}
	return c.ws.WriteMessage(messageType, data)
}

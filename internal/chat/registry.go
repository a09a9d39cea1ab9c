package chat

import (
	"fmt"
	"sync"

	"huddle/internal/models"
)

// Peer is the coordinator's handle on a live connection. Send must not block:
// it queues the frame for the connection's own writer or fails.
type Peer interface {
	ID() string
	Send(msg models.ServerMessage) error
	Close() error
}

// Registry maps connection ids to live peers. Only the coordinator mutates
// it; the lock lets HTTP handlers read counts concurrently.
type Registry struct {
	peers ordered[Peer]
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{peers: newOrdered[Peer]()}
}

// Register admits a peer. Registering the same id twice is a programming
// error and panics.
func (r *Registry) Register(p Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.peers.has(p.ID()) {
		panic(fmt.Sprintf("chat: duplicate connection id %q", p.ID()))
	}
	r.peers.put(p.ID(), p)
}

// Unregister removes a peer and reports whether it was present. Unknown ids
// are a no-op.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.peers.remove(id)
	return ok
}

func (r *Registry) Get(id string) (Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.peers.get(id)
}

// All returns a snapshot of every registered peer in registration order.
func (r *Registry) All() []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.peers.list("")
}

// AllExcept is All without the peer registered under id.
func (r *Registry) AllExcept(id string) []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.peers.list(id)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.peers.len()
}

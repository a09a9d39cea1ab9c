package chat

import (
	"sync"

	"huddle/internal/models"
)

// Presence is the set of joined users keyed by connection id, kept in join
// order so that users_update lists are stable.
type Presence struct {
	users ordered[models.User]
	mu    sync.RWMutex
}

func NewPresence() *Presence {
	return &Presence{users: newOrdered[models.User]()}
}

func (p *Presence) Add(user models.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users.put(user.ID, user)
}

func (p *Presence) Remove(id string) (models.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.users.remove(id)
}

func (p *Presence) Get(id string) (models.User, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.users.get(id)
}

// List returns a copy of the joined users in join order.
func (p *Presence) List() []models.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.users.list("")
}

func (p *Presence) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.users.len()
}

package chat

import (
	"sort"
	"time"

	"github.com/c-pro/geche"

	"huddle/internal/models"
)

type typingEntry struct {
	user     models.User
	deadline time.Time
}

// Typing tracks which connections are composing a message. A zero deadline
// never expires.
type Typing struct {
	entries *geche.MapCache[string, typingEntry]
}

func NewTyping() *Typing {
	return &Typing{entries: geche.NewMapCache[string, typingEntry]()}
}

// Start adds or refreshes the entry for user.
func (t *Typing) Start(user models.User, deadline time.Time) {
	t.entries.Set(user.ID, typingEntry{user: user, deadline: deadline})
}

// Stop removes the entry for id and reports whether there was one.
func (t *Typing) Stop(id string) bool {
	if _, err := t.entries.Get(id); err != nil {
		return false
	}
	_ = t.entries.Del(id)
	return true
}

// Expired removes and returns the users whose deadline is at or before now,
// oldest joiner first.
func (t *Typing) Expired(now time.Time) []models.User {
	var expired []models.User
	for id, e := range t.entries.Snapshot() {
		if e.deadline.IsZero() || now.Before(e.deadline) {
			continue
		}
		_ = t.entries.Del(id)
		expired = append(expired, e.user)
	}
	sortUsers(expired)
	return expired
}

// Users returns everyone currently typing, oldest joiner first.
func (t *Typing) Users() []models.User {
	snapshot := t.entries.Snapshot()
	users := make([]models.User, 0, len(snapshot))
	for _, e := range snapshot {
		users = append(users, e.user)
	}
	sortUsers(users)
	return users
}

func (t *Typing) Len() int {
	return t.entries.Len()
}

func sortUsers(users []models.User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].JoinedAt.Equal(users[j].JoinedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].JoinedAt.Before(users[j].JoinedAt)
	})
}

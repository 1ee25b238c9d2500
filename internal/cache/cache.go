// Package cache maintains live local copies of the users and skills
// collections. Each remote snapshot fully replaces the cached sequence;
// consumers re-read after a change notification and never mutate the
// cache themselves.
package cache

import (
	"fmt"
	"sync"

	"github.com/ksteinfeldt/crewdeck/internal/roster"
	"github.com/ksteinfeldt/crewdeck/internal/store"
)

// Roster is the pair of live collection caches crewdeck renders from.
// Reads are safe from any goroutine; only subscription callbacks write.
type Roster struct {
	mu sync.RWMutex

	users  []roster.User
	skills []roster.Skill

	// Loading flags start true and flip false on the first snapshot or
	// error for their collection.
	usersLoading  bool
	skillsLoading bool

	usersErr  error
	skillsErr error

	subscribers []chan struct{}
	cancels     []store.CancelFunc
	closed      bool
}

// Open subscribes to the users and skills collections and returns the
// cache. The initial snapshots are applied before Open returns.
func Open(client store.Client, paths store.Paths) (*Roster, error) {
	r := &Roster{
		usersLoading:  true,
		skillsLoading: true,
	}

	cancelUsers, err := client.Subscribe(paths.Users, r.applyUsers, r.failUsers)
	if err != nil {
		return nil, fmt.Errorf("subscribing to users: %w", err)
	}
	r.cancels = append(r.cancels, cancelUsers)

	cancelSkills, err := client.Subscribe(paths.Skills, r.applySkills, r.failSkills)
	if err != nil {
		cancelUsers()
		return nil, fmt.Errorf("subscribing to skills: %w", err)
	}
	r.cancels = append(r.cancels, cancelSkills)

	return r, nil
}

// Close tears down both subscriptions.
func (r *Roster) Close() {
	r.mu.Lock()
	cancels := r.cancels
	r.cancels = nil
	r.closed = true
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// applyUsers replaces the users cache with a decoded, sorted snapshot.
func (r *Roster) applyUsers(docs []store.Document) {
	users := make([]roster.User, 0, len(docs))
	for _, doc := range docs {
		var u roster.User
		if err := doc.Decode(&u); err != nil {
			r.failUsers(fmt.Errorf("decoding user %s: %w", doc.ID, err))
			return
		}
		if u.ID == "" {
			u.ID = doc.ID
		}
		users = append(users, u)
	}
	roster.SortUsers(users)

	r.mu.Lock()
	r.users = users
	r.usersLoading = false
	r.usersErr = nil
	r.mu.Unlock()
	r.notify()
}

// applySkills replaces the skills cache with a decoded snapshot.
func (r *Roster) applySkills(docs []store.Document) {
	skills := make([]roster.Skill, 0, len(docs))
	for _, doc := range docs {
		var s roster.Skill
		if err := doc.Decode(&s); err != nil {
			r.failSkills(fmt.Errorf("decoding skill %s: %w", doc.ID, err))
			return
		}
		if s.ID == "" {
			s.ID = doc.ID
		}
		skills = append(skills, s)
	}

	r.mu.Lock()
	r.skills = skills
	r.skillsLoading = false
	r.skillsErr = nil
	r.mu.Unlock()
	r.notify()
}

func (r *Roster) failUsers(err error) {
	r.mu.Lock()
	r.usersErr = err
	r.usersLoading = false
	r.mu.Unlock()
	r.notify()
}

func (r *Roster) failSkills(err error) {
	r.mu.Lock()
	r.skillsErr = err
	r.skillsLoading = false
	r.mu.Unlock()
	r.notify()
}

// Users returns a copy of the cached, sorted user sequence.
func (r *Roster) Users() []roster.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]roster.User, len(r.users))
	copy(out, r.users)
	return out
}

// Skills returns a copy of the cached skill sequence.
func (r *Roster) Skills() []roster.Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]roster.Skill, len(r.skills))
	copy(out, r.skills)
	return out
}

// User looks up a cached user by ID.
func (r *Roster) User(id string) (roster.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return roster.FindUser(r.users, id)
}

// Loading reports whether either collection is still waiting for its
// first snapshot.
func (r *Roster) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.usersLoading || r.skillsLoading
}

// Err returns the first subscription error, if any.
func (r *Roster) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.usersErr != nil {
		return r.usersErr
	}
	return r.skillsErr
}

// Changes returns a channel that receives a (coalesced) signal after
// every cache replacement or subscription error. The channel is never
// closed; callers stop reading when they shut down.
func (r *Roster) Changes() <-chan struct{} {
	ch := make(chan struct{}, 1)
	r.mu.Lock()
	r.subscribers = append(r.subscribers, ch)
	r.mu.Unlock()
	return ch
}

// notify signals all change subscribers without blocking. A subscriber
// that has not drained its previous signal keeps the single pending
// one; full replacement semantics make intermediate signals redundant.
func (r *Roster) notify() {
	r.mu.RLock()
	subscribers := r.subscribers
	r.mu.RUnlock()
	for _, ch := range subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Package session owns the identity-session lifecycle: sign-in,
// sign-out, and resolving the session's roster profile from the store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/ksteinfeldt/crewdeck/internal/roster"
	"github.com/ksteinfeldt/crewdeck/internal/store"
)

var (
	// ErrNoSession indicates no sign-in has completed.
	ErrNoSession = errors.New("no active session")

	// ErrNoSecret indicates token sign-in was attempted without a
	// configured session secret.
	ErrNoSecret = errors.New("session secret not configured")
)

// Placeholder profile fields for lazily created users.
const (
	defaultWorkingHours = "9:00-17:00"
	defaultShiftPattern = "standard"
)

// Identity is what the identity provider knows about the session.
type Identity struct {
	// UID keys the user's profile document in the store.
	UID string

	// Name and Email are optional display hints carried by the token
	// or detected from the environment.
	Name  string
	Email string

	// Anonymous is true for sessions without a pre-issued token.
	Anonymous bool
}

// Provider establishes sessions and resolves the current roster
// profile. Readiness flips true exactly once per sign-in attempt,
// whether resolution succeeds or fails; a failed attempt leaves the
// current user unset so the caller lands in the signed-out state
// instead of waiting forever.
type Provider struct {
	client    store.Client
	usersPath string
	secret    []byte

	mu        sync.Mutex
	identity  *Identity
	current   *roster.User
	ready     bool
	listeners map[int]func(*roster.User)
	nextID    int
}

// NewProvider creates a Provider writing profiles to the given users
// collection. The secret verifies pre-issued session tokens; it may be
// empty when only anonymous sign-in is used.
func NewProvider(client store.Client, usersPath string, secret []byte) *Provider {
	return &Provider{
		client:    client,
		usersPath: usersPath,
		secret:    secret,
		listeners: make(map[int]func(*roster.User)),
	}
}

// SignInAnonymously establishes a session with a generated identity,
// enriched with whatever name and email the environment reveals.
func (p *Provider) SignInAnonymously(ctx context.Context) error {
	detected := Detect()
	identity := Identity{
		UID:       "anon-" + uuid.NewString(),
		Name:      detected.Name,
		Email:     detected.Email,
		Anonymous: true,
	}
	return p.establish(ctx, identity)
}

// SignInWithToken establishes a session from a pre-issued token.
func (p *Provider) SignInWithToken(ctx context.Context, token string) error {
	identity, err := p.parseToken(token)
	if err != nil {
		p.markReady(nil, nil)
		return fmt.Errorf("verifying session token: %w", err)
	}
	return p.establish(ctx, identity)
}

// SignInAs establishes a session for an explicit UID, bypassing the
// identity provider. Used by CLI runs where the operator is configured
// directly.
func (p *Provider) SignInAs(ctx context.Context, uid string) error {
	detected := Detect()
	return p.establish(ctx, Identity{UID: uid, Name: detected.Name, Email: detected.Email})
}

// establish resolves or lazily creates the profile for an identity and
// marks the provider ready.
func (p *Provider) establish(ctx context.Context, identity Identity) error {
	user, err := p.resolveProfile(ctx, identity)
	if err != nil {
		p.markReady(&identity, nil)
		return err
	}
	p.markReady(&identity, user)
	return nil
}

// resolveProfile looks up the user document keyed by the identity's
// UID, creating a default Viewer profile when none exists.
func (p *Provider) resolveProfile(ctx context.Context, identity Identity) (*roster.User, error) {
	var existing roster.User
	err := p.client.Get(ctx, p.usersPath, identity.UID, &existing)
	if err == nil {
		existing.ID = identity.UID
		if existing.Name == "" {
			existing.Name = identity.Name
		}
		if existing.Email == "" {
			existing.Email = identity.Email
		}
		return &existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("resolving profile: %w", err)
	}

	name := identity.Name
	if name == "" {
		name = identity.UID
	}
	fresh := roster.User{
		ID:           identity.UID,
		Name:         name,
		Email:        identity.Email,
		Role:         roster.RoleViewer,
		WorkingHours: defaultWorkingHours,
		ShiftPattern: defaultShiftPattern,
		SRThreshold:  0,
	}
	if err := p.client.Set(ctx, p.usersPath, identity.UID, fresh); err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}
	log.Printf("[session] created default profile for %s", identity.UID)
	return &fresh, nil
}

// markReady records the session outcome and notifies listeners. The
// ready flag only ever transitions to true.
func (p *Provider) markReady(identity *Identity, user *roster.User) {
	p.mu.Lock()
	p.identity = identity
	p.current = user
	p.ready = true
	listeners := make([]func(*roster.User), 0, len(p.listeners))
	for _, cb := range p.listeners {
		listeners = append(listeners, cb)
	}
	p.mu.Unlock()

	for _, cb := range listeners {
		cb(user)
	}
}

// SignOut clears the session. The provider stays ready.
func (p *Provider) SignOut() {
	p.mu.Lock()
	p.identity = nil
	p.current = nil
	listeners := make([]func(*roster.User), 0, len(p.listeners))
	for _, cb := range p.listeners {
		listeners = append(listeners, cb)
	}
	p.mu.Unlock()

	for _, cb := range listeners {
		cb(nil)
	}
}

// Ready reports whether a sign-in attempt has completed, successfully
// or not.
func (p *Provider) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// CurrentUser returns the resolved profile for the active session.
func (p *Provider) CurrentUser() (roster.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return roster.User{}, false
	}
	return *p.current, true
}

// UID returns the active session's identity key.
func (p *Provider) UID() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.identity == nil {
		return "", false
	}
	return p.identity.UID, true
}

// OnChange registers a callback invoked with the current user after
// every session change (sign-in, sign-out). Returns a cancel func.
func (p *Provider) OnChange(cb func(*roster.User)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = cb
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// RefreshFrom updates the current user from a cache snapshot, so a
// role edit observed through the live subscription reaches the router.
// Returns true if the current user value changed.
func (p *Provider) RefreshFrom(users []roster.User) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.identity == nil {
		return false
	}
	updated, ok := roster.FindUser(users, p.identity.UID)
	if !ok {
		return false
	}
	if p.current == nil {
		p.current = &updated
		return true
	}
	// Routing only cares about the role; everything else refreshes
	// silently.
	changed := p.current.Role != updated.Role
	*p.current = updated
	return changed
}

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/ksteinfeldt/crewdeck/internal/roster"
	"github.com/ksteinfeldt/crewdeck/internal/store"
)

const usersPath = "artifacts/test/public/data/users"

func TestProvider_SignInAsCreatesDefaultProfile(t *testing.T) {
	s := store.NewMemStore()
	p := NewProvider(s, usersPath, nil)
	ctx := context.Background()

	if err := p.SignInAs(ctx, "uid-1"); err != nil {
		t.Fatalf("SignInAs: %v", err)
	}

	if !p.Ready() {
		t.Error("provider should be ready after sign-in")
	}
	u, ok := p.CurrentUser()
	if !ok {
		t.Fatal("expected a current user")
	}
	if u.Role != roster.RoleViewer {
		t.Errorf("role = %s, want Viewer", u.Role)
	}
	if u.SRThreshold != 0 {
		t.Errorf("threshold = %d, want 0", u.SRThreshold)
	}
	if u.WorkingHours == "" || u.ShiftPattern == "" {
		t.Error("placeholder working hours and shift must be set")
	}

	// The profile was persisted under the identity key.
	var persisted roster.User
	if err := s.Get(ctx, usersPath, "uid-1", &persisted); err != nil {
		t.Fatalf("profile not persisted: %v", err)
	}
	if persisted.Role != roster.RoleViewer {
		t.Errorf("persisted role = %s", persisted.Role)
	}
}

func TestProvider_SignInResolvesExistingProfile(t *testing.T) {
	s := store.NewMemStore()
	ctx := context.Background()
	existing := roster.User{Name: "Ada", Role: roster.RoleAdmin, SRThreshold: 3}
	if err := s.Set(ctx, usersPath, "uid-2", existing); err != nil {
		t.Fatalf("Set: %v", err)
	}

	p := NewProvider(s, usersPath, nil)
	if err := p.SignInAs(ctx, "uid-2"); err != nil {
		t.Fatalf("SignInAs: %v", err)
	}

	u, ok := p.CurrentUser()
	if !ok || u.Role != roster.RoleAdmin || u.Name != "Ada" {
		t.Errorf("current user = %+v, %v", u, ok)
	}
	if writes := s.WriteCount(); writes != 1 {
		t.Errorf("existing profile must not be rewritten, writes = %d", writes)
	}
}

func TestProvider_FailureStillMarksReady(t *testing.T) {
	s := store.NewMemStore()
	s.FailWrites(errors.New("store unreachable"))
	p := NewProvider(s, usersPath, nil)

	err := p.SignInAs(context.Background(), "uid-3")
	if err == nil {
		t.Fatal("expected sign-in failure")
	}
	if !p.Ready() {
		t.Error("readiness must flip even on failure")
	}
	if _, ok := p.CurrentUser(); ok {
		t.Error("failed resolution must leave current user unset")
	}
}

func TestProvider_TokenSignIn(t *testing.T) {
	secret := []byte("test-secret")
	s := store.NewMemStore()
	p := NewProvider(s, usersPath, secret)
	ctx := context.Background()

	token, err := IssueToken(secret, "uid-4", "Tessa", "tessa@example.com")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if err := p.SignInWithToken(ctx, token); err != nil {
		t.Fatalf("SignInWithToken: %v", err)
	}
	u, ok := p.CurrentUser()
	if !ok || u.Name != "Tessa" || u.Email != "tessa@example.com" {
		t.Errorf("current user = %+v, %v", u, ok)
	}
	if uid, _ := p.UID(); uid != "uid-4" {
		t.Errorf("uid = %q", uid)
	}
}

func TestProvider_TokenSignInRejectsBadToken(t *testing.T) {
	p := NewProvider(store.NewMemStore(), usersPath, []byte("right"))
	ctx := context.Background()

	token, _ := IssueToken([]byte("wrong"), "uid-5", "", "")
	if err := p.SignInWithToken(ctx, token); err == nil {
		t.Fatal("expected verification failure")
	}
	if !p.Ready() {
		t.Error("readiness must flip on token failure")
	}
	if _, ok := p.CurrentUser(); ok {
		t.Error("no current user expected")
	}
}

func TestProvider_TokenSignInWithoutSecret(t *testing.T) {
	p := NewProvider(store.NewMemStore(), usersPath, nil)

	err := p.SignInWithToken(context.Background(), "anything")
	if !errors.Is(err, ErrNoSecret) {
		t.Errorf("expected ErrNoSecret, got: %v", err)
	}
}

func TestProvider_SignOutNotifies(t *testing.T) {
	s := store.NewMemStore()
	p := NewProvider(s, usersPath, nil)
	ctx := context.Background()

	var calls []*roster.User
	cancel := p.OnChange(func(u *roster.User) {
		calls = append(calls, u)
	})
	defer cancel()

	if err := p.SignInAs(ctx, "uid-6"); err != nil {
		t.Fatalf("SignInAs: %v", err)
	}
	p.SignOut()

	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	if calls[0] == nil {
		t.Error("sign-in callback should carry the user")
	}
	if calls[1] != nil {
		t.Error("sign-out callback should carry nil")
	}
	if _, ok := p.CurrentUser(); ok {
		t.Error("current user should be unset after sign-out")
	}
}

func TestProvider_RefreshFromDetectsRoleChange(t *testing.T) {
	s := store.NewMemStore()
	p := NewProvider(s, usersPath, nil)
	ctx := context.Background()

	if err := p.SignInAs(ctx, "uid-7"); err != nil {
		t.Fatalf("SignInAs: %v", err)
	}

	snapshot := []roster.User{{ID: "uid-7", Name: "user", Role: roster.RoleManager}}
	if !p.RefreshFrom(snapshot) {
		t.Error("role change must report changed")
	}
	u, _ := p.CurrentUser()
	if u.Role != roster.RoleManager {
		t.Errorf("role = %s, want Manager", u.Role)
	}

	// Same role again: no change signal.
	if p.RefreshFrom(snapshot) {
		t.Error("unchanged role must not report changed")
	}
}

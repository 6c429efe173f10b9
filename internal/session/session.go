// Package session keeps the app-level state that outlives a single screen:
// the sidebar preference and the display identity of the signed-in user.
package session

import (
	"context"
	"strconv"

	"github.com/constructsync/dashboard/internal/logger"
	"github.com/constructsync/dashboard/internal/storage"
)

// State is loaded once at startup and written back on every change.
type State struct {
	store storage.Store

	SidebarMinimized bool
	UserEmail        string
	UserName         string
}

// Load reads the persisted state. Missing keys leave their zero value.
func Load(ctx context.Context, store storage.Store) (*State, error) {
	s := &State{store: store}

	raw, ok, err := store.Get(ctx, storage.KeySidebarMinimized)
	if err != nil {
		return nil, err
	}
	if ok {
		s.SidebarMinimized, _ = strconv.ParseBool(raw)
	}

	if s.UserEmail, _, err = store.Get(ctx, storage.KeyUserEmail); err != nil {
		return nil, err
	}
	if s.UserName, _, err = store.Get(ctx, storage.KeyUserName); err != nil {
		return nil, err
	}
	return s, nil
}

// SignedIn reports whether identity fields are present.
func (s *State) SignedIn() bool {
	return s.UserEmail != ""
}

// DisplayName prefers the user's name over their email.
func (s *State) DisplayName() string {
	if s.UserName != "" {
		return s.UserName
	}
	return s.UserEmail
}

func (s *State) SetSidebarMinimized(ctx context.Context, minimized bool) error {
	s.SidebarMinimized = minimized
	return s.store.Set(ctx, storage.KeySidebarMinimized, strconv.FormatBool(minimized))
}

// ToggleSidebar flips the sidebar flag and persists it.
func (s *State) ToggleSidebar(ctx context.Context) error {
	return s.SetSidebarMinimized(ctx, !s.SidebarMinimized)
}

// Login records the identity display fields locally.
func (s *State) Login(ctx context.Context, email, name string) error {
	if err := s.store.Set(ctx, storage.KeyUserEmail, email); err != nil {
		return err
	}
	if err := s.store.Set(ctx, storage.KeyUserName, name); err != nil {
		return err
	}
	s.UserEmail, s.UserName = email, name
	logger.WithContext(ctx).WithField("user", email).Info("identity recorded")
	return nil
}

// Logout clears the identity fields and returns the route to show next. No
// server call is made.
func (s *State) Logout(ctx context.Context) (string, error) {
	if err := s.store.Delete(ctx, storage.KeyUserEmail, storage.KeyUserName); err != nil {
		return "", err
	}
	s.UserEmail, s.UserName = "", ""
	logger.WithContext(ctx).Info("identity cleared")
	return RouteLogin, nil
}

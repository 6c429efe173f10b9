// Package storage persists small pieces of local client state (UI preferences,
// identity display fields, wizard drafts) as JSON values under string keys.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Keys used by the dashboard.
const (
	KeyUserEmail        = "userEmail"
	KeyUserName         = "userName"
	KeySidebarMinimized = "sidebarMinimized"
	KeyAddJobGeneral    = "addJobGeneral"
	KeyAddJobTeam       = "addJobTeam"
	KeyAddJobSite       = "addJobSite"
	KeyPendingAssign    = "addJobPendingAssignment"
)

// Store is a durable string key/value store. Get returns ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// GetJSON decodes the value under key into out. ok is false when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, out interface{}) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v under key as JSON.
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(raw))
}

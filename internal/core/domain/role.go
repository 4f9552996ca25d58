package domain

import (
	"fmt"
	"sync"
)

// Role is the single authorization attribute carried by a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var (
	rolesMu    sync.RWMutex
	knownRoles = map[Role]struct{}{
		RoleUser:  {},
		RoleAdmin: {},
	}
)

// RegisterRole adds a role to the set of known roles. Call it during start-up,
// before routes are registered.
func RegisterRole(r Role) error {
	if r == "" {
		return fmt.Errorf("register role: empty name")
	}
	rolesMu.Lock()
	defer rolesMu.Unlock()
	knownRoles[r] = struct{}{}
	return nil
}

// ParseRole returns the Role named s, or an error when s is not a known role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	rolesMu.RLock()
	defer rolesMu.RUnlock()
	_, ok := knownRoles[r]
	return ok
}

func (r Role) String() string { return string(r) }

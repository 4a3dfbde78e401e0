// Package access carries the caller's capability tier through a request
package access

import (
	"context"
	"fmt"
	"strings"
)

// Tier is an ordered capability level
type Tier int

const (
	Guest Tier = iota
	Supervisor
	Admin
	SuperAdmin
)

var tierNames = []string{"Guest", "Supervisor", "Admin", "SuperAdmin"}

func (t Tier) String() string {
	if t < Guest || t > SuperAdmin {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// Allows reports whether t meets the required tier
func (t Tier) Allows(required Tier) bool {
	return t >= required
}

// ParseTier accepts a tier name (case-insensitive). Anything else is an error.
func ParseTier(s string) (Tier, error) {
	s = strings.TrimSpace(s)
	for i, name := range tierNames {
		if strings.EqualFold(s, name) {
			return Tier(i), nil
		}
	}
	return Guest, fmt.Errorf("unknown tier %q", s)
}

type ctxKey struct{}

// WithTier returns a context carrying t
func WithTier(ctx context.Context, t Tier) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// FromContext returns the tier on ctx, Guest when none was set
func FromContext(ctx context.Context) Tier {
	if t, ok := ctx.Value(ctxKey{}).(Tier); ok {
		return t
	}
	return Guest
}

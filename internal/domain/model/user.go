package model

import (
	"fmt"
	"strings"
	"time"

	"stockus-platform/internal/domain"

	"github.com/google/uuid"
)

// Tier is the access level used for content gating.
// TierAnonymous is never persisted; it is the tier of a request without a session.
type Tier string

const (
	TierAnonymous Tier = "anonymous"
	TierFree      Tier = "free"
	TierMember    Tier = "member"
)

func (t Tier) rank() int {
	switch t {
	case TierFree:
		return 1
	case TierMember:
		return 2
	default:
		return 0
	}
}

// AtLeast reports whether t grants the access of required.
func (t Tier) AtLeast(required Tier) bool { return t.rank() >= required.rank() }

func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierFree:
		return TierFree, nil
	case TierMember:
		return TierMember, nil
	case TierAnonymous:
		return TierAnonymous, nil
	}
	return "", fmt.Errorf("%w: unknown tier %q", domain.ErrInvalidArgument, s)
}

// TierTransition is the single place stored-tier changes are allowed to happen.
// Both the webhook reconciler and admin tier edits go through it, so the two
// call sites cannot drift apart. Valid transitions: free->member, member->free.
// Transitions to/from anonymous are rejected: anonymous is not a stored state.
func TierTransition(from, to Tier) (Tier, error) {
	if from == to {
		return to, nil
	}
	switch {
	case from == TierFree && to == TierMember:
		return TierMember, nil
	case from == TierMember && to == TierFree:
		return TierFree, nil
	}
	return "", fmt.Errorf("%w: tier transition %s -> %s", domain.ErrInvalidArgument, from, to)
}

// User is a registered account. Anonymous visitors have no row.
type User struct {
	ID           string // UUID
	Email        string
	Name         string
	PasswordHash string
	Tier         Tier
	IsAdmin      bool
	CreatedAt    time.Time
	LastActiveAt time.Time
}

func NewUser(id, email, name, passwordHash string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidArgument
	}
	if name == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:           id,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Tier:         TierFree,
		CreatedAt:    now,
		LastActiveAt: now,
	}, nil
}

func (u *User) Touch() { u.LastActiveAt = time.Now() }

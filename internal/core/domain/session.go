package domain

import "time"

// Session is the client-held proof of authentication for one browser slot.
type Session struct {
	Token    string
	Identity string
	// ExpiresAt is a storage hint only; zero means unknown.
	ExpiresAt time.Time
}

// Complete reports whether both the token and the identity are present.
// Partial sessions are treated as absent.
func (s Session) Complete() bool {
	return s.Token != "" && s.Identity != ""
}

// SlotTTL is how long a store keeps the slot: until the expiry hint when it
// lies in the future, otherwise def. The hint never makes Load reject a
// slot; only the store's own lifetime does.
func (s Session) SlotTTL(now time.Time, def time.Duration) time.Duration {
	if s.ExpiresAt.IsZero() {
		return def
	}
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return def
}

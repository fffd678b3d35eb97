// Package session holds the mutable per-session identity the signed client
// reads from and writes back to across requests.
package session

import (
	"encoding/json"
	"fmt"
)

// State carries every per-session identifier and token the remote service
// tracks. The signed client reads most fields when composing headers and
// overwrites the token fields from response headers.
//
// State is not internally synchronized. Concurrent senders sharing one State
// race on the token fields with last-write-wins semantics; callers needing
// ordering must serialize their requests.
type State struct {
	CSRFToken       string `json:"csrf_token"`
	DeviceUUID      string `json:"device_uuid"`
	DeviceID        string `json:"device_id"`
	PigeonSessionID string `json:"pigeon_session_id"`

	Authorization            string `json:"authorization"`
	WWWClaim                 string `json:"www_claim"`
	PasswordEncryptionKeyID  string `json:"password_encryption_key_id"`
	PasswordEncryptionPubKey string `json:"password_encryption_pub_key"`

	UserAgent string `json:"user_agent"`

	// Cookies reads values out of the jar shared with the HTTP transport.
	// The jar itself is owned and mutated by the transport, not by us.
	Cookies CookieSource `json:"-"`
}

// New builds a fresh State with generated device identifiers. The android
// device id derives deterministically from seed so the same account keeps
// the same device fingerprint across fresh sessions.
func New(seed, userAgent string) *State {
	return &State{
		DeviceUUID:      NewDeviceUUID(),
		DeviceID:        DeviceIDFromSeed(seed),
		PigeonSessionID: NewPigeonSessionID(),
		UserAgent:       userAgent,
	}
}

// CookieValue returns the named cookie's value, or "" when the jar has no
// such cookie or no jar is attached.
func (s *State) CookieValue(name string) string {
	if s == nil || s.Cookies == nil {
		return ""
	}
	return s.Cookies.CookieValue(name)
}

// Snapshot serializes the persistable portion of the state. The cookie
// source is excluded; cookies persist with the transport's jar.
func (s *State) Snapshot() ([]byte, error) {
	out, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session snapshot: %w", err)
	}
	return out, nil
}

// Restore rebuilds a State from a Snapshot payload.
func Restore(snapshot []byte) (*State, error) {
	var st State
	if err := json.Unmarshal(snapshot, &st); err != nil {
		return nil, fmt.Errorf("unmarshal session snapshot: %w", err)
	}
	return &st, nil
}

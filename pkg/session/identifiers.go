package session

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewDeviceUUID generates the random per-install device UUID.
func NewDeviceUUID() string { return uuid.NewString() }

// NewPigeonSessionID generates the opaque per-session tracking identifier
// the remote service expects in a header. Rotated whenever a new session
// starts; never persisted beyond the session it was minted for.
func NewPigeonSessionID() string { return uuid.NewString() }

// DeviceIDFromSeed derives the stable android device id from a caller seed,
// typically the account username. The remote side pairs this fingerprint
// with the account, so it must not change between logins.
func DeviceIDFromSeed(seed string) string {
	sum := md5.Sum([]byte(seed))
	return "android-" + hex.EncodeToString(sum[:])[:16]
}

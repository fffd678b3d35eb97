package signer

// Wire constants expected by the remote service. These mirror a specific
// client build and must not be recomputed or altered independently of each
// other; the remote side validates them as a set.
const (
	// SigKey is the HMAC-SHA256 key used to sign every request body.
	SigKey = "19ce5f445dbfd9d29c59dc2a78c616a7fc090a8e018b9267bc4240a30244c53b"

	// SigKeyVersion tags which signing key generation produced a signature.
	SigKeyVersion = "4"

	// BaseURL is the versioned API root all relative request paths resolve against.
	BaseURL = "https://i.instagram.com/api/v1/"

	// APIHost is the Host header value matching BaseURL.
	APIHost = "i.instagram.com"

	AppVersion     = "121.0.0.29.119"
	AppVersionCode = "185203708"
	AppID          = "567067343352427"
	AppLocale      = "en_US"

	Capabilities   = "3brTvw"
	ConnectionType = "WIFI"

	BloksVersionID = "1b030ce63a06c25f3e4de6aaaf6802fe1e76401bc5ab6e5fb85ed6c2d333e0c7"
)

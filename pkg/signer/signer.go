// Package signer produces the HMAC-signed body envelope the remote API
// requires on every form-encoded request.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// SignedBody is the two-field envelope sent instead of the plain JSON body.
type SignedBody struct {
	SigKeyVersion string
	SignedBody    string
}

// FormValues renders the envelope as the form fields the wire expects.
func (s SignedBody) FormValues() map[string]string {
	return map[string]string{
		"ig_sig_key_version": s.SigKeyVersion,
		"signed_body":        s.SignedBody,
	}
}

// Sign computes the lowercase hex HMAC-SHA256 digest of payload under the
// embedded signing key.
func Sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(SigKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignData serializes fields in insertion order and wraps the JSON in the
// signed envelope. The plain JSON never leaves this package unsigned.
func SignData(fields *Fields) (SignedBody, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return SignedBody{}, fmt.Errorf("marshal signed body: %w", err)
	}
	return SignedBody{
		SigKeyVersion: SigKeyVersion,
		SignedBody:    Sign(string(body)) + "." + string(body),
	}, nil
}

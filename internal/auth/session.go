package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint reduces a credential string to the digest the session registry
// stores. Raw credential strings never reach storage; registry presence
// without signature backing must not be enough to authorize a request.
func Fingerprint(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])
}

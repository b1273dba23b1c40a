// Package subjecthash derives stable, irreversible identifiers for data
// subjects whose quotes have been purged. The hash lets retention tooling
// recognize repeat deletion requests for the same subject without keeping
// any reversible reference to the member.
package subjecthash

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	iterations = 4096
	keyLength  = 32
)

// Hash derives a deterministic hex-encoded identifier from a subject id and
// a service-wide pepper. The same subject always hashes to the same value
// for a given pepper, and the subject id cannot be recovered from the output.
func Hash(subjectID string, pepper []byte) string {
	key := pbkdf2.Key([]byte(subjectID), pepper, iterations, keyLength, sha256.New)
	return hex.EncodeToString(key)
}

// Package tracking mints and validates the signed tracking identity that
// distinguishes visitors without any server-side session storage.
//
// A tracking identity is a composite value "originalId_hash": originalId is a
// random non-negative integer and hash is a keyed digest over
// originalId ++ userName ++ secret. Because the secret never leaves the
// process, a client cannot forge an identity, and an identity minted for one
// user never validates for another. Validation fails closed: an absent,
// malformed, or tampered value simply triggers a fresh mint.
package tracking

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"
)

// CookieName is the cookie under which the tracking identity travels.
const CookieName = "tracking_id"

// Hasher produces a fixed-length hex digest over arbitrary material.
// Implementations must be deterministic and preimage-resistant; they carry
// no other security requirement because tracking identities are short-lived.
type Hasher interface {
	Sum(material []byte) string
}

// SHA1Hasher is the default Hasher. SHA-1 keeps previously issued cookies
// valid across deployments; swap the Hasher on the Tracker to migrate.
type SHA1Hasher struct{}

// Sum returns the hex-encoded SHA-1 digest of material.
func (SHA1Hasher) Sum(material []byte) string {
	sum := sha1.Sum(material)
	return hex.EncodeToString(sum[:])
}

// Tracker mints and validates tracking identities with a fixed secret.
// It is stateless and safe for concurrent use.
type Tracker struct {
	secret string
	hasher Hasher
}

// New returns a Tracker signing with secret using the default SHA-1 hasher.
func New(secret string) *Tracker {
	return &Tracker{secret: secret, hasher: SHA1Hasher{}}
}

// NewWithHasher returns a Tracker using a caller-supplied digest algorithm.
func NewWithHasher(secret string, h Hasher) *Tracker {
	return &Tracker{secret: secret, hasher: h}
}

// Mint generates a fresh tracking identity for userName. The random part is
// drawn from crypto/rand; the hash binds it to userName and the secret.
func (t *Tracker) Mint(userName string) string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing means the process has no usable entropy source;
		// nothing sensible can continue.
		panic(err)
	}
	// Clear the sign bit so the decimal form is always non-negative.
	originalID := strconv.FormatUint(binary.BigEndian.Uint64(buf[:])&(1<<63-1), 10)
	return originalID + "_" + t.sign(originalID, userName)
}

// Validate reports whether cookieValue is a well-formed tracking identity
// minted for userName. It fails closed on empty input, on anything not
// splittable into exactly two "_"-delimited parts, and on hash mismatch.
func (t *Tracker) Validate(cookieValue, userName string) bool {
	if cookieValue == "" {
		return false
	}
	parts := strings.Split(cookieValue, "_")
	if len(parts) != 2 {
		return false
	}
	return t.sign(parts[0], userName) == parts[1]
}

// Resolve implements the validate-or-mint policy: a valid existing identity
// is returned unchanged (never rotated while valid); otherwise a fresh one is
// minted. The second return value tells the caller whether a new cookie must
// be written.
func (t *Tracker) Resolve(existing, userName string) (id string, minted bool) {
	if t.Validate(existing, userName) {
		return existing, false
	}
	return t.Mint(userName), true
}

func (t *Tracker) sign(originalID, userName string) string {
	return t.hasher.Sum([]byte(originalID + userName + t.secret))
}

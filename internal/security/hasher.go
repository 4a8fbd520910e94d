package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dom/blog-website/internal/domain"
	"golang.org/x/crypto/argon2"
)

const saltLength = 16
const keyLength = 32

// HashParams are the argon2id cost parameters. They bound both the latency
// of a login and the cost of an offline attack, so they must stay tunable
// per deployment.
type HashParams struct {
	TimeCost    uint32
	MemoryKiB   uint32
	Parallelism uint8
}

// Hasher hashes and verifies passwords with argon2id. An optional pepper is
// appended to the raw input before hashing; it never appears in the encoded
// output, so a leaked hash database alone is not enough to mount an offline
// attack. An empty pepper disables peppering.
type Hasher struct {
	params HashParams
	pepper string
}

func NewHasher(params HashParams, pepper string) *Hasher {
	return &Hasher{params: params, pepper: pepper}
}

// Hash returns an encoded argon2id hash of raw in the form
// $argon2id$v=19$m=...,t=...,p=...$<salt>$<digest>. The cost parameters are
// embedded so Verify keeps working after a parameter change.
func (h *Hasher) Hash(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: empty password", domain.ErrInvalidInput)
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrHashingFailed, err)
	}

	digest := argon2.IDKey([]byte(raw+h.pepper), salt, h.params.TimeCost, h.params.MemoryKiB, h.params.Parallelism, keyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKiB,
		h.params.TimeCost,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)
	return encoded, nil
}

// Verify reports whether raw matches the encoded hash. A structurally valid
// hash that simply does not match returns (false, nil); a malformed or
// corrupt hash is a hard ErrVerificationFailed, not a mismatch. The digest
// comparison is constant-time.
func (h *Hasher) Verify(raw, encoded string) (bool, error) {
	if raw == "" || encoded == "" {
		return false, fmt.Errorf("%w: empty password or hash", domain.ErrInvalidInput)
	}

	params, salt, digest, err := decodeHash(encoded)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}

	computed := argon2.IDKey([]byte(raw+h.pepper), salt, params.TimeCost, params.MemoryKiB, params.Parallelism, uint32(len(digest)))
	return subtle.ConstantTimeCompare(computed, digest) == 1, nil
}

func decodeHash(encoded string) (HashParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return HashParams{}, nil, nil, errors.New("malformed argon2id hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return HashParams{}, nil, nil, errors.New("malformed version field")
	}
	if version != argon2.Version {
		return HashParams{}, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var params HashParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.MemoryKiB, &params.TimeCost, &params.Parallelism); err != nil {
		return HashParams{}, nil, nil, errors.New("malformed parameter field")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return HashParams{}, nil, nil, errors.New("malformed salt")
	}
	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return HashParams{}, nil, nil, errors.New("malformed digest")
	}

	// argon2 panics on out-of-range parameters, so a hash that parses but
	// carries impossible costs is still malformed, not a mismatch.
	if params.TimeCost < 1 {
		return HashParams{}, nil, nil, errors.New("time cost out of range")
	}
	if params.Parallelism < 1 {
		return HashParams{}, nil, nil, errors.New("parallelism out of range")
	}
	if len(digest) < 4 {
		return HashParams{}, nil, nil, errors.New("digest too short")
	}

	return params, salt, digest, nil
}

package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/crypto/scrypt"
	"golang.org/x/sync/semaphore"
)

type (
	PlainText []byte

	// Hasher derives and checks credentials.
	//
	// A credential is "<derived-key-hex>.<salt-hex>", where the derived key
	// comes from scrypt(password, salt-hex, N=16384, r=8, p=1, 64 bytes).
	// The salt is used in its hex form, that is how the credentials seeded
	// by older tools were created, so keep it that way.
	Hasher struct {
		slots   *semaphore.Weighted
		entropy io.Reader
	}
)

const (
	saltSize = 16
	keySize  = 64

	scryptN = 1 << 14
	scryptR = 8
	scryptP = 1
)

// dummyCredential is checked when a login names an unknown account,
// so both failure paths pay for one derivation.
var dummyCredential = strings.Repeat("0", keySize*2) + "." + strings.Repeat("0", saltSize*2)

func (p PlainText) Zero() {
	for i := range p {
		p[i] = 0
	}
}

// NewHasher returns a hasher that allows at most workers derivations
// at the same time, workers <= 0 means one per CPU.
func NewHasher(workers int) *Hasher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Hasher{
		slots:   semaphore.NewWeighted(int64(workers)),
		entropy: rand.Reader,
	}
}

func (h *Hasher) Hash(ctx context.Context, passwd PlainText) (string, error) {
	var salt [saltSize]byte
	if _, err := io.ReadFull(h.entropy, salt[:]); err != nil {
		return "", fmt.Errorf("unable to generate salt, cause %w", err)
	}
	saltHex := hex.EncodeToString(salt[:])
	key, err := h.derive(ctx, passwd, []byte(saltHex))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%v.%v", hex.EncodeToString(key), saltHex), nil
}

// Verify reports whether passwd matches the credential. Malformed
// credentials and failed derivations are a mismatch, never an error.
func (h *Hasher) Verify(ctx context.Context, passwd PlainText, credential string) bool {
	parts := strings.Split(credential, ".")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) == 0 {
		return false
	}
	expected, err := hex.DecodeString(parts[0])
	if err != nil || len(expected) != keySize {
		return false
	}
	actual, err := h.derive(ctx, passwd, []byte(parts[1]))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(expected, actual) == 1
}

func (h *Hasher) derive(ctx context.Context, passwd PlainText, salt []byte) ([]byte, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("unable to acquire a derivation slot, cause %w", err)
	}
	defer h.slots.Release(1)
	key, err := scrypt.Key(passwd, salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("unable to derive key, cause %w", err)
	}
	return key, nil
}

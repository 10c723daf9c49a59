package users

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"runtime"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

const (
	argon2Memory  = 15000 // KiB
	argon2Time    = 2
	argon2Threads = 1
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

// PasswordHasher hashes and verifies passwords. Both operations block on
// CPU and honour ctx while waiting for a slot.
type PasswordHasher interface {
	Hash(ctx context.Context, password Password) (string, error)
	Verify(ctx context.Context, password Password, encodedHash string) (bool, error)
}

var _ PasswordHasher = (*Argon2idHasher)(nil)

// Argon2idHasher produces PHC encoded argon2id hashes. At most one hash per
// slot runs at a time.
type Argon2idHasher struct {
	slots   chan struct{}
	memory  uint32
	time    uint32
	threads uint8
}

type HasherOption func(*Argon2idHasher)

// WithHashSlots bounds the number of concurrent hash computations.
func WithHashSlots(n int) HasherOption {
	return func(h *Argon2idHasher) {
		if n > 0 {
			h.slots = make(chan struct{}, n)
		}
	}
}

// WithArgon2Params overrides the cost parameters used for new hashes.
func WithArgon2Params(memory, time uint32, threads uint8) HasherOption {
	return func(h *Argon2idHasher) {
		h.memory = memory
		h.time = time
		h.threads = threads
	}
}

func NewArgon2idHasher(opts ...HasherOption) *Argon2idHasher {
	h := &Argon2idHasher{
		slots:   make(chan struct{}, runtime.NumCPU()),
		memory:  argon2Memory,
		time:    argon2Time,
		threads: argon2Threads,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Argon2idHasher) acquire(ctx context.Context) error {
	select {
	case h.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return oops.Code("HASH_SLOT_UNAVAILABLE").Wrap(ctx.Err())
	}
}

func (h *Argon2idHasher) release() {
	<-h.slots
}

func (h *Argon2idHasher) Hash(ctx context.Context, password Password) (string, error) {
	if password.Expose() == "" {
		return "", oops.Code("HASH_EMPTY_PASSWORD").Wrap(ErrPasswordBlank)
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("HASH_SALT_FAILED").Wrap(err)
	}

	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password.Expose()), salt, h.time, h.memory, h.threads, argon2KeyLen)
	h.release()

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory,
		h.time,
		h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encodedHash. A malformed hash is
// an error wrapping ErrInvalidHash; a mismatch is (false, nil).
func (h *Argon2idHasher) Verify(ctx context.Context, password Password, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false, oops.Code("HASH_INVALID").Wrapf(ErrInvalidHash, "unexpected segment count %d", len(parts))
	}
	if parts[1] != "argon2id" {
		return false, oops.Code("HASH_INVALID").Wrapf(ErrInvalidHash, "unsupported algorithm %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, oops.Code("HASH_INVALID").Wrapf(ErrInvalidHash, "unsupported version %q", parts[2])
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, oops.Code("HASH_INVALID").Wrapf(ErrInvalidHash, "bad parameters %q", parts[3])
	}
	if threads == 0 || threads > 255 {
		return false, oops.Code("HASH_INVALID").Wrapf(ErrInvalidHash, "threads value %d out of range", threads)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code("HASH_INVALID").Wrapf(ErrInvalidHash, "salt: %v", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, oops.Code("HASH_INVALID").Wrapf(ErrInvalidHash, "key: %v", err)
	}
	if len(expected) == 0 || len(expected) > 1<<10 {
		return false, oops.Code("HASH_INVALID").Wrapf(ErrInvalidHash, "key length %d", len(expected))
	}

	if err := h.acquire(ctx); err != nil {
		return false, err
	}
	computed := argon2.IDKey([]byte(password.Expose()), salt, time, memory, uint8(threads), uint32(len(expected)))
	h.release()

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

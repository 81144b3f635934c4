// Package verifier issues and checks one-time verification codes bound to an
// email address. The plaintext code exists only in the dispatch channel; this
// package keeps a hash, so no request-visible state ever carries the code.
package verifier

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/devifer12/TableGenie/pkg/email"
)

// Sender delivers a code out-of-band. Implementations live in the mailer
// package; tests substitute a capturing fake.
type Sender interface {
	Send(ctx context.Context, address, code string) error
}

// Verifier is the contract the registration service consumes. Check is a pure
// comparison: no side effect on mismatch, and marking the token verified on
// match is the caller's job.
type Verifier interface {
	Dispatch(ctx context.Context, address string) error
	Check(ctx context.Context, address, code string) (bool, error)
}

type codeEntry struct {
	hash      [32]byte
	expiresAt time.Time
}

// Service is the production verifier: a fresh 6-digit code per dispatch,
// hashed at rest, expiring on its own TTL. Re-dispatching replaces the
// previous code for that address.
type Service struct {
	sender Sender
	ttl    time.Duration

	mu    sync.Mutex
	codes map[string]codeEntry // normalized email -> pending code
}

// New constructs a verifier delivering through the given sender.
func New(sender Sender, ttl time.Duration) *Service {
	return &Service{
		sender: sender,
		ttl:    ttl,
		codes:  make(map[string]codeEntry),
	}
}

// Dispatch generates a code, remembers its hash, and hands the plaintext to
// the sender. A failed send forgets the code so a stale one can never verify.
func (s *Service) Dispatch(ctx context.Context, address string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}

	key := email.Normalize(address)
	entry := codeEntry{hash: sha256.Sum256([]byte(code)), expiresAt: time.Now().Add(s.ttl)}

	s.mu.Lock()
	s.codes[key] = entry
	s.mu.Unlock()

	if err := s.sender.Send(ctx, address, code); err != nil {
		s.mu.Lock()
		delete(s.codes, key)
		s.mu.Unlock()
		return fmt.Errorf("dispatch verification code: %w", err)
	}
	return nil
}

// Check reports whether the submitted code matches the pending one for the
// address. Expired or absent codes compare as false.
func (s *Service) Check(_ context.Context, address, code string) (bool, error) {
	key := email.Normalize(address)

	s.mu.Lock()
	entry, ok := s.codes[key]
	s.mu.Unlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return false, nil
	}
	submitted := sha256.Sum256([]byte(code))
	return subtle.ConstantTimeCompare(entry.hash[:], submitted[:]) == 1, nil
}

// generateCode returns a uniformly random 6-digit numeric code.
func generateCode() (string, error) {
	// Rejection sampling keeps the distribution uniform over [0, 1e6).
	const bound = 1_000_000
	const limit = (1 << 32) / bound * bound
	for {
		var buf [4]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return "", fmt.Errorf("generate verification code: %w", err)
		}
		n := binary.BigEndian.Uint32(buf[:])
		if n < limit {
			return fmt.Sprintf("%06d", n%bound), nil
		}
	}
}

// Fixed is the deterministic comparator for tests and local development. It
// accepts exactly one code and never sends anything. This is configuration, a
// substitute for the real comparator, not a bypass inside it.
type Fixed struct {
	code string
}

// NewFixed constructs a fixed-code verifier.
func NewFixed(code string) *Fixed {
	return &Fixed{code: code}
}

func (f *Fixed) Dispatch(_ context.Context, _ string) error { return nil }

func (f *Fixed) Check(_ context.Context, _ string, code string) (bool, error) {
	return subtle.ConstantTimeCompare([]byte(f.code), []byte(code)) == 1, nil
}

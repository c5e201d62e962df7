package repository

import (
	"context"
	"sync"
	"time"

	"github.com/piresc/otpauth/internal/pkg/models"
)

// MemoryLedger is the in-process OTP ledger. Entries are lost on restart.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]models.OTP
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryLedger creates an in-process ledger; ttl 0 keeps codes until
// they are overwritten or consumed
func NewMemoryLedger(ttl time.Duration) *MemoryLedger {
	return &MemoryLedger{
		entries: make(map[string]models.OTP),
		ttl:     ttl,
		now:     time.Now,
	}
}

// PutOTP stores code for email, replacing any previous entry
func (l *MemoryLedger) PutOTP(ctx context.Context, email, code string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	entry := models.OTP{Email: email, Code: code, CreatedAt: now}
	if l.ttl > 0 {
		entry.ExpiresAt = now.Add(l.ttl)
	}
	l.entries[email] = entry
	return nil
}

// PeekOTP returns the live code for email
func (l *MemoryLedger) PeekOTP(ctx context.Context, email string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.lookup(email)
	if !ok {
		return "", false, nil
	}
	return entry.Code, true, nil
}

// ConsumeOTP removes the entry for email
func (l *MemoryLedger) ConsumeOTP(ctx context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, email)
	return nil
}

// ConsumeOTPIfMatch removes the entry only if it still holds code
func (l *MemoryLedger) ConsumeOTPIfMatch(ctx context.Context, email, code string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.lookup(email)
	if !ok || entry.Code != code {
		return false, nil
	}
	delete(l.entries, email)
	return true, nil
}

// lookup must be called with mu held; expired entries are dropped
func (l *MemoryLedger) lookup(email string) (models.OTP, bool) {
	entry, ok := l.entries[email]
	if !ok {
		return models.OTP{}, false
	}
	if entry.Expired(l.now()) {
		delete(l.entries, email)
		return models.OTP{}, false
	}
	return entry, true
}

// sweep drops every expired entry; mu must be held
func (l *MemoryLedger) sweep(now time.Time) {
	for email, entry := range l.entries {
		if entry.Expired(now) {
			delete(l.entries, email)
		}
	}
}

// MemoryVerificationStore keeps verification marks in process
type MemoryVerificationStore struct {
	mu       sync.Mutex
	verified map[string]time.Time
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryVerificationStore creates a store whose marks expire after ttl
// (0 means never)
func NewMemoryVerificationStore(ttl time.Duration) *MemoryVerificationStore {
	return &MemoryVerificationStore{
		verified: make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
}

// MarkVerified records that email passed OTP verification
func (s *MemoryVerificationStore) MarkVerified(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for e, expiresAt := range s.verified {
		if !expiresAt.IsZero() && !now.Before(expiresAt) {
			delete(s.verified, e)
		}
	}

	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = now.Add(s.ttl)
	}
	s.verified[email] = expiresAt
	return nil
}

// ConsumeVerified reports whether email holds a live mark and clears it
func (s *MemoryVerificationStore) ConsumeVerified(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.verified[email]
	if !ok {
		return false, nil
	}
	delete(s.verified, email)

	if !expiresAt.IsZero() && !s.now().Before(expiresAt) {
		return false, nil
	}
	return true, nil
}

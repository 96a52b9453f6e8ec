package verification

import (
	"context"
	"sync"
	"time"

	"github.com/propertyplus/propertyplus/internal/security"
	"github.com/propertyplus/propertyplus/internal/types"
	"github.com/propertyplus/propertyplus/internal/util"
)

type sessionKey struct {
	subject string
	purpose types.VerificationPurpose
}

// MemoryStore keeps verification sessions in process memory. It is the
// default Store for single-instance deployments and for tests; multi-replica
// setups need the database-backed store instead.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[sessionKey]*types.VerificationSession
	config   Config
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

type MemoryStoreOption func(*MemoryStore)

// WithNowFunc replaces the clock. Tests use this to step through resend and
// expiry windows without sleeping.
func WithNowFunc(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(config Config, opts ...MemoryStoreOption) *MemoryStore {
	store := &MemoryStore{
		sessions: make(map[sessionKey]*types.VerificationSession),
		config:   config.WithDefaults(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *MemoryStore) IssueOrReuse(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := sessionKey{subject, purpose}
	if existing, ok := s.sessions[key]; ok &&
		existing.Code != nil &&
		existing.ConsumedAt == nil &&
		now.Sub(existing.IssuedAt) < s.config.ResendWindow &&
		now.Sub(existing.IssuedAt) < s.config.ExpiryWindow {
		return *existing.Code, false, nil
	}

	code, err := security.GenerateVerificationCode()
	if err != nil {
		return "", false, err
	}
	s.sessions[key] = &types.VerificationSession{
		Subject:  subject,
		Purpose:  purpose,
		Code:     &code,
		IssuedAt: now,
	}
	return code, true, nil
}

func (s *MemoryStore) Verify(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
	code string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	session, ok := s.sessions[sessionKey{subject, purpose}]
	if !ok || session.ConsumedAt != nil || session.Code == nil {
		return ErrNoActiveSession
	}
	if now.Sub(session.IssuedAt) >= s.config.ExpiryWindow {
		// kept around so the caller can still observe the expiry
		return ErrSessionExpired
	}
	if s.config.MaxAttempts > 0 && session.Attempts >= s.config.MaxAttempts {
		return ErrTooManyAttempts
	}
	if security.NormalizeVerificationCode(code) != *session.Code {
		session.Attempts++
		return ErrCodeMismatch
	}
	if session.VerifiedAt == nil {
		session.VerifiedAt = util.PtrTo(now)
	}
	return nil
}

func (s *MemoryStore) GrantVerified(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sessions[sessionKey{subject, purpose}] = &types.VerificationSession{
		Subject:    subject,
		Purpose:    purpose,
		IssuedAt:   now,
		VerifiedAt: util.PtrTo(now),
	}
	return nil
}

func (s *MemoryStore) Consume(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	session, ok := s.sessions[sessionKey{subject, purpose}]
	if !ok {
		return ErrNoActiveSession
	}
	if session.ConsumedAt != nil {
		return ErrAlreadyConsumed
	}
	if session.VerifiedAt == nil {
		return ErrNotVerified
	}
	// codeless grants never pass through Verify, so their expiry is
	// enforced here
	if session.Code == nil && now.Sub(session.IssuedAt) >= s.config.ExpiryWindow {
		return ErrSessionExpired
	}
	session.ConsumedAt = util.PtrTo(now)
	return nil
}

func (s *MemoryStore) Discard(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey{subject, purpose})
	return nil
}

// Cleanup drops sessions issued more than olderThan ago and returns how many
// were removed. The periodic cleanup job calls this so that abandoned
// sessions do not accumulate.
func (s *MemoryStore) Cleanup(olderThan time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, session := range s.sessions {
		if now.Sub(session.IssuedAt) > olderThan {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed
}

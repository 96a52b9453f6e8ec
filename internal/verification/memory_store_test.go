package verification_test

import (
	"context"
	"testing"
	"time"

	"github.com/propertyplus/propertyplus/internal/types"
	"github.com/propertyplus/propertyplus/internal/verification"
	. "github.com/onsi/gomega"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(config verification.Config) (*verification.MemoryStore, *testClock) {
	clock := &testClock{now: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)}
	return verification.NewMemoryStore(config, verification.WithNowFunc(clock.Now)), clock
}

// wrongCodeFor picks a code that is guaranteed not to match.
func wrongCodeFor(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func TestIssueOrReuse(t *testing.T) {
	g := NewWithT(t)
	store, _ := newTestStore(verification.Config{})
	ctx := context.Background()

	code, isNew, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(isNew).To(BeTrue())
	g.Expect(code).To(MatchRegexp("^[0-9]{6}$"))
}

func TestIssueOrReuse_ResendWindow(t *testing.T) {
	g := NewWithT(t)
	store, clock := newTestStore(verification.Config{})
	ctx := context.Background()

	code, _, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())

	clock.Advance(59 * time.Second)
	reused, isNew, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(isNew).To(BeFalse())
	g.Expect(reused).To(Equal(code))

	clock.Advance(2 * time.Second)
	_, isNew, err = store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(isNew).To(BeTrue())
}

func TestIssueOrReuse_AfterConsume(t *testing.T) {
	g := NewWithT(t)
	store, _ := newTestStore(verification.Config{})
	ctx := context.Background()

	code, _, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(store.Verify(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, code)).To(Succeed())
	g.Expect(store.Consume(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)).To(Succeed())

	_, isNew, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(isNew).To(BeTrue())
}

func TestVerify(t *testing.T) {
	g := NewWithT(t)
	store, _ := newTestStore(verification.Config{})
	ctx := context.Background()

	code, _, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposePasswordReset)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(store.Verify(ctx, "alice@example.com", types.VerificationPurposePasswordReset, code)).To(Succeed())
	// verifying an already verified session is a no-op
	g.Expect(store.Verify(ctx, "alice@example.com", types.VerificationPurposePasswordReset, code)).To(Succeed())
}

func TestVerify_NoActiveSession(t *testing.T) {
	g := NewWithT(t)
	store, _ := newTestStore(verification.Config{})
	ctx := context.Background()

	err := store.Verify(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, "123456")
	g.Expect(err).To(MatchError(verification.ErrNoActiveSession))
}

func TestVerify_Mismatch(t *testing.T) {
	g := NewWithT(t)
	store, _ := newTestStore(verification.Config{})
	ctx := context.Background()

	code, _, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())

	err = store.Verify(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, wrongCodeFor(code))
	g.Expect(err).To(MatchError(verification.ErrCodeMismatch))

	// by default there is no attempt limit and the session survives mismatches
	g.Expect(store.Verify(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, code)).To(Succeed())
}

func TestVerify_Expiry(t *testing.T) {
	g := NewWithT(t)
	store, clock := newTestStore(verification.Config{})
	ctx := context.Background()

	code, _, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())

	clock.Advance(10 * time.Minute)
	err = store.Verify(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, code)
	g.Expect(err).To(MatchError(verification.ErrSessionExpired))

	// the expired session stays observable instead of being dropped
	err = store.Verify(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, code)
	g.Expect(err).To(MatchError(verification.ErrSessionExpired))
}

func TestVerify_JustBeforeExpiry(t *testing.T) {
	g := NewWithT(t)
	store, clock := newTestStore(verification.Config{})
	ctx := context.Background()

	code, _, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())

	clock.Advance(10*time.Minute - time.Second)
	g.Expect(store.Verify(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, code)).To(Succeed())
}

func TestVerify_ReuseDoesNotExtendExpiry(t *testing.T) {
	g := NewWithT(t)
	store, clock := newTestStore(verification.Config{ResendWindow: 5 * time.Minute})
	ctx := context.Background()

	code, _, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())

	clock.Advance(4 * time.Minute)
	_, isNew, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(isNew).To(BeFalse())

	clock.Advance(6 * time.Minute)
	err = store.Verify(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, code)
	g.Expect(err).To(MatchError(verification.ErrSessionExpired))
}

func TestVerify_MaxAttempts(t *testing.T) {
	g := NewWithT(t)
	store, _ := newTestStore(verification.Config{MaxAttempts: 3})
	ctx := context.Background()

	code, _, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())

	for i := 0; i < 3; i++ {
		err := store.Verify(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, wrongCodeFor(code))
		g.Expect(err).To(MatchError(verification.ErrCodeMismatch))
	}

	// even the correct code is rejected once the limit is reached
	err = store.Verify(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, code)
	g.Expect(err).To(MatchError(verification.ErrTooManyAttempts))
}

func TestVerify_CodeNormalization(t *testing.T) {
	g := NewWithT(t)
	store, _ := newTestStore(verification.Config{})
	ctx := context.Background()

	code, _, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(store.Verify(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, " "+code+"\n")).To(Succeed())
	g.Expect(store.Verify(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, code[:3]+" "+code[3:])).To(Succeed())
}

func TestConsume(t *testing.T) {
	g := NewWithT(t)
	store, _ := newTestStore(verification.Config{})
	ctx := context.Background()

	code, _, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeAccountDelete)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(store.Verify(ctx, "alice@example.com", types.VerificationPurposeAccountDelete, code)).To(Succeed())

	g.Expect(store.Consume(ctx, "alice@example.com", types.VerificationPurposeAccountDelete)).To(Succeed())

	err = store.Consume(ctx, "alice@example.com", types.VerificationPurposeAccountDelete)
	g.Expect(err).To(MatchError(verification.ErrAlreadyConsumed))

	err = store.Verify(ctx, "alice@example.com", types.VerificationPurposeAccountDelete, code)
	g.Expect(err).To(MatchError(verification.ErrNoActiveSession))
}

func TestConsume_NotVerified(t *testing.T) {
	g := NewWithT(t)
	store, _ := newTestStore(verification.Config{})
	ctx := context.Background()

	code, _, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())

	err = store.Consume(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).To(MatchError(verification.ErrNotVerified))

	// the failed consume must not invalidate the pending code
	g.Expect(store.Verify(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, code)).To(Succeed())
}

func TestConsume_NoActiveSession(t *testing.T) {
	g := NewWithT(t)
	store, _ := newTestStore(verification.Config{})
	ctx := context.Background()

	err := store.Consume(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).To(MatchError(verification.ErrNoActiveSession))
}

func TestGrantVerified(t *testing.T) {
	g := NewWithT(t)
	store, _ := newTestStore(verification.Config{})
	ctx := context.Background()

	g.Expect(store.GrantVerified(ctx, "alice@example.com", types.VerificationPurposePasswordChange)).To(Succeed())

	// granted sessions carry no code for Verify to check
	err := store.Verify(ctx, "alice@example.com", types.VerificationPurposePasswordChange, "123456")
	g.Expect(err).To(MatchError(verification.ErrNoActiveSession))

	g.Expect(store.Consume(ctx, "alice@example.com", types.VerificationPurposePasswordChange)).To(Succeed())
}

func TestGrantVerified_Expiry(t *testing.T) {
	g := NewWithT(t)
	store, clock := newTestStore(verification.Config{})
	ctx := context.Background()

	g.Expect(store.GrantVerified(ctx, "alice@example.com", types.VerificationPurposePasswordChange)).To(Succeed())

	clock.Advance(10 * time.Minute)
	err := store.Consume(ctx, "alice@example.com", types.VerificationPurposePasswordChange)
	g.Expect(err).To(MatchError(verification.ErrSessionExpired))
}

func TestDiscard(t *testing.T) {
	g := NewWithT(t)
	store, _ := newTestStore(verification.Config{})
	ctx := context.Background()

	code, _, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(store.Discard(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)).To(Succeed())

	err = store.Verify(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, code)
	g.Expect(err).To(MatchError(verification.ErrNoActiveSession))

	// discarding a missing session is fine
	g.Expect(store.Discard(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)).To(Succeed())
}

func TestPurposeIsolation(t *testing.T) {
	g := NewWithT(t)
	store, _ := newTestStore(verification.Config{})
	ctx := context.Background()

	signupCode, _, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())
	_, _, err = store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposePasswordReset)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(store.Verify(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, signupCode)).To(Succeed())
	g.Expect(store.Consume(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)).To(Succeed())

	err = store.Consume(ctx, "alice@example.com", types.VerificationPurposePasswordReset)
	g.Expect(err).To(MatchError(verification.ErrNotVerified))
}

func TestSubjectIsolation(t *testing.T) {
	g := NewWithT(t)
	store, _ := newTestStore(verification.Config{})
	ctx := context.Background()

	_, _, err := store.IssueOrReuse(ctx, "alice@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).NotTo(HaveOccurred())

	err = store.Consume(ctx, "bob@example.com", types.VerificationPurposeSignupEmail)
	g.Expect(err).To(MatchError(verification.ErrNoActiveSession))
}

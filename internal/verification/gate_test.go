package verification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/propertyplus/propertyplus/internal/types"
	"github.com/propertyplus/propertyplus/internal/verification"
	. "github.com/onsi/gomega"
)

const testSecret = "hunter2"

func newTestGate(policies map[types.VerificationPurpose]verification.Policy) *verification.Gate {
	store := verification.NewMemoryStore(verification.Config{})
	secondaryFactor := func(ctx context.Context, subject string, secret string) error {
		if secret != testSecret {
			return errors.New("secret does not match")
		}
		return nil
	}
	return verification.NewGate(store, secondaryFactor, policies)
}

func captureDeliver(delivered *[]string) verification.DeliverFunc {
	return func(ctx context.Context, subject string, code string) error {
		*delivered = append(*delivered, code)
		return nil
	}
}

func TestGateRequestCode(t *testing.T) {
	g := NewWithT(t)
	gate := newTestGate(map[types.VerificationPurpose]verification.Policy{
		types.VerificationPurposeSignupEmail: {},
	})
	ctx := context.Background()

	var delivered []string
	required, err := gate.RequestCode(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, captureDeliver(&delivered))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(required).To(BeTrue())
	g.Expect(delivered).To(HaveLen(1))

	g.Expect(gate.ConfirmCode(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, delivered[0])).To(Succeed())
}

func TestGateRequestCode_RepeatedWithinWindow(t *testing.T) {
	g := NewWithT(t)
	gate := newTestGate(map[types.VerificationPurpose]verification.Policy{
		types.VerificationPurposeSignupEmail: {},
	})
	ctx := context.Background()

	var delivered []string
	deliver := captureDeliver(&delivered)
	_, err := gate.RequestCode(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, deliver)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = gate.RequestCode(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, deliver)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(delivered).To(HaveLen(2))
	g.Expect(delivered[1]).To(Equal(delivered[0]))
}

func TestGateRequestCode_PrecheckFailed(t *testing.T) {
	g := NewWithT(t)
	gate := newTestGate(map[types.VerificationPurpose]verification.Policy{
		types.VerificationPurposeSignupEmail: {
			Precheck: func(ctx context.Context, subject string) error {
				return verification.ErrPreconditionFailed
			},
		},
	})
	ctx := context.Background()

	var delivered []string
	_, err := gate.RequestCode(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, captureDeliver(&delivered))
	g.Expect(err).To(MatchError(verification.ErrPreconditionFailed))
	g.Expect(delivered).To(BeEmpty())
}

func TestGateRequestCode_CodeNotRequired(t *testing.T) {
	g := NewWithT(t)
	gate := newTestGate(map[types.VerificationPurpose]verification.Policy{
		types.VerificationPurposePasswordChange: {
			CodeRequired: func(ctx context.Context, subject string) (bool, error) { return false, nil },
		},
	})
	ctx := context.Background()

	var delivered []string
	required, err := gate.RequestCode(ctx, "alice@example.com", types.VerificationPurposePasswordChange, captureDeliver(&delivered))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(required).To(BeFalse())
	g.Expect(delivered).To(BeEmpty())

	err = gate.ConfirmCode(ctx, "alice@example.com", types.VerificationPurposePasswordChange, "123456")
	g.Expect(err).To(MatchError(verification.ErrNoActiveSession))
}

func TestGateRequestCode_DeliveryFailed(t *testing.T) {
	g := NewWithT(t)
	gate := newTestGate(map[types.VerificationPurpose]verification.Policy{
		types.VerificationPurposeSignupEmail: {},
	})
	ctx := context.Background()

	var delivered []string
	failingDeliver := func(ctx context.Context, subject string, code string) error {
		delivered = append(delivered, code)
		return errors.New("smtp unreachable")
	}
	required, err := gate.RequestCode(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, failingDeliver)
	g.Expect(err).To(MatchError(verification.ErrDeliveryFailed))
	g.Expect(required).To(BeTrue())

	// the session survives the failed delivery and a retry resends the same code
	_, err = gate.RequestCode(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, captureDeliver(&delivered))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(delivered).To(HaveLen(2))
	g.Expect(delivered[1]).To(Equal(delivered[0]))

	g.Expect(gate.ConfirmCode(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, delivered[0])).To(Succeed())
}

func TestGateConfirmCode_Mismatch(t *testing.T) {
	g := NewWithT(t)
	gate := newTestGate(map[types.VerificationPurpose]verification.Policy{
		types.VerificationPurposeSignupEmail: {},
	})
	ctx := context.Background()

	var delivered []string
	_, err := gate.RequestCode(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, captureDeliver(&delivered))
	g.Expect(err).NotTo(HaveOccurred())

	err = gate.ConfirmCode(ctx, "alice@example.com", types.VerificationPurposeSignupEmail, wrongCodeFor(delivered[0]))
	g.Expect(err).To(MatchError(verification.ErrCodeMismatch))
}

func TestGateConfirmSecondary(t *testing.T) {
	g := NewWithT(t)
	gate := newTestGate(map[types.VerificationPurpose]verification.Policy{
		types.VerificationPurposePasswordChange: {
			CodeRequired: func(ctx context.Context, subject string) (bool, error) { return false, nil },
		},
	})
	ctx := context.Background()

	g.Expect(gate.ConfirmSecondary(ctx, "alice@example.com", types.VerificationPurposePasswordChange, testSecret)).To(Succeed())

	ran := 0
	err := gate.Execute(ctx, "alice@example.com", types.VerificationPurposePasswordChange, "",
		func(ctx context.Context) error { ran++; return nil })
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ran).To(Equal(1))
}

func TestGateConfirmSecondary_WrongSecret(t *testing.T) {
	g := NewWithT(t)
	gate := newTestGate(map[types.VerificationPurpose]verification.Policy{
		types.VerificationPurposePasswordChange: {
			CodeRequired: func(ctx context.Context, subject string) (bool, error) { return false, nil },
		},
	})
	ctx := context.Background()

	err := gate.ConfirmSecondary(ctx, "alice@example.com", types.VerificationPurposePasswordChange, "wrong")
	g.Expect(err).To(MatchError(verification.ErrSecondaryFactorFailed))

	err = gate.Execute(ctx, "alice@example.com", types.VerificationPurposePasswordChange, "",
		func(ctx context.Context) error { return nil })
	g.Expect(err).To(MatchError(verification.ErrNoActiveSession))
}

func TestGateConfirmSecondary_CodeRequired(t *testing.T) {
	g := NewWithT(t)
	gate := newTestGate(map[types.VerificationPurpose]verification.Policy{
		types.VerificationPurposePasswordChange: {},
	})
	ctx := context.Background()

	err := gate.ConfirmSecondary(ctx, "alice@example.com", types.VerificationPurposePasswordChange, testSecret)
	g.Expect(err).To(MatchError(verification.ErrPreconditionFailed))
}

func TestGateExecute(t *testing.T) {
	g := NewWithT(t)
	gate := newTestGate(map[types.VerificationPurpose]verification.Policy{
		types.VerificationPurposePasswordReset: {},
	})
	ctx := context.Background()

	var delivered []string
	_, err := gate.RequestCode(ctx, "alice@example.com", types.VerificationPurposePasswordReset, captureDeliver(&delivered))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(gate.ConfirmCode(ctx, "alice@example.com", types.VerificationPurposePasswordReset, delivered[0])).To(Succeed())

	ran := 0
	action := func(ctx context.Context) error { ran++; return nil }
	g.Expect(gate.Execute(ctx, "alice@example.com", types.VerificationPurposePasswordReset, "", action)).To(Succeed())
	g.Expect(ran).To(Equal(1))

	// one confirmation pays for exactly one execution
	err = gate.Execute(ctx, "alice@example.com", types.VerificationPurposePasswordReset, "", action)
	g.Expect(err).To(MatchError(verification.ErrNoActiveSession))
	g.Expect(ran).To(Equal(1))
}

func TestGateExecute_NotVerified(t *testing.T) {
	g := NewWithT(t)
	gate := newTestGate(map[types.VerificationPurpose]verification.Policy{
		types.VerificationPurposePasswordReset: {},
	})
	ctx := context.Background()

	var delivered []string
	_, err := gate.RequestCode(ctx, "alice@example.com", types.VerificationPurposePasswordReset, captureDeliver(&delivered))
	g.Expect(err).NotTo(HaveOccurred())

	ran := 0
	err = gate.Execute(ctx, "alice@example.com", types.VerificationPurposePasswordReset, "",
		func(ctx context.Context) error { ran++; return nil })
	g.Expect(err).To(MatchError(verification.ErrNotVerified))
	g.Expect(ran).To(BeZero())
}

func TestGateExecute_SecondaryOnExecute(t *testing.T) {
	g := NewWithT(t)
	gate := newTestGate(map[types.VerificationPurpose]verification.Policy{
		types.VerificationPurposeAccountDelete: {SecondaryOnExecute: true},
	})
	ctx := context.Background()

	var delivered []string
	_, err := gate.RequestCode(ctx, "alice@example.com", types.VerificationPurposeAccountDelete, captureDeliver(&delivered))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(gate.ConfirmCode(ctx, "alice@example.com", types.VerificationPurposeAccountDelete, delivered[0])).To(Succeed())

	ran := 0
	action := func(ctx context.Context) error { ran++; return nil }

	err = gate.Execute(ctx, "alice@example.com", types.VerificationPurposeAccountDelete, "wrong", action)
	g.Expect(err).To(MatchError(verification.ErrSecondaryFactorFailed))
	g.Expect(ran).To(BeZero())

	// the failed factor check leaves the session intact for another try
	g.Expect(gate.Execute(ctx, "alice@example.com", types.VerificationPurposeAccountDelete, testSecret, action)).To(Succeed())
	g.Expect(ran).To(Equal(1))
}

func TestGateDiscardAll(t *testing.T) {
	g := NewWithT(t)
	gate := newTestGate(map[types.VerificationPurpose]verification.Policy{
		types.VerificationPurposePasswordReset: {},
		types.VerificationPurposeAccountDelete: {},
	})
	ctx := context.Background()

	var delivered []string
	deliver := captureDeliver(&delivered)
	_, err := gate.RequestCode(ctx, "alice@example.com", types.VerificationPurposePasswordReset, deliver)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = gate.RequestCode(ctx, "alice@example.com", types.VerificationPurposeAccountDelete, deliver)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(gate.DiscardAll(ctx, "alice@example.com")).To(Succeed())

	err = gate.ConfirmCode(ctx, "alice@example.com", types.VerificationPurposePasswordReset, delivered[0])
	g.Expect(err).To(MatchError(verification.ErrNoActiveSession))
	err = gate.ConfirmCode(ctx, "alice@example.com", types.VerificationPurposeAccountDelete, delivered[1])
	g.Expect(err).To(MatchError(verification.ErrNoActiveSession))
}

func TestGateExecute_ActionError(t *testing.T) {
	g := NewWithT(t)
	gate := newTestGate(map[types.VerificationPurpose]verification.Policy{
		types.VerificationPurposePasswordReset: {},
	})
	ctx := context.Background()

	var delivered []string
	_, err := gate.RequestCode(ctx, "alice@example.com", types.VerificationPurposePasswordReset, captureDeliver(&delivered))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(gate.ConfirmCode(ctx, "alice@example.com", types.VerificationPurposePasswordReset, delivered[0])).To(Succeed())

	ran := 0
	actionErr := errors.New("downstream failed")
	err = gate.Execute(ctx, "alice@example.com", types.VerificationPurposePasswordReset, "",
		func(ctx context.Context) error { ran++; return actionErr })
	g.Expect(err).To(MatchError(actionErr))
	g.Expect(ran).To(Equal(1))

	// the session was spent regardless, the action never runs a second time
	err = gate.Execute(ctx, "alice@example.com", types.VerificationPurposePasswordReset, "",
		func(ctx context.Context) error { ran++; return nil })
	g.Expect(err).To(MatchError(verification.ErrNoActiveSession))
	g.Expect(ran).To(Equal(1))
}

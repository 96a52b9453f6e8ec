package verification

import (
	"context"
	"fmt"

	"github.com/propertyplus/propertyplus/internal/types"
	"go.uber.org/multierr"
)

type (
	// DeliverFunc sends an issued code to the subject, usually by mail.
	DeliverFunc func(ctx context.Context, subject string, code string) error
	// ActionFunc performs the protected action after its session was consumed.
	ActionFunc func(ctx context.Context) error
	// SecondaryFactorFunc checks a password or TOTP secret for the subject.
	SecondaryFactorFunc func(ctx context.Context, subject string, secret string) error
	PrecheckFunc        func(ctx context.Context, subject string) error
	CodeRequiredFunc    func(ctx context.Context, subject string) (bool, error)
)

// Policy configures how a single purpose is gated. A nil Precheck accepts
// every subject, a nil CodeRequired means a code is always required, and
// SecondaryOnExecute additionally demands a secondary factor check right
// before the protected action runs.
type Policy struct {
	Precheck           PrecheckFunc
	CodeRequired       CodeRequiredFunc
	SecondaryOnExecute bool
}

// Gate coordinates the request/confirm/execute lifecycle of protected
// actions on top of a Store. It owns no user-facing concerns; callers map
// the sentinel errors to their transport.
type Gate struct {
	store           Store
	secondaryFactor SecondaryFactorFunc
	policies        map[types.VerificationPurpose]Policy
}

func NewGate(
	store Store,
	secondaryFactor SecondaryFactorFunc,
	policies map[types.VerificationPurpose]Policy,
) *Gate {
	return &Gate{store: store, secondaryFactor: secondaryFactor, policies: policies}
}

func (g *Gate) policyFor(purpose types.VerificationPurpose) Policy {
	policy, ok := g.policies[purpose]
	if !ok {
		panic("no verification policy registered for purpose: " + string(purpose))
	}
	return policy
}

func (g *Gate) codeRequired(ctx context.Context, policy Policy, subject string) (bool, error) {
	if policy.CodeRequired == nil {
		return true, nil
	}
	return policy.CodeRequired(ctx, subject)
}

// RequestCode runs the purpose's precheck and, when the policy calls for a
// code, issues or reuses one and hands it to deliver. The session is written
// before delivery is attempted, so a failed delivery keeps the code valid
// and a later retry within the resend window returns the same code. The
// returned bool reports whether a code flow is in progress at all.
func (g *Gate) RequestCode(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
	deliver DeliverFunc,
) (bool, error) {
	policy := g.policyFor(purpose)
	if policy.Precheck != nil {
		if err := policy.Precheck(ctx, subject); err != nil {
			return false, err
		}
	}
	if required, err := g.codeRequired(ctx, policy, subject); err != nil {
		return false, err
	} else if !required {
		return false, nil
	}
	code, _, err := g.store.IssueOrReuse(ctx, subject, purpose)
	if err != nil {
		return true, err
	}
	if err := deliver(ctx, subject, code); err != nil {
		return true, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return true, nil
}

// ConfirmCode checks a submitted code against the subject's session.
func (g *Gate) ConfirmCode(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
	code string,
) error {
	return g.store.Verify(ctx, subject, purpose, code)
}

// ConfirmSecondary takes the non-code path for purposes whose policy waived
// the code, checking the secondary factor and recording the confirmation as
// a verified session.
func (g *Gate) ConfirmSecondary(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
	secret string,
) error {
	policy := g.policyFor(purpose)
	if required, err := g.codeRequired(ctx, policy, subject); err != nil {
		return err
	} else if required {
		return fmt.Errorf("%w: code verification required", ErrPreconditionFailed)
	}
	if err := g.secondaryFactor(ctx, subject, secret); err != nil {
		return fmt.Errorf("%w: %w", ErrSecondaryFactorFailed, err)
	}
	return g.store.GrantVerified(ctx, subject, purpose)
}

// DiscardAll clears every session a subject may hold across the registered
// purposes, e.g. when the subject's account is removed.
func (g *Gate) DiscardAll(ctx context.Context, subject string) error {
	var err error
	for purpose := range g.policies {
		err = multierr.Append(err, g.store.Discard(ctx, subject, purpose))
	}
	return err
}

// Execute spends the subject's verified session and then runs action exactly
// once. Consuming first keeps the action from ever running twice for one
// confirmation. When the policy demands it, the secondary factor is checked
// before anything is consumed, so a wrong password leaves the session
// intact for a retry.
func (g *Gate) Execute(
	ctx context.Context,
	subject string,
	purpose types.VerificationPurpose,
	secret string,
	action ActionFunc,
) error {
	policy := g.policyFor(purpose)
	if policy.SecondaryOnExecute {
		if err := g.secondaryFactor(ctx, subject, secret); err != nil {
			return fmt.Errorf("%w: %w", ErrSecondaryFactorFailed, err)
		}
	}
	if err := g.store.Consume(ctx, subject, purpose); err != nil {
		return err
	}
	err := action(ctx)
	return multierr.Append(err, g.store.Discard(ctx, subject, purpose))
}

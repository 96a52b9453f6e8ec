package context

import (
	"context"

	"github.com/propertyplus/propertyplus/internal/verification"
)

func WithVerificationGate(ctx context.Context, gate *verification.Gate) context.Context {
	return context.WithValue(ctx, ctxKeyVerificationGate, gate)
}

func GetVerificationGate(ctx context.Context) *verification.Gate {
	if gate, ok := ctx.Value(ctxKeyVerificationGate).(*verification.Gate); ok {
		return gate
	}
	panic("no verification gate found in context")
}

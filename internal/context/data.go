package context

import (
	"context"

	"github.com/propertyplus/propertyplus/internal/types"
)

func WithUserAccount(ctx context.Context, userAccount *types.UserAccount) context.Context {
	return context.WithValue(ctx, ctxKeyUserAccount, userAccount)
}

func GetUserAccount(ctx context.Context) *types.UserAccount {
	if userAccount, ok := ctx.Value(ctxKeyUserAccount).(*types.UserAccount); ok {
		return userAccount
	}
	panic("no UserAccount found in context")
}

func GetRequestIPAddress(ctx context.Context) string {
	if val, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return val
	}
	panic("no IP address in context")
}

func WithRequestIPAddress(ctx context.Context, address string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, address)
}

package auth

import (
	"context"

	"github.com/google/uuid"
)

type AuthInfo struct {
	userID uuid.UUID
	email  string
	name   string
}

func (a AuthInfo) CurrentUserID() uuid.UUID { return a.userID }

func (a AuthInfo) CurrentUserEmail() string { return a.email }

func (a AuthInfo) CurrentUserName() string { return a.name }

type authInfoContextKey struct{}

func withAuthInfo(ctx context.Context, info AuthInfo) context.Context {
	return context.WithValue(ctx, authInfoContextKey{}, info)
}

type authentication struct{}

// Authentication exposes the request's auth state. Handlers behind the
// Authenticator middleware call Require, everything else uses Get.
var Authentication authentication

func (authentication) Require(ctx context.Context) AuthInfo {
	if info, ok := ctx.Value(authInfoContextKey{}).(AuthInfo); ok {
		return info
	}
	panic("no authentication found in context")
}

func (authentication) Get(ctx context.Context) (AuthInfo, bool) {
	info, ok := ctx.Value(authInfoContextKey{}).(AuthInfo)
	return info, ok
}

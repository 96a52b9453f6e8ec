package main

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	internalctx "github.com/propertyplus/propertyplus/internal/context"
	"github.com/propertyplus/propertyplus/internal/db"
	"github.com/propertyplus/propertyplus/internal/env"
	"github.com/propertyplus/propertyplus/internal/security"
	"github.com/propertyplus/propertyplus/internal/types"
	"github.com/propertyplus/propertyplus/internal/util"
	"go.uber.org/zap"
)

// Usage: go run ./hack/create-dev-account.go <email> <password> [name]
//
// Creates an account with a verified email address, skipping the signup code
// flow. Only meant for local development.
func main() {
	logger := util.Require(zap.NewDevelopment())
	env.Initialize()

	email := os.Args[1]
	password := os.Args[2]
	name := "Dev User"
	if len(os.Args) > 3 {
		name = os.Args[3]
	}

	ctx := context.Background()
	pool := util.Require(pgxpool.New(ctx, env.DatabaseUrl()))
	defer pool.Close()
	ctx = internalctx.WithDb(internalctx.WithLogger(ctx, logger), pool)

	salt, hash, err := security.HashPassword(password)
	util.Must(err)

	user := types.UserAccount{
		Email:           email,
		EmailVerifiedAt: util.PtrTo(time.Now()),
		Name:            name,
		PasswordHash:    hash,
		PasswordSalt:    salt,
	}
	util.Must(db.CreateUserAccount(ctx, &user))
	logger.Info("account created", zap.String("email", user.Email), zap.String("id", user.ID.String()))
}

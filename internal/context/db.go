package context

import (
	"context"

	"github.com/propertyplus/propertyplus/internal/db/queryable"
)

func WithDb(ctx context.Context, db queryable.Queryable) context.Context {
	return context.WithValue(ctx, ctxKeyDb, db)
}

func GetDb(ctx context.Context) queryable.Queryable {
	if db, ok := ctx.Value(ctxKeyDb).(queryable.Queryable); ok {
		return db
	}
	panic("no database connection found in context")
}

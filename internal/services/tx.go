package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
)

// runInTx executes fn inside a database transaction. A nil db runs fn without
// one, which lets service tests drive fake repos directly.
func runInTx(db *gorm.DB, ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if db == nil {
		return fn(dbctx.Context{Ctx: ctx})
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

package allowlist

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
	"github.com/dmitrijs2005/gembot/internal/dbx"
)

// TxRepository adapts a DBTX-bound repository constructor into a Repository
// whose Save is atomic.
type TxRepository struct {
	db      *sql.DB
	newRepo func(dbx.DBTX) Repository
}

func NewTxRepository(db *sql.DB, newRepo func(dbx.DBTX) Repository) *TxRepository {
	return &TxRepository{db: db, newRepo: newRepo}
}

func (r *TxRepository) Load(ctx context.Context) ([]models.AuthorizedUser, error) {
	return r.newRepo(r.db).Load(ctx)
}

func (r *TxRepository) Save(ctx context.Context, users []models.AuthorizedUser) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return r.newRepo(tx).Save(ctx, users)
	})
}

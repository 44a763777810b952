package pgx

import (
	"context"

	"github.com/lborres/facturo/core"
)

func (a *Adapter) CreateAccount(ctx context.Context, acc *core.Account) error {
	query :=
		`INSERT INTO accounts (id, user_id, provider, provider_account_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`

	err := a.db.QueryRow(ctx, query, acc.ID, acc.UserID, acc.Provider, acc.ProviderAccountID).Scan(&acc.CreatedAt)
	if err != nil {
		return dbError(err)
	}
	return nil
}

func (a *Adapter) ListAccountsByUser(ctx context.Context, userID string) ([]*core.Account, error) {
	query :=
		`SELECT id, user_id, provider, provider_account_id, created_at
		 FROM accounts WHERE user_id = $1
		 ORDER BY created_at`

	rows, err := a.db.Query(ctx, query, userID)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	var accounts []*core.Account
	for rows.Next() {
		acc := &core.Account{}
		if err := rows.Scan(&acc.ID, &acc.UserID, &acc.Provider, &acc.ProviderAccountID, &acc.CreatedAt); err != nil {
			return nil, dbError(err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, dbError(err)
	}
	return accounts, nil
}

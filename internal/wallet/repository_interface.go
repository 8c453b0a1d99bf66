package wallet

import "context"

type Repository interface {
	GetOrCreateWallet(ctx context.Context, userID int) (*Wallet, error)
	ApplyTransaction(ctx context.Context, userID int, amount int64, txType, eventRef, description string) (*Wallet, error)
	GetTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error)
	SumTransactions(ctx context.Context, userID int) (int64, error)
}

package wallet

import "time"

const (
	TxTypeRewardedAd = "rewarded_ad"
	TxTypeRedemption = "redemption"
	TxTypeAdjustment = "adjustment"
)

type Wallet struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is one append-only ledger entry. EventRef carries the
// idempotency key for rewarded_ad entries and is nil otherwise.
type Transaction struct {
	ID           int       `db:"id" json:"id"`
	UserID       int       `db:"user_id" json:"user_id"`
	Amount       int64     `db:"amount" json:"amount"`
	Type         string    `db:"type" json:"type"`
	EventRef     *string   `db:"event_ref" json:"event_ref,omitempty"`
	BalanceAfter int64     `db:"balance_after" json:"balance_after"`
	Description  string    `db:"description" json:"description"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

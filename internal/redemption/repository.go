package redemption

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/freshlook-dev/FreshWallet/internal/wallet"
)

var (
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrTokenNotFound      = errors.New("token not found")
	ErrNotPending         = errors.New("redemption is not pending")
)

const redemptionColumns = `id, user_id, reward_id, token, points, status, expires_at, consumed_by, consumed_at, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Issue debits the wallet and creates the pending token in one database
// transaction. The debit is a conditional single-statement decrement:
// two concurrent issues can never jointly overdraw the wallet, because
// whichever UPDATE runs second sees the already-reduced balance.
func (r *repository) Issue(ctx context.Context, userID, rewardID int, points int64, token string, expiresAt time.Time) (*Redemption, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var balanceAfter int64
	err = tx.QueryRowxContext(ctx,
		`UPDATE wallets
		 SET balance = balance - $1, updated_at = NOW()
		 WHERE user_id = $2 AND balance >= $1
		 RETURNING balance`,
		points, userID,
	).Scan(&balanceAfter)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInsufficientPoints
		}
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (user_id, amount, type, balance_after, description)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, -points, wallet.TxTypeRedemption, balanceAfter, "Reward redemption",
	)
	if err != nil {
		return nil, err
	}

	var red Redemption
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO redemptions (user_id, reward_id, token, points, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+redemptionColumns,
		userID, rewardID, token, points, expiresAt,
	).StructScan(&red)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &red, nil
}

func (r *repository) GetByToken(ctx context.Context, token string) (*Redemption, error) {
	var red Redemption
	err := r.db.GetContext(ctx, &red,
		`SELECT `+redemptionColumns+` FROM redemptions WHERE token = $1`,
		token,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	return &red, nil
}

// MarkUsed flips pending to used, conditioned on the row still being
// pending at write time. Of N concurrent scans exactly one sees a row
// come back; the rest get ErrNotPending.
func (r *repository) MarkUsed(ctx context.Context, id, staffID int) (*Redemption, error) {
	var red Redemption
	err := r.db.QueryRowxContext(ctx,
		`UPDATE redemptions
		 SET status = 'used', consumed_by = $2, consumed_at = NOW()
		 WHERE id = $1 AND status = 'pending'
		 RETURNING `+redemptionColumns,
		id, staffID,
	).StructScan(&red)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotPending
		}
		return nil, err
	}

	return &red, nil
}

// MarkExpired is best-effort: if a concurrent consume already flipped
// the row, the condition simply matches nothing.
func (r *repository) MarkExpired(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE redemptions SET status = 'expired' WHERE id = $1 AND status = 'pending'`,
		id,
	)
	return err
}

func (r *repository) ListByUser(ctx context.Context, userID, limit, offset int) ([]Redemption, error) {
	if limit <= 0 {
		limit = 50
	}

	var reds []Redemption
	err := r.db.SelectContext(ctx, &reds,
		`SELECT `+redemptionColumns+`
		 FROM redemptions
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}

	return reds, nil
}

func (r *repository) ListConsumed(ctx context.Context, limit int) ([]Redemption, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}

	var reds []Redemption
	err := r.db.SelectContext(ctx, &reds,
		`SELECT `+redemptionColumns+`
		 FROM redemptions
		 WHERE status = 'used'
		 ORDER BY consumed_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}

	return reds, nil
}

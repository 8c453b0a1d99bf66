package redemption

import (
	"context"
	"time"
)

type Repository interface {
	Issue(ctx context.Context, userID, rewardID int, points int64, token string, expiresAt time.Time) (*Redemption, error)
	GetByToken(ctx context.Context, token string) (*Redemption, error)
	MarkUsed(ctx context.Context, id, staffID int) (*Redemption, error)
	MarkExpired(ctx context.Context, id int) error
	ListByUser(ctx context.Context, userID, limit, offset int) ([]Redemption, error)
	ListConsumed(ctx context.Context, limit int) ([]Redemption, error)
}

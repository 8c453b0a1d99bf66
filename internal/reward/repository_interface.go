package reward

import "context"

type Repository interface {
	ListActive(ctx context.Context) ([]Reward, error)
	GetByID(ctx context.Context, id int) (*Reward, error)
	Create(ctx context.Context, title, description string, pointsRequired int64) (*Reward, error)
	Update(ctx context.Context, id int, req UpdateRewardRequest) (*Reward, error)
}

package reward

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrRewardNotFound = errors.New("reward not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActive(ctx context.Context) ([]Reward, error) {
	query := `
		SELECT id, title, description, points_required, active, created_at
		FROM rewards
		WHERE active = TRUE
		ORDER BY points_required ASC
	`

	var rewards []Reward
	err := r.db.SelectContext(ctx, &rewards, query)
	if err != nil {
		return nil, err
	}

	return rewards, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Reward, error) {
	query := `
		SELECT id, title, description, points_required, active, created_at
		FROM rewards
		WHERE id = $1
	`

	var reward Reward
	err := r.db.GetContext(ctx, &reward, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}

	return &reward, nil
}

func (r *repository) Create(ctx context.Context, title, description string, pointsRequired int64) (*Reward, error) {
	query := `
		INSERT INTO rewards (title, description, points_required)
		VALUES ($1, $2, $3)
		RETURNING id, title, description, points_required, active, created_at
	`

	var reward Reward
	err := r.db.GetContext(ctx, &reward, query, title, description, pointsRequired)
	if err != nil {
		return nil, err
	}

	return &reward, nil
}

func (r *repository) Update(ctx context.Context, id int, req UpdateRewardRequest) (*Reward, error) {
	query := `
		UPDATE rewards
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    points_required = COALESCE($3, points_required),
		    active = COALESCE($4, active)
		WHERE id = $5
		RETURNING id, title, description, points_required, active, created_at
	`

	var reward Reward
	err := r.db.GetContext(ctx, &reward, query, req.Title, req.Description, req.PointsRequired, req.Active, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}

	return &reward, nil
}

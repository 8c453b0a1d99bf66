package reward

import "time"

type Reward struct {
	ID             int       `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description"`
	PointsRequired int64     `db:"points_required" json:"points_required"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type CreateRewardRequest struct {
	Title          string `json:"title" binding:"required,max=255"`
	Description    string `json:"description"`
	PointsRequired int64  `json:"points_required" binding:"required,gt=0"`
}

type UpdateRewardRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	PointsRequired *int64  `json:"points_required"`
	Active         *bool   `json:"active"`
}

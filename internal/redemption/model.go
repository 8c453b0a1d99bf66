package redemption

import "time"

const (
	StatusPending = "pending"
	StatusUsed    = "used"
	StatusExpired = "expired"

	// TokenTTL is how long an issued token stays scannable.
	TokenTTL = 10 * time.Minute
)

// Redemption is a single-use claim check for points already debited at
// issue time. Token never leaves the server except to its owner.
type Redemption struct {
	ID         int        `db:"id" json:"id"`
	UserID     int        `db:"user_id" json:"user_id"`
	RewardID   *int       `db:"reward_id" json:"reward_id,omitempty"`
	Token      string     `db:"token" json:"-"`
	Points     int64      `db:"points" json:"points"`
	Status     string     `db:"status" json:"status"`
	ExpiresAt  time.Time  `db:"expires_at" json:"expires_at"`
	ConsumedBy *int       `db:"consumed_by" json:"consumed_by,omitempty"`
	ConsumedAt *time.Time `db:"consumed_at" json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

type IssueResponse struct {
	Token     string    `json:"token"`
	Payload   string    `json:"payload"`
	Points    int64     `json:"points"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ConsumeRequest struct {
	Payload string `json:"payload" binding:"required"`
}

type ConsumeResponse struct {
	Points     int64      `json:"points"`
	Redemption Redemption `json:"redemption"`
}

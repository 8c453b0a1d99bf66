package redemption

import (
	"context"
	"errors"
	"time"

	"github.com/freshlook-dev/FreshWallet/internal/logger"
	"github.com/freshlook-dev/FreshWallet/internal/metrics"
	"github.com/freshlook-dev/FreshWallet/internal/reward"
	"github.com/freshlook-dev/FreshWallet/internal/user"
)

var (
	ErrRewardUnavailable  = errors.New("reward is not available")
	ErrAccountNotVerified = errors.New("account not verified")
	ErrTokenAlreadyUsed   = errors.New("token already used")
	ErrTokenExpired       = errors.New("token expired")
)

// ReceiptMailer is the slice of the email service the consume flow needs.
type ReceiptMailer interface {
	SendRedemptionReceipt(ctx context.Context, email, name string, points int64, when time.Time) error
}

type Service interface {
	Issue(ctx context.Context, userID, rewardID int) (*IssueResponse, error)
	Consume(ctx context.Context, rawPayload string, staffID int) (*Redemption, error)
	ListByUser(ctx context.Context, userID, limit, offset int) ([]Redemption, error)
	ListConsumed(ctx context.Context, limit int) ([]Redemption, error)
}

type service struct {
	repo       Repository
	rewardRepo reward.Repository
	userRepo   user.Repository
	mailer     ReceiptMailer
	now        func() time.Time
}

func NewService(repo Repository, rewardRepo reward.Repository, userRepo user.Repository, mailer ReceiptMailer) Service {
	return &service{
		repo:       repo,
		rewardRepo: rewardRepo,
		userRepo:   userRepo,
		mailer:     mailer,
		now:        time.Now,
	}
}

// Issue debits the reward's cost and returns a fresh single-use token.
// Points are spent here, not at scan time, so the balance a user shows
// a QR code against can never be spent twice elsewhere in the meantime.
// A token left to expire forfeits the points.
func (s *service) Issue(ctx context.Context, userID, rewardID int) (*IssueResponse, error) {
	account, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !account.EmailVerified {
		return nil, ErrAccountNotVerified
	}

	rw, err := s.rewardRepo.GetByID(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	if !rw.Active {
		return nil, ErrRewardUnavailable
	}

	token, err := NewToken()
	if err != nil {
		return nil, err
	}

	red, err := s.repo.Issue(ctx, userID, rewardID, rw.PointsRequired, token, s.now().Add(TokenTTL))
	if err != nil {
		return nil, err
	}

	payload, err := EncodePayload(red.Token)
	if err != nil {
		return nil, err
	}

	metrics.RecordRedemptionIssued()
	logger.Info("Redemption token issued", "user_id", userID, "reward_id", rewardID, "points", red.Points)

	return &IssueResponse{
		Token:     red.Token,
		Payload:   payload,
		Points:    red.Points,
		ExpiresAt: red.ExpiresAt,
	}, nil
}

// Consume validates a scanned payload and settles the token. The
// pending→used transition is a conditional update, so two staff devices
// scanning the same code race safely: one wins, the other gets
// ErrTokenAlreadyUsed.
func (s *service) Consume(ctx context.Context, rawPayload string, staffID int) (*Redemption, error) {
	token, err := ParsePayload(rawPayload)
	if err != nil {
		metrics.RecordRedemptionConsume("invalid_payload")
		return nil, err
	}

	red, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			metrics.RecordRedemptionConsume("not_found")
		}
		return nil, err
	}

	if red.Status != StatusPending {
		metrics.RecordRedemptionConsume("already_used")
		return nil, ErrTokenAlreadyUsed
	}

	if s.now().After(red.ExpiresAt) {
		if err := s.repo.MarkExpired(ctx, red.ID); err != nil {
			logger.Errorf("Failed to mark redemption %d expired: %v", red.ID, err)
		}
		metrics.RecordRedemptionConsume("expired")
		return nil, ErrTokenExpired
	}

	used, err := s.repo.MarkUsed(ctx, red.ID, staffID)
	if err != nil {
		if errors.Is(err, ErrNotPending) {
			// Lost the race to a concurrent scan.
			metrics.RecordRedemptionConsume("already_used")
			return nil, ErrTokenAlreadyUsed
		}
		return nil, err
	}

	metrics.RecordRedemptionConsume("success")
	logger.Info("Redemption consumed", "redemption_id", used.ID, "staff_id", staffID, "points", used.Points)

	if owner, err := s.userRepo.FindByID(ctx, used.UserID); err == nil {
		consumedAt := s.now()
		if used.ConsumedAt != nil {
			consumedAt = *used.ConsumedAt
		}
		if err := s.mailer.SendRedemptionReceipt(ctx, owner.Email, owner.Name, used.Points, consumedAt); err != nil {
			logger.Errorf("Failed to queue redemption receipt for %s: %v", owner.Email, err)
		}
	}

	return used, nil
}

func (s *service) ListByUser(ctx context.Context, userID, limit, offset int) ([]Redemption, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *service) ListConsumed(ctx context.Context, limit int) ([]Redemption, error) {
	return s.repo.ListConsumed(ctx, limit)
}

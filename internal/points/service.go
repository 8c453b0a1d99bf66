package points

import (
	"context"
	"errors"

	"github.com/freshlook-dev/FreshWallet/internal/logger"
	"github.com/freshlook-dev/FreshWallet/internal/metrics"
	"github.com/freshlook-dev/FreshWallet/internal/user"
	"github.com/freshlook-dev/FreshWallet/internal/wallet"
)

var (
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrMissingEventRef    = errors.New("event_ref is required")
	ErrAccountNotVerified = errors.New("account not verified")
	ErrDuplicateEvent     = errors.New("earning event already credited")
)

type Service interface {
	CreditEarning(ctx context.Context, userID int, amount int64, eventRef string) (*wallet.Wallet, error)
}

type service struct {
	walletRepo wallet.Repository
	userRepo   user.Repository
}

func NewService(walletRepo wallet.Repository, userRepo user.Repository) Service {
	return &service{
		walletRepo: walletRepo,
		userRepo:   userRepo,
	}
}

// CreditEarning credits the wallet for one completed earning event.
// eventRef identifies the specific ad-view instance; replaying the same
// ref never credits twice because the ledger's unique index rejects the
// second insert and the whole credit rolls back.
func (s *service) CreditEarning(ctx context.Context, userID int, amount int64, eventRef string) (*wallet.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if eventRef == "" {
		return nil, ErrMissingEventRef
	}

	account, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !account.EmailVerified {
		return nil, ErrAccountNotVerified
	}

	w, err := s.walletRepo.ApplyTransaction(ctx, userID, amount, wallet.TxTypeRewardedAd, eventRef, "Rewarded ad watched")
	if err != nil {
		if errors.Is(err, wallet.ErrDuplicateEvent) {
			metrics.RecordDuplicateEarning()
			logger.Info("Duplicate earning event rejected", "user_id", userID, "event_ref", eventRef)
			return nil, ErrDuplicateEvent
		}
		return nil, err
	}

	metrics.RecordPointsEarned(amount)
	logger.Info("Points credited", "user_id", userID, "amount", amount, "event_ref", eventRef)

	return w, nil
}

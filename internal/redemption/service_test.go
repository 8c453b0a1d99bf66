package redemption

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/freshlook-dev/FreshWallet/internal/logger"
	"github.com/freshlook-dev/FreshWallet/internal/reward"
	"github.com/freshlook-dev/FreshWallet/internal/user"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type MockRedemptionRepo struct {
	mock.Mock
}

func (m *MockRedemptionRepo) Issue(ctx context.Context, userID, rewardID int, points int64, token string, expiresAt time.Time) (*Redemption, error) {
	args := m.Called(ctx, userID, rewardID, points, token, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Redemption), args.Error(1)
}

func (m *MockRedemptionRepo) GetByToken(ctx context.Context, token string) (*Redemption, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Redemption), args.Error(1)
}

func (m *MockRedemptionRepo) MarkUsed(ctx context.Context, id, staffID int) (*Redemption, error) {
	args := m.Called(ctx, id, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Redemption), args.Error(1)
}

func (m *MockRedemptionRepo) MarkExpired(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRedemptionRepo) ListByUser(ctx context.Context, userID, limit, offset int) ([]Redemption, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Redemption), args.Error(1)
}

func (m *MockRedemptionRepo) ListConsumed(ctx context.Context, limit int) ([]Redemption, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Redemption), args.Error(1)
}

type MockRewardRepo struct {
	mock.Mock
}

func (m *MockRewardRepo) ListActive(ctx context.Context) ([]reward.Reward, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reward.Reward), args.Error(1)
}

func (m *MockRewardRepo) GetByID(ctx context.Context, id int) (*reward.Reward, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reward.Reward), args.Error(1)
}

func (m *MockRewardRepo) Create(ctx context.Context, title, description string, pointsRequired int64) (*reward.Reward, error) {
	args := m.Called(ctx, title, description, pointsRequired)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reward.Reward), args.Error(1)
}

func (m *MockRewardRepo) Update(ctx context.Context, id int, req reward.UpdateRewardRequest) (*reward.Reward, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reward.Reward), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, name, email, passwordHash, role, verificationToken string) (*user.User, error) {
	args := m.Called(ctx, name, email, passwordHash, role, verificationToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) VerifyByToken(ctx context.Context, token string) (*user.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) SetRole(ctx context.Context, id int, role string) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockUserRepo) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockReceiptMailer struct {
	mock.Mock
}

func (m *MockReceiptMailer) SendRedemptionReceipt(ctx context.Context, email, name string, points int64, when time.Time) error {
	args := m.Called(ctx, email, name, points, when)
	return args.Error(0)
}

func newTestService(repo Repository, rewardRepo reward.Repository, userRepo user.Repository, mailer ReceiptMailer, now time.Time) *service {
	return &service{
		repo:       repo,
		rewardRepo: rewardRepo,
		userRepo:   userRepo,
		mailer:     mailer,
		now:        func() time.Time { return now },
	}
}

func verifiedUser(id int) *user.User {
	return &user.User{ID: id, Name: "Jo", Email: "jo@example.com", Role: "user", EmailVerified: true}
}

func TestIssue_Success(t *testing.T) {
	repo := new(MockRedemptionRepo)
	rewardRepo := new(MockRewardRepo)
	userRepo := new(MockUserRepo)
	now := time.Now()
	svc := newTestService(repo, rewardRepo, userRepo, new(MockReceiptMailer), now)

	userRepo.On("FindByID", mock.Anything, 1).Return(verifiedUser(1), nil)
	rewardRepo.On("GetByID", mock.Anything, 3).
		Return(&reward.Reward{ID: 3, Title: "Free coffee", PointsRequired: 50, Active: true}, nil)
	repo.On("Issue", mock.Anything, 1, 3, int64(50), mock.AnythingOfType("string"), now.Add(TokenTTL)).
		Return(&Redemption{ID: 9, UserID: 1, Token: "tok", Points: 50, Status: StatusPending, ExpiresAt: now.Add(TokenTTL)}, nil)

	resp, err := svc.Issue(context.Background(), 1, 3)

	require.NoError(t, err)
	assert.Equal(t, int64(50), resp.Points)
	assert.NotEmpty(t, resp.Payload)

	parsed, err := ParsePayload(resp.Payload)
	require.NoError(t, err)
	assert.Equal(t, "tok", parsed)

	repo.AssertExpectations(t)
}

func TestIssue_InsufficientPointsPropagates(t *testing.T) {
	repo := new(MockRedemptionRepo)
	rewardRepo := new(MockRewardRepo)
	userRepo := new(MockUserRepo)
	svc := newTestService(repo, rewardRepo, userRepo, new(MockReceiptMailer), time.Now())

	userRepo.On("FindByID", mock.Anything, 1).Return(verifiedUser(1), nil)
	rewardRepo.On("GetByID", mock.Anything, 3).
		Return(&reward.Reward{ID: 3, PointsRequired: 500, Active: true}, nil)
	repo.On("Issue", mock.Anything, 1, 3, int64(500), mock.AnythingOfType("string"), mock.Anything).
		Return(nil, ErrInsufficientPoints)

	_, err := svc.Issue(context.Background(), 1, 3)

	assert.ErrorIs(t, err, ErrInsufficientPoints)
}

func TestIssue_InactiveReward(t *testing.T) {
	repo := new(MockRedemptionRepo)
	rewardRepo := new(MockRewardRepo)
	userRepo := new(MockUserRepo)
	svc := newTestService(repo, rewardRepo, userRepo, new(MockReceiptMailer), time.Now())

	userRepo.On("FindByID", mock.Anything, 1).Return(verifiedUser(1), nil)
	rewardRepo.On("GetByID", mock.Anything, 3).
		Return(&reward.Reward{ID: 3, PointsRequired: 50, Active: false}, nil)

	_, err := svc.Issue(context.Background(), 1, 3)

	assert.ErrorIs(t, err, ErrRewardUnavailable)
	repo.AssertNotCalled(t, "Issue")
}

func TestIssue_UnverifiedAccount(t *testing.T) {
	repo := new(MockRedemptionRepo)
	rewardRepo := new(MockRewardRepo)
	userRepo := new(MockUserRepo)
	svc := newTestService(repo, rewardRepo, userRepo, new(MockReceiptMailer), time.Now())

	userRepo.On("FindByID", mock.Anything, 1).
		Return(&user.User{ID: 1, Email: "jo@example.com", EmailVerified: false}, nil)

	_, err := svc.Issue(context.Background(), 1, 3)

	assert.ErrorIs(t, err, ErrAccountNotVerified)
	rewardRepo.AssertNotCalled(t, "GetByID")
}

func TestConsume_Success(t *testing.T) {
	repo := new(MockRedemptionRepo)
	userRepo := new(MockUserRepo)
	mailer := new(MockReceiptMailer)
	now := time.Now()
	svc := newTestService(repo, new(MockRewardRepo), userRepo, mailer, now)

	payload, err := EncodePayload("tok")
	require.NoError(t, err)

	consumedAt := now
	staff := 7
	pending := &Redemption{ID: 9, UserID: 1, Token: "tok", Points: 50, Status: StatusPending, ExpiresAt: now.Add(5 * time.Minute)}
	used := &Redemption{ID: 9, UserID: 1, Token: "tok", Points: 50, Status: StatusUsed, ExpiresAt: pending.ExpiresAt, ConsumedBy: &staff, ConsumedAt: &consumedAt}

	repo.On("GetByToken", mock.Anything, "tok").Return(pending, nil)
	repo.On("MarkUsed", mock.Anything, 9, 7).Return(used, nil)
	userRepo.On("FindByID", mock.Anything, 1).Return(verifiedUser(1), nil)
	mailer.On("SendRedemptionReceipt", mock.Anything, "jo@example.com", "Jo", int64(50), consumedAt).Return(nil)

	got, err := svc.Consume(context.Background(), payload, 7)

	require.NoError(t, err)
	assert.Equal(t, StatusUsed, got.Status)
	assert.Equal(t, int64(50), got.Points)
	repo.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestConsume_InvalidPayload(t *testing.T) {
	repo := new(MockRedemptionRepo)
	svc := newTestService(repo, new(MockRewardRepo), new(MockUserRepo), new(MockReceiptMailer), time.Now())

	_, err := svc.Consume(context.Background(), "some random barcode", 7)

	assert.ErrorIs(t, err, ErrInvalidPayload)
	repo.AssertNotCalled(t, "GetByToken")
}

func TestConsume_TokenNotFound(t *testing.T) {
	repo := new(MockRedemptionRepo)
	svc := newTestService(repo, new(MockRewardRepo), new(MockUserRepo), new(MockReceiptMailer), time.Now())

	payload, err := EncodePayload("ghost")
	require.NoError(t, err)

	repo.On("GetByToken", mock.Anything, "ghost").Return(nil, ErrTokenNotFound)

	_, err = svc.Consume(context.Background(), payload, 7)

	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestConsume_AlreadyUsed(t *testing.T) {
	repo := new(MockRedemptionRepo)
	svc := newTestService(repo, new(MockRewardRepo), new(MockUserRepo), new(MockReceiptMailer), time.Now())

	payload, err := EncodePayload("tok")
	require.NoError(t, err)

	repo.On("GetByToken", mock.Anything, "tok").
		Return(&Redemption{ID: 9, Status: StatusUsed, ExpiresAt: time.Now().Add(time.Minute)}, nil)

	_, err = svc.Consume(context.Background(), payload, 7)

	assert.ErrorIs(t, err, ErrTokenAlreadyUsed)
	repo.AssertNotCalled(t, "MarkUsed")
}

func TestConsume_Expired(t *testing.T) {
	repo := new(MockRedemptionRepo)
	now := time.Now()
	svc := newTestService(repo, new(MockRewardRepo), new(MockUserRepo), new(MockReceiptMailer), now)

	payload, err := EncodePayload("tok")
	require.NoError(t, err)

	repo.On("GetByToken", mock.Anything, "tok").
		Return(&Redemption{ID: 9, Status: StatusPending, ExpiresAt: now.Add(-time.Second)}, nil)
	repo.On("MarkExpired", mock.Anything, 9).Return(nil)

	_, err = svc.Consume(context.Background(), payload, 7)

	assert.ErrorIs(t, err, ErrTokenExpired)
	repo.AssertCalled(t, "MarkExpired", mock.Anything, 9)
	repo.AssertNotCalled(t, "MarkUsed")
}

func TestConsume_LosesRaceToConcurrentScan(t *testing.T) {
	repo := new(MockRedemptionRepo)
	now := time.Now()
	svc := newTestService(repo, new(MockRewardRepo), new(MockUserRepo), new(MockReceiptMailer), now)

	payload, err := EncodePayload("tok")
	require.NoError(t, err)

	// The row reads pending but flips before our conditional update lands.
	repo.On("GetByToken", mock.Anything, "tok").
		Return(&Redemption{ID: 9, Status: StatusPending, ExpiresAt: now.Add(time.Minute)}, nil)
	repo.On("MarkUsed", mock.Anything, 9, 7).Return(nil, ErrNotPending)

	_, err = svc.Consume(context.Background(), payload, 7)

	assert.ErrorIs(t, err, ErrTokenAlreadyUsed)
}

func TestConsume_ReceiptFailureDoesNotFailConsume(t *testing.T) {
	repo := new(MockRedemptionRepo)
	userRepo := new(MockUserRepo)
	mailer := new(MockReceiptMailer)
	now := time.Now()
	svc := newTestService(repo, new(MockRewardRepo), userRepo, mailer, now)

	payload, err := EncodePayload("tok")
	require.NoError(t, err)

	staff := 7
	used := &Redemption{ID: 9, UserID: 1, Points: 50, Status: StatusUsed, ExpiresAt: now.Add(time.Minute), ConsumedBy: &staff}

	repo.On("GetByToken", mock.Anything, "tok").
		Return(&Redemption{ID: 9, UserID: 1, Points: 50, Status: StatusPending, ExpiresAt: now.Add(time.Minute)}, nil)
	repo.On("MarkUsed", mock.Anything, 9, 7).Return(used, nil)
	userRepo.On("FindByID", mock.Anything, 1).Return(verifiedUser(1), nil)
	mailer.On("SendRedemptionReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)

	got, err := svc.Consume(context.Background(), payload, 7)

	require.NoError(t, err)
	assert.Equal(t, StatusUsed, got.Status)
}

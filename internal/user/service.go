package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/freshlook-dev/FreshWallet/internal/auth"
	"github.com/freshlook-dev/FreshWallet/internal/logger"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidRole        = errors.New("invalid role")
)

// Mailer is the slice of the email service the account flow needs.
type Mailer interface {
	SendVerification(ctx context.Context, email, name, verifyURL string) error
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	Verify(ctx context.Context, token string) (*User, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
	PromoteRole(ctx context.Context, userID int, role string) error
	DeleteAccount(ctx context.Context, userID int) error
}

type service struct {
	repo      Repository
	mailer    Mailer
	jwtSecret string
	baseURL   string
}

func NewService(repo Repository, mailer Mailer, jwtSecret, baseURL string) Service {
	return &service{
		repo:      repo,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		baseURL:   baseURL,
	}
}

func newVerificationToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Register creates an unverified account and queues the verification
// email. The account cannot earn or redeem until verified.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	token, err := newVerificationToken()
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, req.Name, req.Email, passwordHash, auth.RoleUser, token)
	if err != nil {
		return nil, err
	}

	verifyURL := fmt.Sprintf("%s/auth/verify?token=%s", s.baseURL, token)
	if err := s.mailer.SendVerification(ctx, user.Email, user.Name, verifyURL); err != nil {
		logger.Errorf("Failed to queue verification email for %s: %v", user.Email, err)
	}

	return user, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, "", "", ErrEmailNotVerified
	}

	accessToken, refreshToken, err := auth.GenerateTokens(
		user.ID,
		user.Email,
		user.Role,
		s.jwtSecret,
	)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) Verify(ctx context.Context, token string) (*User, error) {
	return s.repo.VerifyByToken(ctx, token)
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, ErrUserNotFound
	}

	// Role comes from the row, not the old claims, so promotions take
	// effect on refresh.
	newAccessToken, err := auth.GenerateAccessToken(user.ID, user.Email, user.Role, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, user, nil
}

func (s *service) PromoteRole(ctx context.Context, userID int, role string) error {
	if !auth.ValidRole(role) {
		return ErrInvalidRole
	}
	return s.repo.SetRole(ctx, userID, role)
}

func (s *service) DeleteAccount(ctx context.Context, userID int) error {
	return s.repo.Delete(ctx, userID)
}

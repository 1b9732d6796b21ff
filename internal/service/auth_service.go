package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"invopay/internal/auth"
	apperrors "invopay/internal/errors"
	"invopay/internal/mail"
	"invopay/internal/model"
	"invopay/internal/repository"
)

// MailEnqueuer is the slice of the mail queue the auth service needs.
type MailEnqueuer interface {
	Enqueue(msg mail.Message)
}

// AuthService handles registration, login, token lifecycle and email
// verification.
type AuthService interface {
	// Register creates the user and their unverified email row in one
	// transaction and enqueues a confirmation mail after commit. Mail
	// delivery is best-effort; its failure never reaches the caller.
	Register(ctx context.Context, username, emailAddr, password string) (*model.User, error)
	// Login authenticates by case-normalized username. Unknown usernames
	// and wrong passwords share one error and comparable latency.
	Login(ctx context.Context, username, password string) (accessToken, refreshToken string, user *model.User, err error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	// ConfirmEmail is idempotent: a valid token yields true no matter how
	// often it is presented; an unmatched token yields false. Verified
	// never transitions back to false.
	ConfirmEmail(ctx context.Context, token string) (bool, error)
	// ResendConfirmation regenerates the target user's verification token
	// and re-sends the mail. The requester must be the target.
	ResendConfirmation(ctx context.Context, requesterID, targetUserID uint) error
}

type authService struct {
	userRepo   repository.UserRepository
	emailRepo  repository.EmailRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	mailQueue  MailEnqueuer
	baseURL    string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	emailRepo repository.EmailRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	mailQueue MailEnqueuer,
	baseURL string,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		emailRepo:  emailRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		mailQueue:  mailQueue,
		baseURL:    baseURL,
	}
}

// Register creates a customer account with a hashed password.
func (s *authService) Register(ctx context.Context, username, emailAddr, password string) (*model.User, error) {
	username = strings.ToLower(username)
	emailAddr = strings.ToLower(emailAddr)

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Role:           model.RoleCustomer,
		Username:       username,
		HashedPassword: hashed,
		ProfileName:    username,
	}
	email := &model.Email{
		Address:           emailAddr,
		VerificationToken: uuid.New().String(),
		TokenGeneratedAt:  time.Now(),
	}

	if err := s.userRepo.CreateWithEmail(ctx, user, email); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Fire-and-forget: the worker owns delivery from here.
	s.mailQueue.Enqueue(mail.ConfirmationMessage(email.Address, user.ProfileName, email.VerificationToken, s.baseURL))

	return user, nil
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, username, password string) (string, string, *model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.ToLower(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn a hash comparison so a missing username costs the
			// same as a wrong password.
			auth.DummyCompare(password)
			return "", "", nil, apperrors.ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(password, user.HashedPassword) {
		return "", "", nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastSignIn(ctx, user.ID, now); err != nil {
		log.Printf("auth: update last sign-in for user %d: %v", user.ID, err)
	}
	user.LastSignInAt = &now

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, auth.RefreshTokenExpiry); err != nil {
		return "", "", nil, fmt.Errorf("store refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidToken
	}

	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidToken
	}

	storedUserID, err := s.tokenStore.GetRefreshToken(ctx, tokenID)
	if err != nil || storedUserID != claims.UserID {
		return "", apperrors.ErrInvalidToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(claims.UserID)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}

	return accessToken, nil
}

// Logout invalidates the refresh token and blacklists the access token
// for its remaining lifetime.
func (s *authService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	refreshID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidToken
	}
	if err := s.tokenStore.DeleteRefreshToken(ctx, refreshID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	claims, err := s.jwtService.ValidateToken(accessToken)
	if err != nil || claims.ID == "" {
		// Access token already unusable; nothing to blacklist.
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl > 0 {
		if err := s.tokenStore.BlacklistAccessToken(ctx, claims.ID, ttl); err != nil {
			return fmt.Errorf("blacklist access token: %w", err)
		}
	}
	return nil
}

// ConfirmEmail flips the email matching token to verified.
func (s *authService) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	email, err := s.emailRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("find email by token: %w", err)
	}

	if email.Verified {
		return true, nil
	}
	if err := s.emailRepo.MarkVerified(ctx, email.ID); err != nil {
		return false, fmt.Errorf("mark email verified: %w", err)
	}
	return true, nil
}

// ResendConfirmation replaces the verification token and re-sends the mail.
func (s *authService) ResendConfirmation(ctx context.Context, requesterID, targetUserID uint) error {
	if requesterID != targetUserID {
		return apperrors.ErrUserMismatch
	}

	user, err := s.userRepo.FindByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	email, err := s.emailRepo.RegenerateToken(ctx, targetUserID, uuid.New().String(), time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("regenerate token: %w", err)
	}

	s.mailQueue.Enqueue(mail.ConfirmationMessage(email.Address, user.ProfileName, email.VerificationToken, s.baseURL))
	return nil
}

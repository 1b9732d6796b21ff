package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"invopay/internal/auth"
	apperrors "invopay/internal/errors"
	"invopay/internal/mail"
	"invopay/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateWithEmail(ctx context.Context, user *model.User, email *model.Email) error {
	args := m.Called(ctx, user, email)
	if args.Error(0) == nil {
		user.ID = 1
		email.ID = 1
		email.UserID = user.ID
	}
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateLastSignIn(ctx context.Context, id uint, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id uint, profileName, profileImage *string) (*model.User, error) {
	args := m.Called(ctx, id, profileName, profileImage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockEmailRepository is a mock implementation of EmailRepository.
type MockEmailRepository struct {
	mock.Mock
}

func (m *MockEmailRepository) FindByToken(ctx context.Context, token string) (*model.Email, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Email), args.Error(1)
}

func (m *MockEmailRepository) FindByUserID(ctx context.Context, userID uint) (*model.Email, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Email), args.Error(1)
}

func (m *MockEmailRepository) MarkVerified(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEmailRepository) RegenerateToken(ctx context.Context, userID uint, token string, at time.Time) (*model.Email, error) {
	args := m.Called(ctx, userID, token, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Email), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// recordingQueue captures enqueued mail instead of sending it.
type recordingQueue struct {
	messages []mail.Message
}

func (q *recordingQueue) Enqueue(msg mail.Message) {
	q.messages = append(q.messages, msg)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
		expectMail    bool
	}{
		{
			name:     "successful registration",
			username: "Fresh@Example.com",
			email:    "Fresh@Example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("CreateWithEmail", mock.Anything, mock.AnythingOfType("*model.User"), mock.AnythingOfType("*model.Email")).Return(nil)
			},
			expectedError: nil,
			expectMail:    true,
		},
		{
			name:     "username already taken",
			username: "taken@example.com",
			email:    "taken@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("CreateWithEmail", mock.Anything, mock.AnythingOfType("*model.User"), mock.AnythingOfType("*model.Email")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrUsernameTaken,
			expectMail:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			mockEmailRepo := new(MockEmailRepository)
			mockTokenStore := new(MockTokenStore)
			queue := &recordingQueue{}
			tt.setupMock(mockUserRepo)

			jwtService := auth.NewJWTService("test-secret")
			svc := NewAuthService(mockUserRepo, mockEmailRepo, jwtService, mockTokenStore, queue, "http://localhost:8080")

			user, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, "fresh@example.com", user.Username)
				assert.Equal(t, model.RoleCustomer, user.Role)
				assert.NotEmpty(t, user.HashedPassword)
				assert.NotEqual(t, tt.password, user.HashedPassword)
			}

			if tt.expectMail {
				assert.Len(t, queue.messages, 1)
				assert.Equal(t, "fresh@example.com", queue.messages[0].To)
			} else {
				assert.Empty(t, queue.messages)
			}

			mockUserRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), auth.BcryptCost)

	tests := []struct {
		name          string
		username      string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful login",
			username: "user@example.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByUsername", mock.Anything, "user@example.com").Return(&model.User{
					ID:             7,
					Username:       "user@example.com",
					HashedPassword: string(hashedPassword),
				}, nil)
				mRepo.On("UpdateLastSignIn", mock.Anything, uint(7), mock.AnythingOfType("time.Time")).Return(nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, uint(7), auth.RefreshTokenExpiry).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "unknown username",
			username: "ghost@example.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByUsername", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			username: "user@example.com",
			password: "not-the-password",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByUsername", mock.Anything, "user@example.com").Return(&model.User{
					ID:             7,
					Username:       "user@example.com",
					HashedPassword: string(hashedPassword),
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			mockEmailRepo := new(MockEmailRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockUserRepo, mockTokenStore)

			jwtService := auth.NewJWTService("test-secret")
			svc := NewAuthService(mockUserRepo, mockEmailRepo, jwtService, mockTokenStore, &recordingQueue{}, "http://localhost:8080")

			accessToken, refreshToken, user, err := svc.Login(context.Background(), tt.username, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
				assert.NotNil(t, user)
				assert.NotNil(t, user.LastSignInAt)
			}

			mockUserRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

// Unknown usernames and wrong passwords must be indistinguishable to the
// caller: same sentinel, no detail about which check failed.
func TestAuthService_LoginFailuresShareOneError(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), auth.BcryptCost)

	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("FindByUsername", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByUsername", mock.Anything, "real@example.com").Return(&model.User{
		ID:             1,
		Username:       "real@example.com",
		HashedPassword: string(hashedPassword),
	}, nil)

	jwtService := auth.NewJWTService("test-secret")
	svc := NewAuthService(mockUserRepo, new(MockEmailRepository), jwtService, new(MockTokenStore), &recordingQueue{}, "http://localhost:8080")

	_, _, _, errUnknown := svc.Login(context.Background(), "ghost@example.com", "whatever")
	_, _, _, errWrongPass := svc.Login(context.Background(), "real@example.com", "whatever")

	assert.Equal(t, errUnknown, errWrongPass)
	assert.ErrorIs(t, errUnknown, apperrors.ErrInvalidCredentials)
}

func TestAuthService_RefreshToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	tokenID, refreshToken, err := jwtService.GenerateRefreshToken(42)
	assert.NoError(t, err)

	t.Run("valid refresh token", func(t *testing.T) {
		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(uint(42), nil)

		svc := NewAuthService(new(MockUserRepository), new(MockEmailRepository), jwtService, mockTokenStore, &recordingQueue{}, "http://localhost:8080")

		accessToken, err := svc.RefreshToken(context.Background(), refreshToken)
		assert.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		mockTokenStore.AssertExpectations(t)
	})

	t.Run("token not in store", func(t *testing.T) {
		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(uint(0), assert.AnError)

		svc := NewAuthService(new(MockUserRepository), new(MockEmailRepository), jwtService, mockTokenStore, &recordingQueue{}, "http://localhost:8080")

		_, err := svc.RefreshToken(context.Background(), refreshToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepository), new(MockEmailRepository), jwtService, new(MockTokenStore), &recordingQueue{}, "http://localhost:8080")

		_, err := svc.RefreshToken(context.Background(), "not-a-jwt")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestAuthService_ConfirmEmail(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		setupMock  func(*MockEmailRepository)
		expectedOk bool
	}{
		{
			name:  "valid token verifies the email",
			token: "token-1",
			setupMock: func(m *MockEmailRepository) {
				m.On("FindByToken", mock.Anything, "token-1").Return(&model.Email{ID: 3, Verified: false}, nil)
				m.On("MarkVerified", mock.Anything, uint(3)).Return(nil)
			},
			expectedOk: true,
		},
		{
			name:  "already verified stays verified",
			token: "token-2",
			setupMock: func(m *MockEmailRepository) {
				m.On("FindByToken", mock.Anything, "token-2").Return(&model.Email{ID: 4, Verified: true}, nil)
			},
			expectedOk: true,
		},
		{
			name:  "unknown token",
			token: "bogus",
			setupMock: func(m *MockEmailRepository) {
				m.On("FindByToken", mock.Anything, "bogus").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockEmailRepo := new(MockEmailRepository)
			tt.setupMock(mockEmailRepo)

			jwtService := auth.NewJWTService("test-secret")
			svc := NewAuthService(new(MockUserRepository), mockEmailRepo, jwtService, new(MockTokenStore), &recordingQueue{}, "http://localhost:8080")

			ok, err := svc.ConfirmEmail(context.Background(), tt.token)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedOk, ok)

			mockEmailRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_ResendConfirmation(t *testing.T) {
	t.Run("requester must match target", func(t *testing.T) {
		jwtService := auth.NewJWTService("test-secret")
		svc := NewAuthService(new(MockUserRepository), new(MockEmailRepository), jwtService, new(MockTokenStore), &recordingQueue{}, "http://localhost:8080")

		err := svc.ResendConfirmation(context.Background(), 1, 2)
		assert.ErrorIs(t, err, apperrors.ErrUserMismatch)
	})

	t.Run("regenerates token and re-sends", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		mockUserRepo.On("FindByID", mock.Anything, uint(5)).Return(&model.User{ID: 5, ProfileName: "Demo"}, nil)

		mockEmailRepo := new(MockEmailRepository)
		mockEmailRepo.On("RegenerateToken", mock.Anything, uint(5), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Return(&model.Email{ID: 6, UserID: 5, Address: "demo@example.com", VerificationToken: "fresh-token"}, nil)

		queue := &recordingQueue{}
		jwtService := auth.NewJWTService("test-secret")
		svc := NewAuthService(mockUserRepo, mockEmailRepo, jwtService, new(MockTokenStore), queue, "http://localhost:8080")

		err := svc.ResendConfirmation(context.Background(), 5, 5)
		assert.NoError(t, err)
		assert.Len(t, queue.messages, 1)
		assert.Equal(t, "demo@example.com", queue.messages[0].To)
		assert.Contains(t, queue.messages[0].Body, "fresh-token")

		mockUserRepo.AssertExpectations(t)
		mockEmailRepo.AssertExpectations(t)
	})
}

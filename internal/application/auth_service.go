package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sitso-en/photovault/internal/auth"
	"github.com/sitso-en/photovault/internal/domain"
	userDomain "github.com/sitso-en/photovault/internal/domain/user"
	"github.com/sitso-en/photovault/internal/events"
	"github.com/sitso-en/photovault/internal/kafka"
)

// RegisterRequest holds the data to create an account. Password2 must
// repeat Password exactly.
type RegisterRequest struct {
	Username  string
	Email     string
	Password  string
	Password2 string
}

// LoginRequest holds login credentials.
type LoginRequest struct {
	Username string
	Password string
}

// UserDTO is the API response representation of a user.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthService handles registration, login and token refresh.
type AuthService struct {
	repo       userDomain.UserRepository
	jwtManager *auth.JWTManager
	producer   *kafka.Producer
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo userDomain.UserRepository, jwtManager *auth.JWTManager, producer *kafka.Producer, logger *zap.Logger) *AuthService {
	return &AuthService{
		repo:       repo,
		jwtManager: jwtManager,
		producer:   producer,
		logger:     logger,
	}
}

// Register creates a new user account with the default role.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserDTO, error) {
	if req.Password == "" {
		return nil, domain.NewValidationError("password is required")
	}
	if req.Password != req.Password2 {
		return nil, domain.NewValidationError("passwords do not match")
	}
	if len(req.Password) < 8 {
		return nil, domain.NewValidationError("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewInternalError("failed to hash password", err)
	}

	u, err := userDomain.NewUser(req.Username, req.Email, string(hash), userDomain.RoleUser)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}

	s.publishUserEvent(ctx, events.UserRegistered, events.UserRegisteredEvent{
		UserID:     u.ID(),
		Username:   u.Username(),
		Role:       string(u.Role()),
		OccurredAt: time.Now().UTC(),
	})

	s.logger.Info("user registered",
		zap.String("user_id", u.ID().String()),
		zap.String("username", u.Username()),
	)

	dto := toUserDTO(u)
	return &dto, nil
}

// Login verifies credentials and issues a token pair. Unknown username
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*auth.TokenPair, *UserDTO, error) {
	u, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, nil, domain.NewUnauthorizedError("invalid credentials")
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash()), []byte(req.Password)); err != nil {
		return nil, nil, domain.NewUnauthorizedError("invalid credentials")
	}

	pair, err := s.jwtManager.Issue(u)
	if err != nil {
		return nil, nil, domain.NewInternalError("failed to issue tokens", err)
	}

	dto := toUserDTO(u)
	return pair, &dto, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The user
// record is reloaded so a role change takes effect on the next access
// token, not just the next login.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwtManager.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, domain.NewUnauthorizedError("invalid refresh token")
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, domain.NewUnauthorizedError("invalid refresh token")
		}
		return nil, err
	}

	pair, err := s.jwtManager.Issue(u)
	if err != nil {
		return nil, domain.NewInternalError("failed to issue tokens", err)
	}
	return pair, nil
}

// GetProfile returns the account behind the given user ID.
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(u)
	return &dto, nil
}

func (s *AuthService) publishUserEvent(ctx context.Context, eventType string, data interface{}) {
	if s.producer == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent("photovault", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicUserEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toUserDTO(u *userDomain.User) UserDTO {
	return UserDTO{
		ID:        u.ID(),
		Username:  u.Username(),
		Email:     u.Email(),
		Role:      string(u.Role()),
		CreatedAt: u.CreatedAt(),
	}
}

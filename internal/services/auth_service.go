package services

import (
	"context"
	"errors"
	"time"

	"foodify-backend/internal/models"
	"foodify-backend/internal/repositories"
	"foodify-backend/pkg/auth"
	"foodify-backend/pkg/cache"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionRevoked     = errors.New("session has been revoked")
)

type AuthService struct {
	userRepo repositories.UserRepository
	jwt      *auth.JWTManager
	cache    *cache.RedisCache
}

func NewAuthService(userRepo repositories.UserRepository, jwt *auth.JWTManager, cache *cache.RedisCache) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		jwt:      jwt,
		cache:    cache,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User         *UserProfile `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

type UserProfile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	RestaurantID string `json:"restaurant_id,omitempty"`
}

func profileOf(user *models.User) *UserProfile {
	profile := &UserProfile{
		ID:    user.ID.String(),
		Name:  user.Name,
		Email: user.Email,
		Phone: user.Phone,
		Role:  user.Role,
	}
	if user.RestaurantID != nil {
		profile.RestaurantID = user.RestaurantID.String()
	}
	return profile
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if existing, _ := s.userRepo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         "customer",
		Status:       "active",
		CreatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*AuthResponse, error) {
	restaurantID := ""
	if user.RestaurantID != nil {
		restaurantID = user.RestaurantID.String()
	}

	pair, err := s.jwt.GenerateTokenPair(user.ID.String(), restaurantID, user.Role, user.Email)
	if err != nil {
		return nil, err
	}

	// The refresh token is pinned in Redis; logout deletes it so a stolen
	// refresh token stops working immediately.
	if s.cache != nil {
		key := "auth:refresh:" + user.ID.String()
		if err := s.cache.Set(ctx, key, pair.RefreshToken, 7*24*time.Hour); err != nil {
			return nil, err
		}
	}

	return &AuthResponse{
		User:         profileOf(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Refresh mints a new access token from a valid, unrevoked refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwt.ValidateToken(refreshToken)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		var stored string
		key := "auth:refresh:" + claims.UserID
		if err := s.cache.Get(ctx, key, &stored); err != nil || stored != refreshToken {
			return "", ErrSessionRevoked
		}
	}

	return s.jwt.RefreshAccessToken(refreshToken)
}

func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, "auth:refresh:"+userID)
}

func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*UserProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return profileOf(user), nil
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*UserProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return profileOf(user), nil
}

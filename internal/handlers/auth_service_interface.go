package handlers

import (
	"context"

	"foodify-backend/internal/services"

	"github.com/google/uuid"
)

// AuthServiceInterface defines auth operations the handler depends on
type AuthServiceInterface interface {
	Register(ctx context.Context, req *services.RegisterRequest) (*services.AuthResponse, error)
	Login(ctx context.Context, req *services.LoginRequest) (*services.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, userID string) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*services.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *services.UpdateProfileRequest) (*services.UserProfile, error)
}

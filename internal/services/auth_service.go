package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/repositories"
	"github.com/parkonomy/kiosk-backend/pkg/jwt"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used for site passwords
const PasswordCost = 10

type authService struct {
	siteRepo repositories.SiteRepository
	tokens   *jwt.TokenService
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService implementation
func NewAuthService(siteRepo repositories.SiteRepository, tokens *jwt.TokenService, logger *zap.Logger) AuthService {
	return &authService{
		siteRepo: siteRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// HashPassword hashes a site password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Login checks the credentials of a site or admin account and issues a token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	site, err := s.siteRepo.FindByEmail(ctx, req.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		s.logger.Info("Login rejected: unknown email", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up site: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(site.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("Login rejected: password mismatch", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(jwt.Claims{
		ID:           site.ID.Hex(),
		Email:        site.Email,
		Role:         site.Role,
		SiteID:       site.SiteID,
		WorkflowName: site.WorkflowName,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Login successful", zap.String("site_id", site.SiteID), zap.String("role", site.Role))
	return &models.LoginResponse{
		Message: "Login successful",
		Token:   token,
		User:    site,
	}, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roamstay/internal/app/listings/entity"
	"roamstay/internal/app/listings/infrastructure"
	"roamstay/internal/app/listings/repository"
	"roamstay/internal/app/listings/util"
	"roamstay/pkg/metrics"
)

// AuthService обрабатывает бизнес-логику аутентификации
type AuthService struct {
	userRepo      repository.UserRepository
	tokenRepo     repository.TokenRepository
	jwtManager    *util.JWTManager
	mailSender    infrastructure.MailSender
	adminCode     string
	resetTokenTTL time.Duration
	resetBaseURL  string
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	jwtManager *util.JWTManager,
	mailSender infrastructure.MailSender,
	adminCode string,
	resetTokenTTL time.Duration,
	resetBaseURL string,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		tokenRepo:     tokenRepo,
		jwtManager:    jwtManager,
		mailSender:    mailSender,
		adminCode:     adminCode,
		resetTokenTTL: resetTokenTTL,
		resetBaseURL:  resetBaseURL,
	}
}

// Register регистрирует нового пользователя
// Совпадение admin_code с кодом из конфигурации дает флаг администратора
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.AuthResponse, error) {
	if err := s.checkUserAbsent(ctx, req); err != nil {
		return nil, err
	}

	passwordHash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Bio:          req.Bio,
		AvatarURL:    req.AvatarURL,
		IsAdmin:      s.adminCode != "" && req.AdminCode == s.adminCode,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.AuthRegistrations.Inc()

	return s.generateAuthResponse(ctx, user)
}

// Login выполняет вход пользователя
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.AuthLogins.WithLabelValues("failed").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		metrics.AuthLogins.WithLabelValues("failed").Inc()
		return nil, ErrInvalidCredentials
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()

	return s.generateAuthResponse(ctx, user)
}

// RefreshTokens обновляет пару токенов
// Использованный refresh токен немедленно ротируется
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*entity.TokenPair, error) {
	userID, err := s.tokenRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if err := s.tokenRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to delete refresh token: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return s.generateTokenPair(ctx, user)
}

// Logout выполняет выход пользователя: access токен попадает в черный
// список до истечения, все refresh токены пользователя удаляются
func (s *AuthService) Logout(ctx context.Context, identity entity.Identity, accessToken string) error {
	claims, err := s.jwtManager.ValidateToken(accessToken)
	if err == nil {
		if err := s.tokenRepo.AddToBlacklist(ctx, accessToken, claims.ExpiresAt.Time); err != nil {
			return fmt.Errorf("failed to blacklist token: %w", err)
		}
	}

	if err := s.tokenRepo.DeleteUserRefreshTokens(ctx, identity.UserID); err != nil {
		return fmt.Errorf("failed to delete refresh tokens: %w", err)
	}

	return nil
}

// ForgotPassword запускает поток сброса пароля:
// случайный токен с TTL сохраняется в Redis, ссылка уходит письмом
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, err := util.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	if err := s.tokenRepo.SaveResetToken(ctx, token, user.ID.Hex(), s.resetTokenTTL); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	body := fmt.Sprintf(
		"You are receiving this because you (or someone else) have requested the reset of the password for your account.\n\n"+
			"Please click on the following link, or paste this into your browser to complete the process:\n\n"+
			"%s/%s\n\n"+
			"If you did not request this, please ignore this email and your password will remain unchanged.\n",
		s.resetBaseURL, token,
	)

	if err := s.mailSender.Send(ctx, user.Email, "Roamstay Password Reset", body); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	return nil
}

// ResetPassword устанавливает новый пароль по токену сброса
// Токен одноразовый, все сессии пользователя закрываются
func (s *AuthService) ResetPassword(ctx context.Context, token string, newPassword string) error {
	userID, err := s.tokenRepo.GetResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to get reset token: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	passwordHash, err := util.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.tokenRepo.DeleteResetToken(ctx, token); err != nil {
		return fmt.Errorf("failed to delete reset token: %w", err)
	}

	if err := s.tokenRepo.DeleteUserRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete refresh tokens: %w", err)
	}

	confirmation := fmt.Sprintf(
		"Hello,\n\nThis is a confirmation that the password for your account %s has just been changed.\n",
		user.Email,
	)
	if err := s.mailSender.Send(ctx, user.Email, "Your Roamstay Password Has Been Changed", confirmation); err != nil {
		// Пароль уже сменен, неудача подтверждающего письма не критична
		fmt.Printf("failed to send password change confirmation: %v\n", err)
	}

	return nil
}

func (s *AuthService) checkUserAbsent(ctx context.Context, req *entity.RegisterRequest) error {
	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("failed to check existing username: %w", err)
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("failed to check existing email: %w", err)
	}

	return nil
}

func (s *AuthService) generateAuthResponse(ctx context.Context, user *entity.User) (*entity.AuthResponse, error) {
	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	return &entity.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *entity.User) (*entity.TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID.Hex(), user.Username, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	expiresAt := time.Now().Add(s.jwtManager.GetRefreshTokenDuration())
	if err := s.tokenRepo.SaveRefreshToken(ctx, user.ID.Hex(), refreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &entity.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

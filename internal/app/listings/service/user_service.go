package service

import (
	"context"
	"errors"
	"fmt"

	"roamstay/internal/app/listings/entity"
	"roamstay/internal/app/listings/repository"
)

// UserService обрабатывает публичные профили пользователей
type UserService struct {
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
}

// NewUserService создает новый сервис профилей
func NewUserService(
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		listingRepo: listingRepo,
	}
}

// GetProfile возвращает профиль пользователя вместе с его объявлениями
func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.UserProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	listings, err := s.listingRepo.GetByAuthorID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user listings: %w", err)
	}

	return &entity.UserProfileResponse{
		User:     user,
		Listings: listings,
	}, nil
}

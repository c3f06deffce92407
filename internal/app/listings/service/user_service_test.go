package service

import (
	"context"
	"testing"

	"roamstay/internal/app/listings/entity"
	"roamstay/internal/app/listings/repository"
	"roamstay/internal/app/listings/repository/mocks"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGetProfile_Success(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	listingRepo := new(mocks.MockListingRepository)
	svc := NewUserService(userRepo, listingRepo)

	ctx := context.Background()
	user := &entity.User{ID: primitive.NewObjectID(), Username: "traveler"}
	listings := []entity.Listing{{ID: primitive.NewObjectID(), Name: "Cabin"}}

	userRepo.On("GetByID", ctx, user.ID.Hex()).Return(user, nil)
	listingRepo.On("GetByAuthorID", ctx, user.ID.Hex()).Return(listings, nil)

	profile, err := svc.GetProfile(ctx, user.ID.Hex())

	assert.NoError(t, err)
	assert.Equal(t, user, profile.User)
	assert.Len(t, profile.Listings, 1)
}

func TestGetProfile_NotFound(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	listingRepo := new(mocks.MockListingRepository)
	svc := NewUserService(userRepo, listingRepo)

	ctx := context.Background()
	userID := primitive.NewObjectID().Hex()

	userRepo.On("GetByID", ctx, userID).Return(nil, repository.ErrUserNotFound)

	profile, err := svc.GetProfile(ctx, userID)

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

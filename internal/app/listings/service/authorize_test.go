package service

import (
	"testing"

	"roamstay/internal/app/listings/entity"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize_Owner(t *testing.T) {
	identity := entity.Identity{UserID: "user-1"}

	assert.NoError(t, authorize(identity, "user-1", kindListing))
	assert.NoError(t, authorize(identity, "user-1", kindComment))
	assert.NoError(t, authorize(identity, "user-1", kindReview))
}

func TestAuthorize_NonOwner(t *testing.T) {
	identity := entity.Identity{UserID: "user-2"}

	assert.ErrorIs(t, authorize(identity, "user-1", kindListing), ErrForbidden)
	assert.ErrorIs(t, authorize(identity, "user-1", kindComment), ErrForbidden)
	assert.ErrorIs(t, authorize(identity, "user-1", kindReview), ErrForbidden)
}

func TestAuthorize_AdminBypass(t *testing.T) {
	admin := entity.Identity{UserID: "admin-1", IsAdmin: true}

	assert.NoError(t, authorize(admin, "user-1", kindListing))
	assert.NoError(t, authorize(admin, "user-1", kindComment))
}

func TestAuthorize_AdminCannotTouchForeignReview(t *testing.T) {
	admin := entity.Identity{UserID: "admin-1", IsAdmin: true}

	assert.ErrorIs(t, authorize(admin, "user-1", kindReview), ErrForbidden)
}

func TestAuthorize_AdminOwnReview(t *testing.T) {
	admin := entity.Identity{UserID: "admin-1", IsAdmin: true}

	assert.NoError(t, authorize(admin, "admin-1", kindReview))
}

func TestAuthorize_EmptyIdentity(t *testing.T) {
	// Пустой UserID не должен совпадать с пустым ownerID
	assert.ErrorIs(t, authorize(entity.Identity{}, "", kindListing), ErrForbidden)
}

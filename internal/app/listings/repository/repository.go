package repository

import (
	"context"
	"errors"
	"time"

	"roamstay/internal/app/listings/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrListingNotFound = errors.New("listing not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrTokenNotFound   = errors.New("token not found")
)

// ListingRepository определяет методы для работы с объявлениями в MongoDB
type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	GetAll(ctx context.Context) ([]entity.Listing, error)
	SearchByName(ctx context.Context, query string) ([]entity.Listing, error)
	GetByAuthorID(ctx context.Context, authorID string) ([]entity.Listing, error)
	Update(ctx context.Context, listing *entity.Listing) error
	UpdateRating(ctx context.Context, id string, rating float64) error
	AddComment(ctx context.Context, listingID string, commentID primitive.ObjectID) error
	RemoveComment(ctx context.Context, listingID string, commentID primitive.ObjectID) error
	AddReview(ctx context.Context, listingID string, reviewID primitive.ObjectID) error
	RemoveReview(ctx context.Context, listingID string, reviewID primitive.ObjectID) error
	AddLike(ctx context.Context, listingID string, userID string) error
	RemoveLike(ctx context.Context, listingID string, userID string) error
	Delete(ctx context.Context, id string) error
}

// CommentRepository определяет методы для работы с комментариями
type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	GetByID(ctx context.Context, id string) (*entity.Comment, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Comment, error)
	Update(ctx context.Context, comment *entity.Comment) error
	Delete(ctx context.Context, id string) error
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error
}

// ReviewRepository определяет методы для работы с отзывами
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	GetByListingID(ctx context.Context, listingID string) ([]entity.Review, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id string) error
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error
}

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

// TokenRepository определяет методы для работы с токенами в Redis:
// refresh токены, черный список access токенов и токены сброса пароля
type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, userID string, token string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (string, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteUserRefreshTokens(ctx context.Context, userID string) error
	AddToBlacklist(ctx context.Context, token string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	SaveResetToken(ctx context.Context, token string, userID string, ttl time.Duration) error
	GetResetToken(ctx context.Context, token string) (string, error)
	DeleteResetToken(ctx context.Context, token string) error
}

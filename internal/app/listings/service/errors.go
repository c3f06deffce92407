package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrListingNotFound     = errors.New("listing not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrReviewNotFound      = errors.New("review not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrForbidden           = errors.New("no permission to modify this resource")
	ErrDuplicateReview     = errors.New("review already exists for this listing")
	ErrNoSearchResults     = errors.New("no listings match the search query")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrMediaUpload         = errors.New("media store operation failed")
	ErrUserExists          = errors.New("user with this username or email already exists")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrInvalidResetToken   = errors.New("password reset token is invalid or has expired")
)

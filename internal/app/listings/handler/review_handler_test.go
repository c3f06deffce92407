package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"roamstay/internal/app/listings/entity"
	"roamstay/internal/app/listings/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) ListReviews(ctx context.Context, listingID string) ([]entity.Review, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *MockReviewService) CreateReview(ctx context.Context, identity entity.Identity, listingID string, req *entity.CreateReviewRequest) (*entity.Review, error) {
	args := m.Called(ctx, identity, listingID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) UpdateReview(ctx context.Context, identity entity.Identity, reviewID string, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	args := m.Called(ctx, identity, reviewID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) DeleteReview(ctx context.Context, identity entity.Identity, reviewID string) error {
	args := m.Called(ctx, identity, reviewID)
	return args.Error(0)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// setIdentity подставляет данные пользователя так же,
// как это делает middleware аутентификации
func setIdentity(identity entity.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", identity.UserID)
		c.Set("username", identity.Username)
		c.Set("is_admin", identity.IsAdmin)
		c.Next()
	}
}

func TestCreateReviewHandler_Success(t *testing.T) {
	router := setupTestRouter()
	identity := entity.Identity{UserID: "user-123", Username: "traveler"}
	review := &entity.Review{ID: primitive.NewObjectID(), Rating: 5, Text: "Wonderful stay, will return", Author: entity.Author{ID: "user-123"}}

	mockService := new(MockReviewService)
	mockService.On("CreateReview", mock.Anything, identity, "listing-1", mock.AnythingOfType("*entity.CreateReviewRequest")).Return(review, nil)

	h := NewReviewHandler(mockService)
	router.POST("/listings/:listing_id/reviews", setIdentity(identity), h.CreateReview)

	body, _ := json.Marshal(entity.CreateReviewRequest{Rating: 5, Text: "Wonderful stay, will return"})
	req, _ := http.NewRequest(http.MethodPost, "/listings/listing-1/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateReviewHandler_Duplicate(t *testing.T) {
	router := setupTestRouter()
	identity := entity.Identity{UserID: "user-123"}

	mockService := new(MockReviewService)
	mockService.On("CreateReview", mock.Anything, identity, "listing-1", mock.Anything).Return(nil, service.ErrDuplicateReview)

	h := NewReviewHandler(mockService)
	router.POST("/listings/:listing_id/reviews", setIdentity(identity), h.CreateReview)

	body, _ := json.Marshal(entity.CreateReviewRequest{Rating: 4, Text: "Trying to review again"})
	req, _ := http.NewRequest(http.MethodPost, "/listings/listing-1/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateReviewHandler_Unauthorized(t *testing.T) {
	router := setupTestRouter()

	h := NewReviewHandler(new(MockReviewService))
	router.POST("/listings/:listing_id/reviews", h.CreateReview)

	body, _ := json.Marshal(entity.CreateReviewRequest{Rating: 5, Text: "Wonderful stay, will return"})
	req, _ := http.NewRequest(http.MethodPost, "/listings/listing-1/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateReviewHandler_InvalidRating(t *testing.T) {
	router := setupTestRouter()
	identity := entity.Identity{UserID: "user-123"}

	mockService := new(MockReviewService)
	h := NewReviewHandler(mockService)
	router.POST("/listings/:listing_id/reviews", setIdentity(identity), h.CreateReview)

	body, _ := json.Marshal(entity.CreateReviewRequest{Rating: 6, Text: "Rating out of range here"})
	req, _ := http.NewRequest(http.MethodPost, "/listings/listing-1/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateReviewHandler_Forbidden(t *testing.T) {
	router := setupTestRouter()
	identity := entity.Identity{UserID: "admin-1", IsAdmin: true}

	mockService := new(MockReviewService)
	mockService.On("UpdateReview", mock.Anything, identity, "review-1", mock.Anything).Return(nil, service.ErrForbidden)

	h := NewReviewHandler(mockService)
	router.PATCH("/reviews/:review_id", setIdentity(identity), h.UpdateReview)

	body, _ := json.Marshal(entity.UpdateReviewRequest{Rating: 1})
	req, _ := http.NewRequest(http.MethodPatch, "/reviews/review-1", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteReviewHandler_NotFound(t *testing.T) {
	router := setupTestRouter()
	identity := entity.Identity{UserID: "user-123"}

	mockService := new(MockReviewService)
	mockService.On("DeleteReview", mock.Anything, identity, "missing").Return(service.ErrReviewNotFound)

	h := NewReviewHandler(mockService)
	router.DELETE("/reviews/:review_id", setIdentity(identity), h.DeleteReview)

	req, _ := http.NewRequest(http.MethodDelete, "/reviews/missing", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListReviewsHandler_Success(t *testing.T) {
	router := setupTestRouter()
	reviews := []entity.Review{
		{ID: primitive.NewObjectID(), Rating: 5},
		{ID: primitive.NewObjectID(), Rating: 3},
	}

	mockService := new(MockReviewService)
	mockService.On("ListReviews", mock.Anything, "listing-1").Return(reviews, nil)

	h := NewReviewHandler(mockService)
	router.GET("/listings/:listing_id/reviews", h.ListReviews)

	req, _ := http.NewRequest(http.MethodGet, "/listings/listing-1/reviews", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["total"])
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"roamstay/internal/app/listings/entity"
	"roamstay/internal/app/listings/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) CreateListing(ctx context.Context, identity entity.Identity, req *entity.CreateListingRequest, image io.Reader, filename string) (*entity.Listing, error) {
	args := m.Called(ctx, identity, req, image, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Listing), args.Error(1)
}

func (m *MockListingService) ListListings(ctx context.Context, search string) ([]entity.Listing, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Listing), args.Error(1)
}

func (m *MockListingService) GetListing(ctx context.Context, listingID string) (*entity.ListingDetailResponse, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ListingDetailResponse), args.Error(1)
}

func (m *MockListingService) UpdateListing(ctx context.Context, identity entity.Identity, listingID string, req *entity.UpdateListingRequest, image io.Reader, filename string) (*entity.Listing, error) {
	args := m.Called(ctx, identity, listingID, req, image, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Listing), args.Error(1)
}

func (m *MockListingService) DeleteListing(ctx context.Context, identity entity.Identity, listingID string) error {
	args := m.Called(ctx, identity, listingID)
	return args.Error(0)
}

func (m *MockListingService) ToggleLike(ctx context.Context, identity entity.Identity, listingID string) (*entity.LikeResponse, error) {
	args := m.Called(ctx, identity, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LikeResponse), args.Error(1)
}

// newListingForm собирает multipart-форму объявления с изображением
func newListingForm(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if withImage {
		part, err := writer.CreateFormFile("image", "cabin.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake-image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return buf, writer.FormDataContentType()
}

func listingFormFields() map[string]string {
	return map[string]string{
		"name":        "Cozy Cabin",
		"price":       "120",
		"description": "A cozy cabin in the woods",
		"location":    "Yosemite, CA",
	}
}

func TestCreateListingHandler_Success(t *testing.T) {
	router := setupTestRouter()
	identity := entity.Identity{UserID: "user-123", Username: "traveler"}
	listing := &entity.Listing{ID: primitive.NewObjectID(), Name: "Cozy Cabin"}

	mockService := new(MockListingService)
	mockService.On("CreateListing", mock.Anything, identity, mock.AnythingOfType("*entity.CreateListingRequest"), mock.Anything, "cabin.jpg").Return(listing, nil)

	h := NewListingHandler(mockService)
	router.POST("/listings", setIdentity(identity), h.CreateListing)

	body, contentType := newListingForm(t, listingFormFields(), true)
	req, _ := http.NewRequest(http.MethodPost, "/listings", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateListingHandler_MissingImage(t *testing.T) {
	router := setupTestRouter()
	identity := entity.Identity{UserID: "user-123"}

	mockService := new(MockListingService)
	h := NewListingHandler(mockService)
	router.POST("/listings", setIdentity(identity), h.CreateListing)

	body, contentType := newListingForm(t, listingFormFields(), false)
	req, _ := http.NewRequest(http.MethodPost, "/listings", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateListing", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateListingHandler_MediaUploadError(t *testing.T) {
	router := setupTestRouter()
	identity := entity.Identity{UserID: "user-123"}

	mockService := new(MockListingService)
	mockService.On("CreateListing", mock.Anything, identity, mock.Anything, mock.Anything, mock.Anything).Return(nil, service.ErrMediaUpload)

	h := NewListingHandler(mockService)
	router.POST("/listings", setIdentity(identity), h.CreateListing)

	body, contentType := newListingForm(t, listingFormFields(), true)
	req, _ := http.NewRequest(http.MethodPost, "/listings", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCreateListingHandler_InvalidAddress(t *testing.T) {
	router := setupTestRouter()
	identity := entity.Identity{UserID: "user-123"}

	mockService := new(MockListingService)
	mockService.On("CreateListing", mock.Anything, identity, mock.Anything, mock.Anything, mock.Anything).Return(nil, service.ErrInvalidAddress)

	h := NewListingHandler(mockService)
	router.POST("/listings", setIdentity(identity), h.CreateListing)

	body, contentType := newListingForm(t, listingFormFields(), true)
	req, _ := http.NewRequest(http.MethodPost, "/listings", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListListingsHandler_Success(t *testing.T) {
	router := setupTestRouter()
	listings := []entity.Listing{
		{ID: primitive.NewObjectID(), Name: "Cabin"},
		{ID: primitive.NewObjectID(), Name: "Villa"},
	}

	mockService := new(MockListingService)
	mockService.On("ListListings", mock.Anything, "").Return(listings, nil)

	h := NewListingHandler(mockService)
	router.GET("/listings", h.ListListings)

	req, _ := http.NewRequest(http.MethodGet, "/listings", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.ListingListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
}

func TestListListingsHandler_SearchNoResults(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockListingService)
	mockService.On("ListListings", mock.Anything, "nothing").Return(nil, service.ErrNoSearchResults)

	h := NewListingHandler(mockService)
	router.GET("/listings", h.ListListings)

	req, _ := http.NewRequest(http.MethodGet, "/listings?search=nothing", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Поиск без совпадений отвечает 404, а не пустым списком
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetListingHandler_NotFound(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockListingService)
	mockService.On("GetListing", mock.Anything, "missing").Return(nil, service.ErrListingNotFound)

	h := NewListingHandler(mockService)
	router.GET("/listings/:listing_id", h.GetListing)

	req, _ := http.NewRequest(http.MethodGet, "/listings/missing", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteListingHandler_Forbidden(t *testing.T) {
	router := setupTestRouter()
	identity := entity.Identity{UserID: "another-user"}

	mockService := new(MockListingService)
	mockService.On("DeleteListing", mock.Anything, identity, "listing-1").Return(service.ErrForbidden)

	h := NewListingHandler(mockService)
	router.DELETE("/listings/:listing_id", setIdentity(identity), h.DeleteListing)

	req, _ := http.NewRequest(http.MethodDelete, "/listings/listing-1", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestToggleLikeHandler_Success(t *testing.T) {
	router := setupTestRouter()
	identity := entity.Identity{UserID: "user-123"}

	mockService := new(MockListingService)
	mockService.On("ToggleLike", mock.Anything, identity, "listing-1").Return(&entity.LikeResponse{Liked: true, Total: 3}, nil)

	h := NewListingHandler(mockService)
	router.POST("/listings/:listing_id/like", setIdentity(identity), h.ToggleLike)

	req, _ := http.NewRequest(http.MethodPost, "/listings/listing-1/like", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.LikeResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Liked)
	assert.Equal(t, 3, resp.Total)
}

var _ ListingServiceInterface = (*MockListingService)(nil)

func TestRouterIdentityHelper(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set("user_id", "user-123")
	c.Set("username", "traveler")
	c.Set("is_admin", true)

	identity, ok := identityFromContext(c)

	assert.True(t, ok)
	assert.Equal(t, entity.Identity{UserID: "user-123", Username: "traveler", IsAdmin: true}, identity)
}

package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"roamstay/internal/app/listings/entity"
	"roamstay/internal/app/listings/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ListingServiceInterface interface {
	CreateListing(ctx context.Context, identity entity.Identity, req *entity.CreateListingRequest, image io.Reader, filename string) (*entity.Listing, error)
	ListListings(ctx context.Context, search string) ([]entity.Listing, error)
	GetListing(ctx context.Context, listingID string) (*entity.ListingDetailResponse, error)
	UpdateListing(ctx context.Context, identity entity.Identity, listingID string, req *entity.UpdateListingRequest, image io.Reader, filename string) (*entity.Listing, error)
	DeleteListing(ctx context.Context, identity entity.Identity, listingID string) error
	ToggleLike(ctx context.Context, identity entity.Identity, listingID string) (*entity.LikeResponse, error)
}

type ListingHandler struct {
	listingService ListingServiceInterface
	validator      *validator.Validate
}

func NewListingHandler(listingService ListingServiceInterface) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		validator:      validator.New(),
	}
}

// CreateListing принимает multipart-форму с полями объявления
// и обязательным изображением
func (h *ListingHandler) CreateListing(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req entity.CreateListingRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form data"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image file"})
		return
	}
	defer file.Close()

	listing, err := h.listingService.CreateListing(c.Request.Context(), identity, &req, file, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, service.ErrMediaUpload) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload image"})
			return
		}
		if errors.Is(err, service.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Address could not be geocoded"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// ListListings возвращает все объявления либо результаты поиска
// по параметру search (без учета регистра)
func (h *ListingHandler) ListListings(c *gin.Context) {
	listings, err := h.listingService.ListListings(c.Request.Context(), c.Query("search"))
	if err != nil {
		if errors.Is(err, service.ErrNoSearchResults) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No listings match your search"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listings"})
		return
	}

	c.JSON(http.StatusOK, entity.ListingListResponse{
		Listings: listings,
		Total:    len(listings),
	})
}

func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID := c.Param("listing_id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Listing ID is required"})
		return
	}

	detail, err := h.listingService.GetListing(c.Request.Context(), listingID)
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listing"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UpdateListing принимает multipart-форму, изображение опционально
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	listingID := c.Param("listing_id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Listing ID is required"})
		return
	}

	var req entity.UpdateListingRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form data"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	var image io.Reader
	var filename string
	if fileHeader, err := c.FormFile("image"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image file"})
			return
		}
		defer file.Close()
		image = file
		filename = fileHeader.Filename
	}

	listing, err := h.listingService.UpdateListing(c.Request.Context(), identity, listingID, &req, image, filename)
	if err != nil {
		h.respondMutationError(c, err, "Failed to update listing")
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) DeleteListing(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	listingID := c.Param("listing_id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Listing ID is required"})
		return
	}

	if err := h.listingService.DeleteListing(c.Request.Context(), identity, listingID); err != nil {
		h.respondMutationError(c, err, "Failed to delete listing")
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Listing deleted successfully",
	})
}

func (h *ListingHandler) ToggleLike(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	listingID := c.Param("listing_id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Listing ID is required"})
		return
	}

	resp, err := h.listingService.ToggleLike(c.Request.Context(), identity, listingID)
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) respondMutationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrListingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, service.ErrMediaUpload):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Media storage operation failed"})
	case errors.Is(err, service.ErrInvalidAddress):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Address could not be geocoded"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

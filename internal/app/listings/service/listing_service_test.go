package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"roamstay/internal/app/listings/entity"
	"roamstay/internal/app/listings/repository"
	"roamstay/internal/app/listings/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type listingServiceMocks struct {
	listingRepo *mocks.MockListingRepository
	commentRepo *mocks.MockCommentRepository
	reviewRepo  *mocks.MockReviewRepository
	mediaStore  *mocks.MockMediaStore
	geocoder    *mocks.MockGeocoder
	publisher   *mocks.MockMessagePublisher
}

func newListingService() (*ListingService, *listingServiceMocks) {
	m := &listingServiceMocks{
		listingRepo: new(mocks.MockListingRepository),
		commentRepo: new(mocks.MockCommentRepository),
		reviewRepo:  new(mocks.MockReviewRepository),
		mediaStore:  new(mocks.MockMediaStore),
		geocoder:    new(mocks.MockGeocoder),
		publisher:   &mocks.MockMessagePublisher{Messages: make([][]byte, 0)},
	}
	svc := NewListingService(m.listingRepo, m.commentRepo, m.reviewRepo, m.mediaStore, m.geocoder, m.publisher, "roamstay/listings")
	return svc, m
}

func TestCreateListing_Success(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	identity := entity.Identity{UserID: "user-123", Username: "traveler"}
	req := &entity.CreateListingRequest{Name: "Cozy Cabin", Price: 120, Description: "A cozy cabin in the woods", Location: "Yosemite, CA"}
	asset := &entity.MediaAsset{URL: "https://cdn.example.com/cabin.jpg", PublicID: "roamstay/cabin"}
	points := []entity.GeoPoint{{Lat: 37.86, Lng: -119.53, FormattedAddress: "Yosemite Valley, CA 95389, USA"}}

	m.mediaStore.On("Upload", ctx, mock.Anything, "cabin.jpg", "roamstay/listings").Return(asset, nil)
	m.geocoder.On("Geocode", ctx, "Yosemite, CA").Return(points, nil)
	m.listingRepo.On("Create", ctx, mock.AnythingOfType("*entity.Listing")).Return(nil).Run(func(args mock.Arguments) {
		listing := args.Get(1).(*entity.Listing)
		listing.ID = primitive.NewObjectID()
	})
	m.publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	result, err := svc.CreateListing(ctx, identity, req, strings.NewReader("image-bytes"), "cabin.jpg")

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "Cozy Cabin", result.Name)
	assert.Equal(t, "Yosemite Valley, CA 95389, USA", result.Location)
	assert.Equal(t, 37.86, result.Lat)
	assert.Equal(t, asset.URL, result.ImageURL)
	assert.Equal(t, asset.PublicID, result.ImageID)
	assert.Equal(t, "user-123", result.Author.ID)
	assert.Equal(t, "traveler", result.Author.Username)
	assert.Equal(t, 0.0, result.Rating)
}

func TestCreateListing_MediaUploadError(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	req := &entity.CreateListingRequest{Name: "Cozy Cabin", Price: 120, Description: "A cozy cabin in the woods", Location: "Yosemite, CA"}

	m.mediaStore.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("cloudinary down"))

	result, err := svc.CreateListing(ctx, entity.Identity{UserID: "user-123"}, req, strings.NewReader("x"), "cabin.jpg")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrMediaUpload)
	m.geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	m.listingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateListing_GeocodeError(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	req := &entity.CreateListingRequest{Name: "Cozy Cabin", Price: 120, Description: "A cozy cabin in the woods", Location: "nowhere at all"}
	asset := &entity.MediaAsset{URL: "https://cdn.example.com/cabin.jpg", PublicID: "roamstay/cabin"}

	m.mediaStore.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything).Return(asset, nil)
	m.geocoder.On("Geocode", ctx, "nowhere at all").Return(nil, errors.New("geocoder error"))

	result, err := svc.CreateListing(ctx, entity.Identity{UserID: "user-123"}, req, strings.NewReader("x"), "cabin.jpg")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidAddress)
	m.listingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateListing_GeocodeEmptyResult(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	req := &entity.CreateListingRequest{Name: "Cozy Cabin", Price: 120, Description: "A cozy cabin in the woods", Location: "gibberish"}
	asset := &entity.MediaAsset{URL: "https://cdn.example.com/cabin.jpg", PublicID: "roamstay/cabin"}

	m.mediaStore.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything).Return(asset, nil)
	m.geocoder.On("Geocode", ctx, "gibberish").Return([]entity.GeoPoint{}, nil)

	result, err := svc.CreateListing(ctx, entity.Identity{UserID: "user-123"}, req, strings.NewReader("x"), "cabin.jpg")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestListListings_All(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	listings := []entity.Listing{
		{ID: primitive.NewObjectID(), Name: "Cabin"},
		{ID: primitive.NewObjectID(), Name: "Villa"},
	}

	m.listingRepo.On("GetAll", ctx).Return(listings, nil)

	result, err := svc.ListListings(ctx, "")

	assert.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestListListings_WhitespaceQueryReturnsAll(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	m.listingRepo.On("GetAll", ctx).Return([]entity.Listing{}, nil)

	result, err := svc.ListListings(ctx, "   ")

	assert.NoError(t, err)
	assert.Empty(t, result)
	m.listingRepo.AssertNotCalled(t, "SearchByName", mock.Anything, mock.Anything)
}

func TestListListings_SearchMatch(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	listings := []entity.Listing{{ID: primitive.NewObjectID(), Name: "Cozy Cabin"}}

	m.listingRepo.On("SearchByName", ctx, "cabin").Return(listings, nil)

	result, err := svc.ListListings(ctx, "cabin")

	assert.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestListListings_SearchNoResults(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	m.listingRepo.On("SearchByName", ctx, "nothing").Return([]entity.Listing{}, nil)

	result, err := svc.ListListings(ctx, "nothing")

	// Пустой результат поиска это ошибка, а не пустой список
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoSearchResults)
}

func TestGetListing_Detail(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	listingID := primitive.NewObjectID()
	commentID := primitive.NewObjectID()
	reviewID := primitive.NewObjectID()
	listing := &entity.Listing{
		ID:         listingID,
		Name:       "Cabin",
		CommentIDs: []primitive.ObjectID{commentID},
		ReviewIDs:  []primitive.ObjectID{reviewID},
	}
	comments := []entity.Comment{{ID: commentID, Text: "Looks great"}}
	reviews := []entity.Review{{ID: reviewID, Rating: 5}}

	m.listingRepo.On("GetByID", ctx, listingID.Hex()).Return(listing, nil)
	m.commentRepo.On("GetByIDs", ctx, listing.CommentIDs).Return(comments, nil)
	m.reviewRepo.On("GetByListingID", ctx, listingID.Hex()).Return(reviews, nil)

	result, err := svc.GetListing(ctx, listingID.Hex())

	assert.NoError(t, err)
	assert.Equal(t, listing, result.Listing)
	assert.Len(t, result.Comments, 1)
	assert.Len(t, result.Reviews, 1)
}

func TestGetListing_NotFound(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	listingID := primitive.NewObjectID().Hex()

	m.listingRepo.On("GetByID", ctx, listingID).Return(nil, repository.ErrListingNotFound)

	result, err := svc.GetListing(ctx, listingID)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestUpdateListing_Forbidden(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	listingID := primitive.NewObjectID()
	listing := &entity.Listing{ID: listingID, Author: entity.Author{ID: "owner-user"}}

	m.listingRepo.On("GetByID", ctx, listingID.Hex()).Return(listing, nil)

	req := &entity.UpdateListingRequest{Name: "New Name", Price: 99, Description: "Updated description", Location: "Somewhere"}
	result, err := svc.UpdateListing(ctx, entity.Identity{UserID: "another-user"}, listingID.Hex(), req, nil, "")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrForbidden)
	m.listingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateListing_AdminBypass(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	listingID := primitive.NewObjectID()
	listing := &entity.Listing{
		ID:       listingID,
		Name:     "Old Name",
		Location: "Yosemite Valley, CA 95389, USA",
		Author:   entity.Author{ID: "owner-user"},
	}

	m.listingRepo.On("GetByID", ctx, listingID.Hex()).Return(listing, nil)
	m.listingRepo.On("Update", ctx, mock.AnythingOfType("*entity.Listing")).Return(nil)

	req := &entity.UpdateListingRequest{Name: "New Name", Price: 99, Description: "Updated description", Location: "Yosemite Valley, CA 95389, USA"}
	result, err := svc.UpdateListing(ctx, entity.Identity{UserID: "admin-1", IsAdmin: true}, listingID.Hex(), req, nil, "")

	assert.NoError(t, err)
	assert.Equal(t, "New Name", result.Name)
	// Локация не менялась, геокодер не вызывается
	m.geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestUpdateListing_RegeocodeOnLocationChange(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	listingID := primitive.NewObjectID()
	listing := &entity.Listing{
		ID:       listingID,
		Location: "Old Town",
		Author:   entity.Author{ID: "user-123"},
	}
	points := []entity.GeoPoint{{Lat: 48.85, Lng: 2.35, FormattedAddress: "Paris, France"}}

	m.listingRepo.On("GetByID", ctx, listingID.Hex()).Return(listing, nil)
	m.geocoder.On("Geocode", ctx, "Paris").Return(points, nil)
	m.listingRepo.On("Update", ctx, mock.AnythingOfType("*entity.Listing")).Return(nil)

	req := &entity.UpdateListingRequest{Name: "Flat", Price: 150, Description: "Nice flat in the center", Location: "Paris"}
	result, err := svc.UpdateListing(ctx, entity.Identity{UserID: "user-123"}, listingID.Hex(), req, nil, "")

	assert.NoError(t, err)
	assert.Equal(t, "Paris, France", result.Location)
	assert.Equal(t, 48.85, result.Lat)
	assert.Equal(t, 2.35, result.Lng)
}

func TestUpdateListing_ImageReplaced(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	listingID := primitive.NewObjectID()
	listing := &entity.Listing{
		ID:       listingID,
		Location: "Paris, France",
		ImageID:  "roamstay/old-image",
		Author:   entity.Author{ID: "user-123"},
	}
	asset := &entity.MediaAsset{URL: "https://cdn.example.com/new.jpg", PublicID: "roamstay/new-image"}

	m.listingRepo.On("GetByID", ctx, listingID.Hex()).Return(listing, nil)
	m.mediaStore.On("Destroy", ctx, "roamstay/old-image").Return(nil)
	m.mediaStore.On("Upload", ctx, mock.Anything, "new.jpg", "roamstay/listings").Return(asset, nil)
	m.listingRepo.On("Update", ctx, mock.AnythingOfType("*entity.Listing")).Return(nil)

	req := &entity.UpdateListingRequest{Name: "Flat", Price: 150, Description: "Nice flat in the center", Location: "Paris, France"}
	result, err := svc.UpdateListing(ctx, entity.Identity{UserID: "user-123"}, listingID.Hex(), req, strings.NewReader("new-image"), "new.jpg")

	assert.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/new.jpg", result.ImageURL)
	assert.Equal(t, "roamstay/new-image", result.ImageID)
}

func TestDeleteListing_CascadeOrder(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	listingID := primitive.NewObjectID()
	listing := &entity.Listing{
		ID:         listingID,
		Name:       "Cabin",
		ImageID:    "roamstay/cabin",
		CommentIDs: []primitive.ObjectID{primitive.NewObjectID()},
		ReviewIDs:  []primitive.ObjectID{primitive.NewObjectID()},
		Author:     entity.Author{ID: "user-123"},
	}

	var order []string
	m.listingRepo.On("GetByID", ctx, listingID.Hex()).Return(listing, nil)
	m.mediaStore.On("Destroy", ctx, "roamstay/cabin").Return(nil).Run(func(mock.Arguments) {
		order = append(order, "media")
	})
	m.commentRepo.On("DeleteByIDs", ctx, listing.CommentIDs).Return(nil).Run(func(mock.Arguments) {
		order = append(order, "comments")
	})
	m.reviewRepo.On("DeleteByIDs", ctx, listing.ReviewIDs).Return(nil).Run(func(mock.Arguments) {
		order = append(order, "reviews")
	})
	m.listingRepo.On("Delete", ctx, listingID.Hex()).Return(nil).Run(func(mock.Arguments) {
		order = append(order, "listing")
	})
	m.publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	err := svc.DeleteListing(ctx, entity.Identity{UserID: "user-123"}, listingID.Hex())

	assert.NoError(t, err)
	// Документ объявления удаляется последним
	assert.Equal(t, []string{"media", "comments", "reviews", "listing"}, order)
}

func TestDeleteListing_Forbidden(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	listingID := primitive.NewObjectID()
	listing := &entity.Listing{ID: listingID, Author: entity.Author{ID: "owner-user"}}

	m.listingRepo.On("GetByID", ctx, listingID.Hex()).Return(listing, nil)

	err := svc.DeleteListing(ctx, entity.Identity{UserID: "another-user"}, listingID.Hex())

	assert.ErrorIs(t, err, ErrForbidden)
	m.mediaStore.AssertNotCalled(t, "Destroy", mock.Anything, mock.Anything)
	m.listingRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestToggleLike_Like(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	listingID := primitive.NewObjectID()
	listing := &entity.Listing{ID: listingID, Likes: []string{"user-1"}}

	m.listingRepo.On("GetByID", ctx, listingID.Hex()).Return(listing, nil)
	m.listingRepo.On("AddLike", ctx, listingID.Hex(), "user-2").Return(nil)

	result, err := svc.ToggleLike(ctx, entity.Identity{UserID: "user-2"}, listingID.Hex())

	assert.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, 2, result.Total)
}

func TestToggleLike_Unlike(t *testing.T) {
	svc, m := newListingService()

	ctx := context.Background()
	listingID := primitive.NewObjectID()
	listing := &entity.Listing{ID: listingID, Likes: []string{"user-1", "user-2"}}

	m.listingRepo.On("GetByID", ctx, listingID.Hex()).Return(listing, nil)
	m.listingRepo.On("RemoveLike", ctx, listingID.Hex(), "user-2").Return(nil)

	result, err := svc.ToggleLike(ctx, entity.Identity{UserID: "user-2"}, listingID.Hex())

	assert.NoError(t, err)
	assert.False(t, result.Liked)
	assert.Equal(t, 1, result.Total)
}

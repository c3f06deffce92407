package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"roamstay/internal/app/listings/entity"
	"roamstay/internal/app/listings/infrastructure"
	"roamstay/internal/app/listings/repository"
	"roamstay/pkg/metrics"
)

// ListingService обрабатывает бизнес-логику объявлений
// Координирует репозитории, медиахранилище, геокодер и Kafka
type ListingService struct {
	listingRepo repository.ListingRepository
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
	mediaStore  infrastructure.MediaStore
	geocoder    infrastructure.Geocoder
	publisher   infrastructure.MessagePublisher
	mediaFolder string
}

// NewListingService создает новый сервис объявлений с внедрением зависимостей
func NewListingService(
	listingRepo repository.ListingRepository,
	commentRepo repository.CommentRepository,
	reviewRepo repository.ReviewRepository,
	mediaStore infrastructure.MediaStore,
	geocoder infrastructure.Geocoder,
	publisher infrastructure.MessagePublisher,
	mediaFolder string,
) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
		mediaStore:  mediaStore,
		geocoder:    geocoder,
		publisher:   publisher,
		mediaFolder: mediaFolder,
	}
}

// CreateListing создает объявление
// Порядок внешних шагов фиксирован: загрузка изображения, геокодирование,
// запись документа. Ошибка любого шага прерывает поток, документ не создается
func (s *ListingService) CreateListing(ctx context.Context, identity entity.Identity, req *entity.CreateListingRequest, image io.Reader, filename string) (*entity.Listing, error) {
	asset, err := s.mediaStore.Upload(ctx, image, filename, s.mediaFolder)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}

	point, err := s.geocodeLocation(ctx, req.Location)
	if err != nil {
		return nil, err
	}

	listing := &entity.Listing{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Location:    point.FormattedAddress,
		Lat:         point.Lat,
		Lng:         point.Lng,
		ImageURL:    asset.URL,
		ImageID:     asset.PublicID,
		Author: entity.Author{
			ID:       identity.UserID,
			Username: identity.Username,
		},
		Rating: 0,
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	metrics.ListingsCreated.Inc()

	event := entity.ListingEvent{
		EventType: "LISTING_CREATED",
		ListingID: listing.ID.Hex(),
		UserID:    identity.UserID,
		Name:      listing.Name,
		Timestamp: time.Now(),
	}
	if err := s.publishListingEvent(ctx, event); err != nil {
		// Объявление уже создано, проблемы с Kafka не критичны
		fmt.Printf("failed to publish listing created event: %v\n", err)
	}

	return listing, nil
}

// ListListings возвращает коллекцию объявлений
// Непустой запрос без совпадений - это ошибка NoSearchResults,
// а не пустой список: поведение унаследовано и закреплено контрактом
func (s *ListingService) ListListings(ctx context.Context, search string) ([]entity.Listing, error) {
	search = strings.TrimSpace(search)

	if search == "" {
		listings, err := s.listingRepo.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get listings: %w", err)
		}
		return listings, nil
	}

	listings, err := s.listingRepo.SearchByName(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	if len(listings) == 0 {
		return nil, ErrNoSearchResults
	}

	return listings, nil
}

// GetListing возвращает объявление с комментариями и отзывами
// Отзывы отсортированы от новых к старым
func (s *ListingService) GetListing(ctx context.Context, listingID string) (*entity.ListingDetailResponse, error) {
	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.GetByIDs(ctx, listing.CommentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing comments: %w", err)
	}

	reviews, err := s.reviewRepo.GetByListingID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing reviews: %w", err)
	}

	return &entity.ListingDetailResponse{
		Listing:  listing,
		Comments: comments,
		Reviews:  reviews,
	}, nil
}

// UpdateListing обновляет объявление с проверкой прав доступа
// Новое изображение заменяет старое (сначала удаление, потом загрузка),
// смена локации вызывает повторное геокодирование. Ошибка внешнего шага
// прерывает операцию без изменения документа: уже удаленный из
// медиахранилища старый ассет не восстанавливается - это документированный
// пробел контракта, унаследованный от исходного поведения
func (s *ListingService) UpdateListing(ctx context.Context, identity entity.Identity, listingID string, req *entity.UpdateListingRequest, image io.Reader, filename string) (*entity.Listing, error) {
	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if err := authorize(identity, listing.Author.ID, kindListing); err != nil {
		return nil, err
	}

	if image != nil {
		if err := s.mediaStore.Destroy(ctx, listing.ImageID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMediaUpload, err)
		}
		asset, err := s.mediaStore.Upload(ctx, image, filename, s.mediaFolder)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMediaUpload, err)
		}
		listing.ImageURL = asset.URL
		listing.ImageID = asset.PublicID
	}

	if req.Location != listing.Location {
		point, err := s.geocodeLocation(ctx, req.Location)
		if err != nil {
			return nil, err
		}
		listing.Location = point.FormattedAddress
		listing.Lat = point.Lat
		listing.Lng = point.Lng
	}

	listing.Name = req.Name
	listing.Price = req.Price
	listing.Description = req.Description

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	return listing, nil
}

// DeleteListing удаляет объявление с каскадом
// Порядок закреплен контрактом: медиа-ассет, затем комментарии и отзывы
// по спискам ссылок, сам документ последним - обрыв посреди каскада
// не оставит ссылку на уже удаленного родителя
func (s *ListingService) DeleteListing(ctx context.Context, identity entity.Identity, listingID string) error {
	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return err
	}

	if err := authorize(identity, listing.Author.ID, kindListing); err != nil {
		return err
	}

	if err := s.mediaStore.Destroy(ctx, listing.ImageID); err != nil {
		return fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}

	if err := s.commentRepo.DeleteByIDs(ctx, listing.CommentIDs); err != nil {
		return fmt.Errorf("failed to delete listing comments: %w", err)
	}

	if err := s.reviewRepo.DeleteByIDs(ctx, listing.ReviewIDs); err != nil {
		return fmt.Errorf("failed to delete listing reviews: %w", err)
	}

	if err := s.listingRepo.Delete(ctx, listingID); err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	event := entity.ListingEvent{
		EventType: "LISTING_DELETED",
		ListingID: listingID,
		UserID:    identity.UserID,
		Name:      listing.Name,
		Timestamp: time.Now(),
	}
	if err := s.publishListingEvent(ctx, event); err != nil {
		fmt.Printf("failed to publish listing deleted event: %v\n", err)
	}

	return nil
}

// ToggleLike переключает лайк текущего пользователя
// Повторный вызов возвращает объявление в исходное состояние
func (s *ListingService) ToggleLike(ctx context.Context, identity entity.Identity, listingID string) (*entity.LikeResponse, error) {
	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	liked := slices.Contains(listing.Likes, identity.UserID)

	if liked {
		if err := s.listingRepo.RemoveLike(ctx, listingID, identity.UserID); err != nil {
			return nil, fmt.Errorf("failed to remove like: %w", err)
		}
		metrics.ListingLikesToggled.WithLabelValues("unliked").Inc()
		return &entity.LikeResponse{Liked: false, Total: len(listing.Likes) - 1}, nil
	}

	if err := s.listingRepo.AddLike(ctx, listingID, identity.UserID); err != nil {
		return nil, fmt.Errorf("failed to add like: %w", err)
	}
	metrics.ListingLikesToggled.WithLabelValues("liked").Inc()
	return &entity.LikeResponse{Liked: true, Total: len(listing.Likes) + 1}, nil
}

func (s *ListingService) getListing(ctx context.Context, listingID string) (*entity.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

// geocodeLocation переводит адрес в координаты
// Ошибка провайдера и пустой результат равнозначны: адрес невалиден
func (s *ListingService) geocodeLocation(ctx context.Context, location string) (*entity.GeoPoint, error) {
	points, err := s.geocoder.Geocode(ctx, location)
	if err != nil || len(points) == 0 {
		return nil, ErrInvalidAddress
	}
	return &points[0], nil
}

func (s *ListingService) publishListingEvent(ctx context.Context, event entity.ListingEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal listing event: %w", err)
	}

	if err := s.publisher.PublishMessage(ctx, event.ListingID, eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roamstay/internal/app/listings/entity"
	"roamstay/internal/app/listings/infrastructure"
	"roamstay/internal/app/listings/repository"
	"roamstay/pkg/metrics"
)

// ReviewService обрабатывает бизнес-логику отзывов
// После каждой мутации отзыва средний рейтинг родителя пересчитывается
// из текущего набора отзывов и сохраняется
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	listingRepo repository.ListingRepository
	publisher   infrastructure.MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	listingRepo repository.ListingRepository,
	publisher infrastructure.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		listingRepo: listingRepo,
		publisher:   publisher,
	}
}

// ListReviews возвращает отзывы объявления, новые первыми
func (s *ReviewService) ListReviews(ctx context.Context, listingID string) ([]entity.Review, error) {
	if _, err := s.getListing(ctx, listingID); err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.GetByListingID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	return reviews, nil
}

// CreateReview создает отзыв
// Инвариант: не более одного отзыва на пару (автор, объявление) -
// повторная попытка завершается ErrDuplicateReview без создания записи
func (s *ReviewService) CreateReview(ctx context.Context, identity entity.Identity, listingID string, req *entity.CreateReviewRequest) (*entity.Review, error) {
	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	existing, err := s.reviewRepo.GetByListingID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing reviews: %w", err)
	}
	for _, review := range existing {
		if review.Author.ID == identity.UserID {
			return nil, ErrDuplicateReview
		}
	}

	review := &entity.Review{
		ListingID: listing.ID,
		Rating:    req.Rating,
		Text:      req.Text,
		Author: entity.Author{
			ID:       identity.UserID,
			Username: identity.Username,
		},
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.listingRepo.AddReview(ctx, listingID, review.ID); err != nil {
		return nil, fmt.Errorf("failed to attach review to listing: %w", err)
	}

	if err := s.recomputeRating(ctx, listingID); err != nil {
		return nil, err
	}

	metrics.ReviewsCreated.Inc()
	metrics.ReviewsRating.Observe(float64(review.Rating))

	event := entity.ReviewEvent{
		EventType: "REVIEW_CREATED",
		ReviewID:  review.ID.Hex(),
		ListingID: listingID,
		UserID:    identity.UserID,
		Rating:    review.Rating,
		Timestamp: time.Now(),
	}
	if err := s.publishReviewEvent(ctx, event); err != nil {
		// Отзыв уже создан, проблемы с Kafka не критичны
		fmt.Printf("failed to publish review created event: %v\n", err)
	}

	return review, nil
}

// UpdateReview обновляет отзыв с проверкой прав доступа
// Изменять отзыв может только его автор, затем рейтинг родителя
// пересчитывается
func (s *ReviewService) UpdateReview(ctx context.Context, identity entity.Identity, reviewID string, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	review, err := s.getReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if err := authorize(identity, review.Author.ID, kindReview); err != nil {
		return nil, err
	}

	// Обновляем только переданные поля
	if req.Rating > 0 {
		review.Rating = req.Rating
	}
	if req.Text != "" {
		review.Text = req.Text
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	if err := s.recomputeRating(ctx, review.ListingID.Hex()); err != nil {
		return nil, err
	}

	return review, nil
}

// DeleteReview удаляет отзыв с проверкой прав доступа
// Удалить отзыв может только его автор; ID убирается из списка ссылок
// родителя, рейтинг пересчитывается из оставшихся отзывов
func (s *ReviewService) DeleteReview(ctx context.Context, identity entity.Identity, reviewID string) error {
	review, err := s.getReview(ctx, reviewID)
	if err != nil {
		return err
	}

	if err := authorize(identity, review.Author.ID, kindReview); err != nil {
		return err
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	listingID := review.ListingID.Hex()

	if err := s.listingRepo.RemoveReview(ctx, listingID, review.ID); err != nil {
		return fmt.Errorf("failed to detach review from listing: %w", err)
	}

	return s.recomputeRating(ctx, listingID)
}

// recomputeRating выводит средний рейтинг из текущего набора отзывов
// и сохраняет его на родительском объявлении
func (s *ReviewService) recomputeRating(ctx context.Context, listingID string) error {
	reviews, err := s.reviewRepo.GetByListingID(ctx, listingID)
	if err != nil {
		return fmt.Errorf("failed to get reviews for rating: %w", err)
	}

	if err := s.listingRepo.UpdateRating(ctx, listingID, AverageRating(reviews)); err != nil {
		return fmt.Errorf("failed to persist listing rating: %w", err)
	}

	return nil
}

func (s *ReviewService) getListing(ctx context.Context, listingID string) (*entity.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

func (s *ReviewService) getReview(ctx context.Context, reviewID string) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

func (s *ReviewService) publishReviewEvent(ctx context.Context, event entity.ReviewEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal review event: %w", err)
	}

	if err := s.publisher.PublishMessage(ctx, event.ReviewID, eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}

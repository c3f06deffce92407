package processor

import (
	"context"

	"roamstay/internal/app/listings/repository"
	"roamstay/internal/app/listings/service"
	"roamstay/pkg/logger"
	"roamstay/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// RatingReconciler периодически пересчитывает средние рейтинги объявлений
// из фактического набора отзывов. Конкурентные мутации отзывов одного
// объявления пишут рейтинг по схеме "последний победил", поэтому
// сохраненное значение может разойтись с производным - реконсилятор
// устраняет этот дрейф
type RatingReconciler struct {
	cron        *cron.Cron
	listingRepo repository.ListingRepository
	reviewRepo  repository.ReviewRepository
}

// NewRatingReconciler создает новый реконсилятор рейтингов
func NewRatingReconciler(
	listingRepo repository.ListingRepository,
	reviewRepo repository.ReviewRepository,
) *RatingReconciler {
	return &RatingReconciler{
		cron:        cron.New(),
		listingRepo: listingRepo,
		reviewRepo:  reviewRepo,
	}
}

// Start запускает реконсилятор по cron-расписанию
// Первый проход выполняется сразу при старте
func (r *RatingReconciler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting rating reconciler")

	_, err := r.cron.AddFunc(schedule, func() {
		if err := r.Reconcile(ctx); err != nil {
			logger.Error().Err(err).Msg("Rating reconciliation failed")
		}
	})
	if err != nil {
		return err
	}

	r.cron.Start()

	if err := r.Reconcile(ctx); err != nil {
		logger.Warn().Err(err).Msg("Initial rating reconciliation failed")
	}

	return nil
}

// Stop останавливает реконсилятор, дожидаясь завершения текущего прохода
func (r *RatingReconciler) Stop() {
	logger.Info().Msg("Stopping rating reconciler...")
	ctx := r.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Rating reconciler stopped")
}

// Reconcile один проход: для каждого объявления рейтинг выводится заново
// и сохраняется, если сохраненное значение разошлось
func (r *RatingReconciler) Reconcile(ctx context.Context) error {
	listings, err := r.listingRepo.GetAll(ctx)
	if err != nil {
		return err
	}

	repaired := 0
	for _, listing := range listings {
		listingID := listing.ID.Hex()

		reviews, err := r.reviewRepo.GetByListingID(ctx, listingID)
		if err != nil {
			metrics.RatingsReconciled.WithLabelValues("failed").Inc()
			logger.Error().Err(err).Str("listing_id", listingID).Msg("Failed to load reviews for reconciliation")
			continue
		}

		derived := service.AverageRating(reviews)
		if derived == listing.Rating {
			metrics.RatingsReconciled.WithLabelValues("consistent").Inc()
			continue
		}

		if err := r.listingRepo.UpdateRating(ctx, listingID, derived); err != nil {
			metrics.RatingsReconciled.WithLabelValues("failed").Inc()
			logger.Error().Err(err).Str("listing_id", listingID).Msg("Failed to repair listing rating")
			continue
		}

		metrics.RatingsReconciled.WithLabelValues("repaired").Inc()
		repaired++
		logger.Warn().
			Str("listing_id", listingID).
			Float64("stored", listing.Rating).
			Float64("derived", derived).
			Msg("Repaired drifted listing rating")
	}

	logger.Info().
		Int("listings", len(listings)).
		Int("repaired", repaired).
		Msg("Rating reconciliation pass completed")

	return nil
}

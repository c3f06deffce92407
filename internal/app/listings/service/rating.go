package service

import (
	"roamstay/internal/app/listings/entity"
)

// AverageRating возвращает среднее арифметическое оценок без округления.
// Пустой набор отзывов дает 0 - это валидное состояние объявления,
// а не ошибка. Функция чистая и вызывается оркестрацией перед каждой
// записью рейтинга в хранилище.
func AverageRating(reviews []entity.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}

	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}

	return float64(sum) / float64(len(reviews))
}

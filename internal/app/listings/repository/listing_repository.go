package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"roamstay/internal/app/listings/entity"
	"roamstay/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const serviceName = "listings"

type listingRepository struct {
	collection *mongo.Collection
}

// NewListingRepository создает новый репозиторий объявлений
// Автоматически создает индексы по name и author.id
func NewListingRepository(db *mongo.Database) ListingRepository {
	collection := db.Collection("listings")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("name_idx"),
		},
		{
			Keys:    bson.D{{Key: "author.id", Value: 1}},
			Options: options.Index().SetName("author_id_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Индексы могут уже существовать, работу не прерываем
		fmt.Printf("Warning: failed to create listing indexes: %v\n", err)
	}

	return &listingRepository{collection: collection}
}

// Create создает новое объявление в MongoDB
func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpInsert, "listings")
	defer timer.ObserveDuration()

	listing.CreatedAt = time.Now()
	listing.UpdatedAt = time.Now()
	if listing.CommentIDs == nil {
		listing.CommentIDs = []primitive.ObjectID{}
	}
	if listing.ReviewIDs == nil {
		listing.ReviewIDs = []primitive.ObjectID{}
	}
	if listing.Likes == nil {
		listing.Likes = []string{}
	}

	result, err := r.collection.InsertOne(ctx, listing)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpInsert)
		return fmt.Errorf("failed to create listing: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		listing.ID = oid
	}

	return nil
}

// GetByID получает объявление по ID
func (r *listingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrListingNotFound
	}

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "listings")
	defer timer.ObserveDuration()

	var listing entity.Listing
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrListingNotFound
		}
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	return &listing, nil
}

// GetAll получает все объявления, новые первыми
func (r *listingRepository) GetAll(ctx context.Context) ([]entity.Listing, error) {
	return r.find(ctx, bson.M{})
}

// SearchByName ищет объявления по подстроке имени без учета регистра
// Пользовательский ввод экранируется перед подстановкой в регулярное выражение
func (r *listingRepository) SearchByName(ctx context.Context, query string) ([]entity.Listing, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return r.find(ctx, bson.M{"name": pattern})
}

// GetByAuthorID получает все объявления автора
func (r *listingRepository) GetByAuthorID(ctx context.Context, authorID string) ([]entity.Listing, error) {
	return r.find(ctx, bson.M{"author.id": authorID})
}

func (r *listingRepository) find(ctx context.Context, filter bson.M) ([]entity.Listing, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "listings")
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to find listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []entity.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}

	return listings, nil
}

// Update обновляет изменяемые поля объявления
// Rating сюда намеренно не входит, он меняется только через UpdateRating
func (r *listingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "listings")
	defer timer.ObserveDuration()

	listing.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"name":        listing.Name,
			"price":       listing.Price,
			"description": listing.Description,
			"location":    listing.Location,
			"lat":         listing.Lat,
			"lng":         listing.Lng,
			"image_url":   listing.ImageURL,
			"image_id":    listing.ImageID,
			"updated_at":  listing.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": listing.ID}, update)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrListingNotFound
	}

	return nil
}

// UpdateRating сохраняет пересчитанный средний рейтинг
func (r *listingRepository) UpdateRating(ctx context.Context, id string, rating float64) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrListingNotFound
	}

	update := bson.M{"$set": bson.M{"rating": rating, "updated_at": time.Now()}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return fmt.Errorf("failed to update listing rating: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrListingNotFound
	}

	return nil
}

func (r *listingRepository) AddComment(ctx context.Context, listingID string, commentID primitive.ObjectID) error {
	return r.updateRefs(ctx, listingID, bson.M{"$push": bson.M{"comment_ids": commentID}})
}

func (r *listingRepository) RemoveComment(ctx context.Context, listingID string, commentID primitive.ObjectID) error {
	return r.updateRefs(ctx, listingID, bson.M{"$pull": bson.M{"comment_ids": commentID}})
}

func (r *listingRepository) AddReview(ctx context.Context, listingID string, reviewID primitive.ObjectID) error {
	return r.updateRefs(ctx, listingID, bson.M{"$push": bson.M{"review_ids": reviewID}})
}

func (r *listingRepository) RemoveReview(ctx context.Context, listingID string, reviewID primitive.ObjectID) error {
	return r.updateRefs(ctx, listingID, bson.M{"$pull": bson.M{"review_ids": reviewID}})
}

// AddLike добавляет пользователя в множество лайкнувших
// $addToSet защищает от дублирования при повторной отправке
func (r *listingRepository) AddLike(ctx context.Context, listingID string, userID string) error {
	return r.updateRefs(ctx, listingID, bson.M{"$addToSet": bson.M{"likes": userID}})
}

func (r *listingRepository) RemoveLike(ctx context.Context, listingID string, userID string) error {
	return r.updateRefs(ctx, listingID, bson.M{"$pull": bson.M{"likes": userID}})
}

func (r *listingRepository) updateRefs(ctx context.Context, listingID string, update bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return ErrListingNotFound
	}

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "listings")
	defer timer.ObserveDuration()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return fmt.Errorf("failed to update listing references: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrListingNotFound
	}

	return nil
}

// Delete удаляет документ объявления
// Каскадное удаление комментариев и отзывов выполняет service layer
func (r *listingRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrListingNotFound
	}

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpDelete, "listings")
	defer timer.ObserveDuration()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpDelete)
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrListingNotFound
	}

	return nil
}

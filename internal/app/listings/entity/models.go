package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Author - денормализованная ссылка на автора документа
// ID хранится как hex ObjectID пользователя
type Author struct {
	ID       string `json:"id" bson:"id"`
	Username string `json:"username" bson:"username"`
}

// Listing - объявление (кемпинг / место отдыха)
// Rating всегда пересчитывается из текущего набора отзывов,
// клиент не может установить его напрямую
type Listing struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name        string               `json:"name" bson:"name"`
	Price       float64              `json:"price" bson:"price"`
	Description string               `json:"description" bson:"description"`
	Location    string               `json:"location" bson:"location"`
	Lat         float64              `json:"lat" bson:"lat"`
	Lng         float64              `json:"lng" bson:"lng"`
	ImageURL    string               `json:"image_url" bson:"image_url"`
	ImageID     string               `json:"-" bson:"image_id"` // ID ассета во внешнем медиахранилище
	Author      Author               `json:"author" bson:"author"`
	CommentIDs  []primitive.ObjectID `json:"-" bson:"comment_ids"`
	ReviewIDs   []primitive.ObjectID `json:"-" bson:"review_ids"`
	Likes       []string             `json:"likes" bson:"likes"` // hex ID пользователей
	Rating      float64              `json:"rating" bson:"rating"`
	CreatedAt   time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at" bson:"updated_at"`
}

// Comment - комментарий к объявлению
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ListingID primitive.ObjectID `json:"listing_id" bson:"listing_id"`
	Text      string             `json:"text" bson:"text"`
	Author    Author             `json:"author" bson:"author"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Review - отзыв с оценкой от 1 до 5
// Инвариант: не более одного отзыва на пару (автор, объявление)
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ListingID primitive.ObjectID `json:"listing_id" bson:"listing_id"`
	Rating    int                `json:"rating" bson:"rating"`
	Text      string             `json:"text" bson:"text"`
	Author    Author             `json:"author" bson:"author"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// User - пользователь сервиса
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username     string             `json:"username" bson:"username"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	FirstName    string             `json:"first_name" bson:"first_name"`
	LastName     string             `json:"last_name" bson:"last_name"`
	Bio          string             `json:"bio" bson:"bio"`
	AvatarURL    string             `json:"avatar_url" bson:"avatar_url"`
	IsAdmin      bool               `json:"is_admin" bson:"is_admin"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// Identity - аутентифицированная личность запроса, извлекается из JWT
type Identity struct {
	UserID   string
	Username string
	IsAdmin  bool
}

// GeoPoint - результат геокодирования адреса
type GeoPoint struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
}

// MediaAsset - загруженный во внешнее хранилище ассет
type MediaAsset struct {
	URL      string
	PublicID string
}

// ListingEvent - событие жизненного цикла объявления для Kafka
type ListingEvent struct {
	EventType string    `json:"event_type"` // LISTING_CREATED, LISTING_DELETED
	ListingID string    `json:"listing_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// ReviewEvent - событие создания отзыва для Kafka
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED
	ReviewID  string    `json:"review_id"`
	ListingID string    `json:"listing_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

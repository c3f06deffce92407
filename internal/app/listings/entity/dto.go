package entity

// RegisterRequest - запрос на регистрацию пользователя
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=32"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"omitempty,max=64"`
	LastName  string `json:"last_name" validate:"omitempty,max=64"`
	Bio       string `json:"bio" validate:"omitempty,max=500"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
	AdminCode string `json:"admin_code"`
}

// LoginRequest - запрос на вход
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest - запрос на обновление пары токенов
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ForgotPasswordRequest - запрос на сброс пароля
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest - установка нового пароля по токену сброса
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
	Confirm  string `json:"confirm" validate:"required,eqfield=Password"`
}

// AuthResponse - ответ с парой токенов и данными пользователя
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// TokenPair - пара access/refresh токенов
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CreateListingRequest - multipart-форма создания объявления
// Изображение приходит отдельной частью формы
type CreateListingRequest struct {
	Name        string  `form:"name" validate:"required,min=3,max=120"`
	Price       float64 `form:"price" validate:"required,gte=0"`
	Description string  `form:"description" validate:"required,min=10,max=2000"`
	Location    string  `form:"location" validate:"required,min=2,max=200"`
}

// UpdateListingRequest - multipart-форма обновления объявления
// Rating намеренно отсутствует: он выводится из отзывов
type UpdateListingRequest struct {
	Name        string  `form:"name" validate:"required,min=3,max=120"`
	Price       float64 `form:"price" validate:"required,gte=0"`
	Description string  `form:"description" validate:"required,min=10,max=2000"`
	Location    string  `form:"location" validate:"required,min=2,max=200"`
}

// CreateCommentRequest - запрос на создание комментария
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}

// UpdateCommentRequest - запрос на обновление комментария
type UpdateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}

// CreateReviewRequest - запрос на создание отзыва
type CreateReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"text" validate:"required,min=10,max=1000"`
}

// UpdateReviewRequest - запрос на обновление отзыва
type UpdateReviewRequest struct {
	Rating int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Text   string `json:"text" validate:"omitempty,min=10,max=1000"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListingListResponse - ответ со списком объявлений
type ListingListResponse struct {
	Listings []Listing `json:"listings"`
	Total    int       `json:"total"`
}

// ListingDetailResponse - объявление с комментариями и отзывами
// Отзывы отсортированы от новых к старым
type ListingDetailResponse struct {
	Listing  *Listing  `json:"listing"`
	Comments []Comment `json:"comments"`
	Reviews  []Review  `json:"reviews"`
}

// LikeResponse - результат переключения лайка
type LikeResponse struct {
	Liked bool `json:"liked"`
	Total int  `json:"total"`
}

// UserProfileResponse - профиль пользователя с его объявлениями
type UserProfileResponse struct {
	User     *User     `json:"user"`
	Listings []Listing `json:"listings"`
}

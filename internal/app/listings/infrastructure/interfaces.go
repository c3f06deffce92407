package infrastructure

import (
	"context"
	"io"

	"roamstay/internal/app/listings/entity"
)

// MediaStore интерфейс внешнего медиахранилища (Cloudinary)
// Используется для dependency injection и упрощения тестирования
type MediaStore interface {
	Upload(ctx context.Context, file io.Reader, filename string, folder string) (*entity.MediaAsset, error)
	Destroy(ctx context.Context, publicID string) error
}

// Geocoder интерфейс геокодера адресов
// Пустой результат означает, что адрес не распознан
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]entity.GeoPoint, error)
}

// MailSender интерфейс отправки писем (Mailgun)
// Используется только потоком сброса пароля
type MailSender interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

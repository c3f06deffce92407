package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	MongoDB    MongoDBConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	JWT        JWTConfig
	Media      MediaConfig
	Geocoder   GeocoderConfig
	Mail       MailConfig
	Auth       AuthConfig
	Reconciler ReconcilerConfig
}

type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8084)
}

type MongoDBConfig struct {
	URI      string // URI подключения к MongoDB
	Database string // Имя базы данных
}

type RedisConfig struct {
	Addr     string // Адрес Redis (host:port)
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string // Список брокеров Kafka (формат: host:port)
	Topic   string   // Топик для событий LISTING_CREATED / REVIEW_CREATED
}

type JWTConfig struct {
	Secret          string        // Секретный ключ для подписи JWT токенов
	AccessDuration  time.Duration // Время жизни access токена
	RefreshDuration time.Duration // Время жизни refresh токена
}

type MediaConfig struct {
	CloudName string // Имя облака Cloudinary
	APIKey    string
	APISecret string
	Folder    string // Папка для загрузки изображений объявлений
}

type GeocoderConfig struct {
	BaseURL string // Базовый URL Geocoding API
	APIKey  string
}

type MailConfig struct {
	BaseURL string // Базовый URL Mailgun API
	Domain  string // Домен отправителя в Mailgun
	APIKey  string
	From    string // Адрес отправителя
}

type AuthConfig struct {
	AdminCode     string        // Код для регистрации администратора
	ResetTokenTTL time.Duration // Время жизни токена сброса пароля
	ResetBaseURL  string        // Базовый URL для ссылки сброса пароля в письме
}

type ReconcilerConfig struct {
	Enabled  bool
	Schedule string // Cron-расписание пересчёта рейтингов
}

func Load() (*Config, error) {
	// .env необязателен: в контейнере конфигурация приходит через окружение
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8084"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "roamstay"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "listing_events"),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
			AccessDuration:  getEnvDuration("JWT_ACCESS_DURATION", 15*time.Minute),
			RefreshDuration: getEnvDuration("JWT_REFRESH_DURATION", 7*24*time.Hour),
		},
		Media: MediaConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "roamstay/listings"),
		},
		Geocoder: GeocoderConfig{
			BaseURL: getEnv("GEOCODER_BASE_URL", "https://maps.googleapis.com/maps/api/geocode/json"),
			APIKey:  getEnv("GEOCODER_API_KEY", ""),
		},
		Mail: MailConfig{
			BaseURL: getEnv("MAILGUN_BASE_URL", "https://api.mailgun.net/v3"),
			Domain:  getEnv("MAILGUN_DOMAIN", ""),
			APIKey:  getEnv("MAILGUN_API_KEY", ""),
			From:    getEnv("MAIL_FROM", "noreply@roamstay.app"),
		},
		Auth: AuthConfig{
			AdminCode:     getEnv("ADMIN_CODE", ""),
			ResetTokenTTL: getEnvDuration("RESET_TOKEN_TTL", time.Hour),
			ResetBaseURL:  getEnv("RESET_BASE_URL", "http://localhost:8084/auth/reset"),
		},
		Reconciler: ReconcilerConfig{
			Enabled:  getEnvBool("RECONCILER_ENABLED", true),
			Schedule: getEnv("RECONCILER_SCHEDULE", "@every 1h"),
		},
	}, nil
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

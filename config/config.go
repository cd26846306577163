package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	Database   DatabaseConfig
	Auth       AuthConfig
	Storage    StorageConfig
	Broker     BrokerConfig
	Notify     NotifyConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type AuthConfig struct {
	// JWTSecret signs bearer tokens. Required.
	JWTSecret string
	// AdminSignupKey gates the admin signup endpoint. When empty,
	// admin signup is disabled entirely.
	AdminSignupKey string
}

// StorageConfig selects and configures the object-storage backend used
// for uploads. Backend is "minio", "gcs", or "" (uploads disabled).
type StorageConfig struct {
	Backend string
	// PublicBaseURL prefixes returned upload URLs, e.g. a CDN origin.
	// Defaults to "/uploads" paths relative to the API host.
	PublicBaseURL string
	Minio         MinioConfig
	GCS           GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

// BrokerConfig selects and configures the message broker used by the
// queue notification backend. Backend is "rabbitmq", "pubsub", or "".
type BrokerConfig struct {
	Backend  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

// NotifyConfig selects the SMS delivery backend for app-open events.
// Backend is "twilio", "queue", or "" (delivery disabled; the daily
// throttle still advances).
type NotifyConfig struct {
	Backend string
	Channel string
	Twilio  TwilioConfig
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "tracker"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "tracker_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 4000),
		Database:   dbConfig,
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", ""),
			AdminSignupKey: getEnv("ADMIN_SIGNUP_KEY", ""),
		},
		Storage: StorageConfig{
			Backend:       getEnv("STORAGE_BACKEND", ""),
			PublicBaseURL: getEnv("UPLOADS_BASE_URL", "/uploads"),
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "uploads"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			GCS: GCSConfig{
				Bucket:          getEnv("GCS_BUCKET", ""),
				ProjectID:       getEnv("GCS_PROJECT_ID", ""),
				CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
			},
		},
		Broker: BrokerConfig{
			Backend: getEnv("BROKER_BACKEND", ""),
			RabbitMQ: RabbitMQConfig{
				URL:             getEnv("RABBITMQ_URL", ""),
				QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
				QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
				PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH_COUNT", 0),
			},
			PubSub: PubSubConfig{
				ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
				CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
				SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
			},
		},
		Notify: NotifyConfig{
			Backend: getEnv("NOTIFY_BACKEND", ""),
			Channel: getEnv("NOTIFY_CHANNEL", "sms.outbound"),
			Twilio: TwilioConfig{
				AccountSID: getEnv("TWILIO_SID", ""),
				AuthToken:  getEnv("TWILIO_TOKEN", ""),
				From:       getEnv("TWILIO_FROM", ""),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		return value == "true" || value == "1"
	}
	return defaultValue
}

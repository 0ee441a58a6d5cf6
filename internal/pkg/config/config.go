package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, secrets)
// - default: Values common across all environments (timezone, timeouts, pricing buffers)
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Rental  RentalConfig
	Payment PaymentConfig
	Jobs    JobsConfig
	Kafka   KafkaConfig
	Storage StorageConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
	// debug enables swagger and the colored log handler
	Mode string `envconfig:"GIN_MODE" default:"release"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	// MigrateOnStart applies embedded goose migrations before serving.
	MigrateOnStart bool `envconfig:"DB_MIGRATE_ON_START" default:"true"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key,X-Request-ID"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,Location,X-Request-ID"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone   string `envconfig:"LOG_TIMEZONE" default:"Europe/Prague"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	// Format is "json" or "text"; text uses the tint handler.
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// JWTConfig verifies tokens minted by the external identity provider.
type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Issuer   string `envconfig:"JWT_ISSUER" default:""`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

type RentalConfig struct {
	// BusinessTimeZone is used when a trailer has no zone of its own.
	BusinessTimeZone string        `envconfig:"RENTAL_TIMEZONE" default:"Europe/Prague"`
	CheckInGrace     time.Duration `envconfig:"RENTAL_CHECKIN_GRACE" default:"2h"`
	HoldBufferDays   int           `envconfig:"RENTAL_HOLD_BUFFER_DAYS" default:"1"`
	Currency         string        `envconfig:"RENTAL_CURRENCY" default:"czk"`
	IdempotencyTTL   time.Duration `envconfig:"RENTAL_IDEMPOTENCY_TTL" default:"24h"`
}

type PaymentConfig struct {
	SecretKey            string        `envconfig:"PAYMENT_SECRET_KEY" required:"true"`
	WebhookSecret        string        `envconfig:"PAYMENT_WEBHOOK_SECRET" required:"true"`
	AuthorizationTimeout time.Duration `envconfig:"PAYMENT_AUTHORIZATION_TIMEOUT" default:"10s"`
}

type JobsConfig struct {
	Token string `envconfig:"JOBS_TOKEN" required:"true"`
}

type KafkaConfig struct {
	Brokers       []string      `envconfig:"KAFKA_BROKERS" default:""`
	Topic         string        `envconfig:"KAFKA_NOTIFICATION_TOPIC" default:"trailer-rental.notifications"`
	RelayInterval time.Duration `envconfig:"KAFKA_RELAY_INTERVAL" default:"5s"`
	RelayBatch    int           `envconfig:"KAFKA_RELAY_BATCH" default:"50"`
}

// Enabled reports whether a broker is configured; without one the outbox is
// left untouched for another relay.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0 && c.Brokers[0] != ""
}

type StorageConfig struct {
	Endpoint  string `envconfig:"S3_ENDPOINT" default:""`
	AccessKey string `envconfig:"S3_ACCESS_KEY" default:""`
	SecretKey string `envconfig:"S3_SECRET_KEY" default:""`
	Bucket    string `envconfig:"S3_BUCKET" default:"trailer-returns"`
	UseSSL    bool   `envconfig:"S3_USE_SSL" default:"false"`
}

func (c StorageConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

// Location resolves the business time zone, falling back to UTC when the
// zone database does not know the name.
func (c RentalConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.BusinessTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
			Mode: "test",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		CORS: CORSConfig{
			AllowOrigins:  []string{"http://localhost:3000"},
			AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
			ExposeHeaders: []string{"Location", "X-Request-ID"},
			MaxAge:        time.Hour,
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "Europe/Prague",
			TimeFormat: "2006-01-02 15:04:05.000",
			Format:     "json",
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
		},
		Rental: RentalConfig{
			BusinessTimeZone: "Europe/Prague",
			CheckInGrace:     2 * time.Hour,
			HoldBufferDays:   1,
			Currency:         "czk",
			IdempotencyTTL:   24 * time.Hour,
		},
		Payment: PaymentConfig{
			SecretKey:            "sk_test_dummy",
			WebhookSecret:        "whsec_test",
			AuthorizationTimeout: 2 * time.Second,
		},
		Jobs: JobsConfig{
			Token: "test-jobs-token",
		},
		Kafka: KafkaConfig{
			Topic:         "trailer-rental.notifications",
			RelayInterval: time.Second,
			RelayBatch:    10,
		},
		Storage: StorageConfig{
			Bucket: "trailer-returns-test",
		},
	}
}

package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	GoogleBooksBaseURL string `envconfig:"GOOGLE_BOOKS_BASE_URL" default:"https://www.googleapis.com/books/v1"`
	GoogleBooksAPIKey  string `envconfig:"GOOGLE_BOOKS_API_KEY"`
	GoogleBooksMaxPage int    `envconfig:"GOOGLE_BOOKS_MAX_PAGES" default:"5"`
	OpenLibraryBaseURL string `envconfig:"OPEN_LIBRARY_BASE_URL" default:"https://openlibrary.org"`
	OpenLibraryLimit   int    `envconfig:"OPEN_LIBRARY_LIMIT" default:"100"`

	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 3 * * *"`

	// Schwellwert, ab dem zwei Werke als Duplikat zusammengeführt werden.
	MatchThreshold int `envconfig:"MATCH_THRESHOLD" default:"70"`
	// Standardfenster für die "recently released"-Sicht.
	RecentWindowDays int `envconfig:"RECENT_WINDOW_DAYS" default:"90"`

	// S3 für gespiegelte Cover und Backups
	StratoS3Key    string `envconfig:"STRATO_S3_KEY"`
	StratoS3Secret string `envconfig:"STRATO_S3_SECRET"`
	StratoS3URL    string `envconfig:"STRATO_S3_URL"`
	StratoS3Region string `envconfig:"STRATO_S3_REGION"`
	StratoS3Bucket string `envconfig:"STRATO_S3_BUCKET"`

	// Provider-Konfiguration
	EnabledProviders string `envconfig:"ENABLED_PROVIDERS" default:"googlebooks,openlibrary"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// S3Enabled meldet, ob eine S3-Konfiguration vorliegt. Ohne S3 läuft die
// Pipeline trotzdem, nur ohne Cover-Spiegelung.
func (c *Config) S3Enabled() bool {
	return c.StratoS3URL != "" && c.StratoS3Key != "" && c.StratoS3Secret != ""
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}

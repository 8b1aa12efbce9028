package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	// DBDriver ist "postgres" (Produktion) oder "sqlite" (lokale Entwicklung, CLI, Tests).
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST" default:"db"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"scientify_user"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"scientify_db"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBPath     string `envconfig:"DB_PATH" default:"scientify.db"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"8000"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`
	CORSOrigin   string `envconfig:"CORS_ORIGIN" default:"http://frontend:80"`
	MaxUploadMB  int64  `envconfig:"MAX_UPLOAD_MB" default:"50"`
	DebugRoutes  bool   `envconfig:"DEBUG_ROUTES" default:"false"`

	LogDevelopment bool `envconfig:"LOG_DEVELOPMENT" default:"false"`

	// Konvertierung
	ConversionWorkers int64         `envconfig:"CONVERSION_WORKERS" default:"2"`
	ConversionTimeout time.Duration `envconfig:"CONVERSION_TIMEOUT" default:"2m"`
	PandocPath        string        `envconfig:"PANDOC_PATH" default:"pandoc"`
	// Leer = lokales Chrome über den rod-Launcher starten.
	ChromeURL string `envconfig:"CHROME_URL"`

	KeywordCount    int    `envconfig:"KEYWORD_COUNT" default:"5"`
	KeywordLanguage string `envconfig:"KEYWORD_LANGUAGE" default:"en"`

	// Archiv-Spiegel in S3, deaktiviert solange S3_BUCKET leer ist
	S3Key           string `envconfig:"S3_KEY"`
	S3Secret        string `envconfig:"S3_SECRET"`
	S3URL           string `envconfig:"S3_URL"`
	S3Region        string `envconfig:"S3_REGION" default:"eu-central-1"`
	S3Bucket        string `envconfig:"S3_BUCKET"`
	ArchiveSchedule string `envconfig:"ARCHIVE_SCHEDULE" default:"*/30 * * * *"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// ArchiveEnabled meldet, ob der S3-Archivspiegel konfiguriert ist.
func (c *Config) ArchiveEnabled() bool {
	return c.S3Bucket != "" && c.S3URL != ""
}

// MaxUploadBytes liefert die maximale Upload-Größe in Bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}

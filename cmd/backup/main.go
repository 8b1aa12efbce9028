package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"scientify/config"
	"scientify/storage"
)

// backupConfig ergänzt die Datenbank-Konfiguration um das Backup-Ziel.
type backupConfig struct {
	Bucket      string        `envconfig:"BACKUP_S3_BUCKET" required:"true"`
	Endpoint    string        `envconfig:"BACKUP_S3_ENDPOINT" required:"true"`
	AccessKey   string        `envconfig:"BACKUP_S3_ACCESS_KEY" required:"true"`
	SecretKey   string        `envconfig:"BACKUP_S3_SECRET_KEY" required:"true"`
	Region      string        `envconfig:"BACKUP_S3_REGION" default:"eu-central-1"`
	Prefix      string        `envconfig:"BACKUP_PREFIX" default:"scientify/"`
	KeepBackups int           `envconfig:"KEEP_BACKUPS" default:"4"`
	Timeout     time.Duration `envconfig:"BACKUP_TIMEOUT" default:"30m"`
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	logging.Info("Starte Backup-Prozess...")

	dbCfg, err := config.Load()
	if err != nil {
		logging.Fatal("Fehler beim Laden der Konfiguration", zap.Error(err))
	}
	var cfg backupConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logging.Fatal("Fehler beim Laden der Backup-Konfiguration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	dump, err := createDump(ctx, dbCfg)
	if err != nil {
		logging.Fatal("Fehler beim Erstellen des DB-Dumps", zap.Error(err))
	}

	client, err := storage.NewS3Client(ctx, cfg.Endpoint, cfg.Region, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		logging.Fatal("Fehler beim Erstellen des S3-Clients", zap.Error(err))
	}

	key := backupKey(cfg.Prefix, time.Now())
	link, err := storage.UploadFile(ctx, client, cfg.Endpoint, cfg.Bucket, key, "application/gzip", dump)
	if err != nil {
		logging.Fatal("Fehler beim Hochladen nach S3", zap.Error(err))
	}
	logging.Info("Backup hochgeladen", zap.String("link", link), zap.Int("bytes", len(dump)))

	deleted, err := rotateBackups(ctx, client, cfg.Bucket, cfg.Prefix, cfg.KeepBackups, logging)
	if err != nil {
		logging.Fatal("Fehler bei der Rotation alter Backups", zap.Error(err))
	}
	logging.Info("Backup-Prozess erfolgreich abgeschlossen.", zap.Int("deleted", deleted))
}

func backupKey(prefix string, now time.Time) string {
	return fmt.Sprintf("%sbackup-%s.sql.gz", prefix, now.UTC().Format("2006-01-02T15-04-05Z"))
}

package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zots0127/uplink/internal/adapter/handler"
	domainrepo "github.com/zots0127/uplink/internal/domain/repository"
	"github.com/zots0127/uplink/internal/infrastructure/repository"
	"github.com/zots0127/uplink/internal/usecase"
	"github.com/zots0127/uplink/pkg/middleware"
)

func main() {
	config := LoadConfig()

	ledger, err := repository.NewSQLiteLedger(config.Ledger.Database)
	if err != nil {
		log.Fatal("Failed to initialize token ledger:", err)
	}
	defer ledger.Close()

	var blobs domainrepo.BlobRepository
	switch config.Storage.Backend {
	case "s3":
		blobs, err = repository.NewS3BlobStore(repository.S3Config{
			Endpoint:  config.Storage.S3.Endpoint,
			Region:    config.Storage.S3.Region,
			Bucket:    config.Storage.S3.Bucket,
			AccessKey: config.Storage.S3.AccessKey,
			SecretKey: config.Storage.S3.SecretKey,
		})
	default:
		blobs, err = repository.NewLocalBlobStore(config.Storage.Path)
	}
	if err != nil {
		log.Fatal("Failed to initialize blob store:", err)
	}

	issue := usecase.NewIssueUseCase(ledger, config.Server.BaseURL,
		time.Duration(config.Tokens.MaxTTLMinutes)*time.Minute)
	redeem := usecase.NewRedeemUseCase(ledger, blobs)
	uploadHandler := handler.NewUploadHandler(issue, redeem, ledger, blobs)

	go runJanitor(ledger, time.Duration(config.Ledger.PurgeIntervalMinutes)*time.Minute)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.CORS(), middleware.RequestID())
	uploadHandler.RegisterRoutes(router)

	log.Printf("Starting server on port %s", config.Server.Port)
	if err := router.Run(":" + config.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// runJanitor periodically removes expired token records so abandoned tokens
// do not accumulate in the ledger.
func runJanitor(ledger domainrepo.LedgerRepository, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		purged, err := ledger.PurgeExpired(ctx, time.Now())
		cancel()
		if err != nil {
			log.Printf("Failed to purge expired tokens: %v", err)
			continue
		}
		if purged > 0 {
			log.Printf("Purged %d expired upload tokens", purged)
		}
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dealsscannerpro/internal/cache"
	"dealsscannerpro/internal/categories"
	"dealsscannerpro/internal/config"
	"dealsscannerpro/internal/cropper"
	"dealsscannerpro/internal/llm"
	"dealsscannerpro/internal/middleware"
	"dealsscannerpro/internal/models"
	"dealsscannerpro/internal/pipeline"
	"dealsscannerpro/internal/utils"
	"dealsscannerpro/pkg/database"
)

func main() {
	log.Println("Starting DealsScannerPro...")

	cfg := config.Load()
	log.Printf("Environment: %s", cfg.NodeEnv)

	db := database.Init(cfg.DataDir)
	if err := db.AutoMigrate(&models.ScanRun{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	db.Exec("CREATE INDEX IF NOT EXISTS idx_scan_runs_retailer ON scan_runs(retailer)")

	llmClient := llm.NewClient(cfg.NormalizerURL, cfg.NormalizerKey, cfg.NormalizerModel)

	var categoryService *categories.Service
	var normalizer *pipeline.Normalizer
	if cfg.RedisAddr != "" {
		if redisClient, err := cache.NewRedisClient(cfg.RedisAddr); err != nil {
			log.Printf("[CACHE] redis unavailable, falling back to in-process caches: %v", err)
			categoryService = categories.NewService(cfg.CategoryServiceURL)
			normalizer = pipeline.NewNormalizer(llmClient, categoryService)
		} else {
			categoryService = categories.NewServiceWithRedis(cfg.CategoryServiceURL, redisClient)
			normalizer = pipeline.NewNormalizerWithRedis(llmClient, categoryService, redisClient)
		}
	} else {
		categoryService = categories.NewService(cfg.CategoryServiceURL)
		normalizer = pipeline.NewNormalizer(llmClient, categoryService)
	}

	services := pipeline.Services{Normalize: normalizer}
	if cfg.CropEnabled && cfg.GCSBucket != "" {
		if bucket := newCropBucket(cfg.GCSBucket); bucket != nil {
			services.Crop = cropper.NewCropper(bucket).Crop
		}
	}
	scanner := pipeline.NewScanner(services)

	if cfg.NodeEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "timestamp": time.Now().Format(time.RFC3339)})
	})

	scanGroup := api.Group("/scan")
	scanGroup.Use(middleware.APIRateLimitMiddleware())
	if cfg.JWTSecret != "" {
		scanGroup.Use(middleware.RequireOpsToken(cfg.JWTSecret))
	}
	scanGroup.POST("", handleScan(scanner, db))

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("DealsScannerPro API running on port %s", cfg.Port)
	if err := r.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// newCropBucket connects to GCS for the optional cropper collaborator. Any
// failure degrades to "cropping disabled" rather than aborting startup,
// since cropping is explicitly optional.
func newCropBucket(bucketName string) *storage.BucketHandle {
	client, err := storage.NewClient(context.Background())
	if err != nil {
		log.Printf("[CROPPER] GCS client unavailable, crops disabled: %v", err)
		return nil
	}
	return client.Bucket(bucketName)
}

// handleScan receives a PDF upload, runs it through the Scanner, persists a
// ScanRun audit row (never the offers themselves),
// and returns the full ScanResult as JSON.
func handleScan(scanner *pipeline.Scanner, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.Error(c, 400, "missing file upload", err)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			utils.Error(c, 500, "failed to open uploaded file", err)
			return
		}
		defer file.Close()

		pdfBytes, err := io.ReadAll(file)
		if err != nil {
			utils.Error(c, 500, "failed to read uploaded file", err)
			return
		}

		start := time.Now()
		result, scanErr := scanner.Scan(c.Request.Context(), pdfBytes, fileHeader.Filename)
		duration := time.Since(start)

		run := models.ScanRun{
			ID:         uuid.New().String(),
			SourceFile: fileHeader.Filename,
			DurationMS: duration.Milliseconds(),
			CreatedAt:  time.Now(),
		}
		if scanErr != nil {
			run.Failed = true
			run.ErrorMessage = scanErr.Error()
			if err := db.Create(&run).Error; err != nil {
				log.Printf("[DB] failed to persist failed scan run: %v", err)
			}
			utils.Error(c, http.StatusUnprocessableEntity, "scan failed", scanErr)
			return
		}

		run.Retailer = result.Meta.Retailer
		run.RetailerConfidence = result.Meta.RetailerConfidence
		run.ValidFrom = result.Meta.ValidFrom
		run.ValidTo = result.Meta.ValidTo
		run.TotalPages = result.Stats.TotalPages
		run.TotalBlocks = result.Stats.TotalBlocks
		run.OffersDetected = result.Stats.OffersDetected
		run.OffersExtracted = result.Stats.OffersExtracted
		run.ScannerVersion = result.Stats.ScannerVersion
		if err := db.Create(&run).Error; err != nil {
			log.Printf("[DB] failed to persist scan run: %v", err)
		}

		utils.SuccessData(c, result)
	}
}


package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"book-hand/config"
	"book-hand/models"
	"book-hand/providers"
	"book-hand/providers/googlebooks"
	"book-hand/providers/openlibrary"
	"book-hand/services"
	"book-hand/storage"
)

var (
	newRecordsCounter  prometheus.Counter
	worksMergedCounter prometheus.Counter
	backfilledCounter  prometheus.Counter
	eventsAddedCounter prometheus.Counter
)

func init() {
	newRecordsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "new_catalog_records_total",
		Help: "Total number of new catalog records harvested from providers.",
	})
	worksMergedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "works_merged_total",
		Help: "Total number of duplicate works merged away.",
	})
	backfilledCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "records_backfilled_total",
		Help: "Total number of catalog records turned into works and editions.",
	})
	eventsAddedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "release_events_enriched_total",
		Help: "Total number of release events created by the enrichment pass.",
	})
	prometheus.MustRegister(newRecordsCounter, worksMergedCounter, backfilledCounter, eventsAddedCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to catalog database.")

	// Auto-Migration
	logging.Info("Running database auto-migration...")
	db.AutoMigrate(&models.CatalogRecord{}, &models.Work{}, &models.Edition{},
		&models.ReleaseEvent{}, &models.SearchQuery{})

	// Seeding
	seedDefaultSearchQueries(db, logging)

	// Setup Providers
	enabledProviderNames := strings.Split(cfg.EnabledProviders, ",")
	var enabledProviders []providers.Provider
	for _, name := range enabledProviderNames {
		switch strings.TrimSpace(name) {
		case "googlebooks":
			enabledProviders = append(enabledProviders, googlebooks.NewFetcher(cfg, logging))
		case "openlibrary":
			enabledProviders = append(enabledProviders, openlibrary.NewFetcher(cfg, logging))
		default:
			logging.Warn("Unknown provider in config", zap.String("provider_name", name))
		}
	}
	if len(enabledProviders) == 0 {
		logging.Fatal("No valid providers enabled. Check ENABLED_PROVIDERS in .env")
	}
	logging.Info("Active providers loaded", zap.Strings("providers", enabledProviderNames))

	// Setup Services
	harvestService := services.NewHarvestService(cfg, db, logging, enabledProviders)
	backfillService := services.NewBackfillService(cfg, db, nil, logging)
	if cfg.S3Enabled() {
		client, err := storage.NewS3Client(cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		backfillService.S3Client = client
	}
	dedupService := services.NewDedupService(cfg, db, logging)
	enrichService := services.NewEnrichService(cfg, db, logging)
	browseService := services.NewBrowseService(cfg, db, logging)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Routes
	setupWorkRoutes(router, db, browseService, logging)
	setupCatalogRecordRoutes(router, db, logging)
	setupSearchQueryRoutes(router, db, logging)
	setupPipelineRoutes(router, harvestService, backfillService, dedupService, enrichService)

	// Setup Cron: nächtliche Pipeline Harvest -> Backfill -> Dedup -> Enrich
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled pipeline job...")
		runPipeline(context.Background(), harvestService, backfillService, dedupService, enrichService)
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// runPipeline führt die Batch-Phasen strikt nacheinander aus: erst Harvest,
// dann Backfill, dann Dedup, dann Anreicherung.
func runPipeline(ctx context.Context,
	harvest *services.HarvestService,
	backfill *services.BackfillService,
	dedup *services.DedupService,
	enrich *services.EnrichService,
) {
	log := harvest.Logger

	newRecords, err := harvest.RunAllQueries(ctx)
	if err != nil {
		log.Error("Harvest-Phase fehlgeschlagen", zap.Error(err))
		return
	}
	newRecordsCounter.Add(float64(newRecords))

	backfillReport, err := backfill.Run(ctx)
	if err != nil {
		log.Error("Backfill-Phase fehlgeschlagen", zap.Error(err))
		return
	}
	backfilledCounter.Add(float64(backfillReport.Created))

	dedupReport, err := dedup.Run(ctx)
	if err != nil {
		log.Error("Dedup-Phase fehlgeschlagen", zap.Error(err))
		return
	}
	worksMergedCounter.Add(float64(dedupReport.Merged))

	enrichReport, err := enrich.Run(ctx)
	if err != nil {
		log.Error("Anreicherungs-Phase fehlgeschlagen", zap.Error(err))
		return
	}
	eventsAddedCounter.Add(float64(enrichReport.Events))

	log.Info("Pipeline abgeschlossen",
		zap.Int("new_records", newRecords),
		zap.Int("backfilled", backfillReport.Created),
		zap.Int("merged", dedupReport.Merged),
		zap.Int("enriched_events", enrichReport.Events))
}

func setupWorkRoutes(router *gin.Engine, db *gorm.DB, browse *services.BrowseService, log *zap.Logger) {
	rg := router.Group("/works")

	// Einfacher GET-Endpunkt, um alle Werke abzurufen (ohne Filter)
	rg.GET("/", func(c *gin.Context) {
		var works []models.Work
		if err := db.Find(&works).Error; err != nil {
			log.Error("Database query for all works failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, works)
	})

	// Body-gesteuerter Endpunkt für die Browse-Sichten
	rg.POST("/query", func(c *gin.Context) {
		var req services.BrowseQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		items, err := browse.Query(req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, items)
	})

	// GET - Werk mit Editionen und Release-Ereignissen
	rg.GET("/:id", func(c *gin.Context) {
		id := c.Param("id")
		var work models.Work
		if err := db.First(&work, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "work not found"})
				return
			}
			log.Error("DB error fetching work", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var editions []models.Edition
		if err := db.Where("work_id = ?", work.ID).Order("id asc").Find(&editions).Error; err != nil {
			log.Error("DB error fetching editions", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		editionIDs := make([]uint, 0, len(editions))
		for _, e := range editions {
			editionIDs = append(editionIDs, e.ID)
		}
		var events []models.ReleaseEvent
		if len(editionIDs) > 0 {
			if err := db.Where("edition_id IN ?", editionIDs).Order("event_date asc").Find(&events).Error; err != nil {
				log.Error("DB error fetching release events", zap.String("id", id), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"work":           work,
			"editions":       editions,
			"release_events": events,
		})
	})

	// POST - Werk manuell bestätigen; danach fasst der Dedup es nie wieder an
	rg.POST("/:id/confirm", func(c *gin.Context) {
		id := c.Param("id")
		var work models.Work
		if err := db.First(&work, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "work not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if err := db.Model(&work).Update("is_manually_confirmed", true).Error; err != nil {
			log.Error("Failed to confirm work", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm work"})
			return
		}
		c.JSON(http.StatusOK, work)
	})

	// POST - Manuelle Editions-Anlage für ein bestehendes Werk
	rg.POST("/:id/editions", func(c *gin.Context) {
		workID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid work id"})
			return
		}

		var input services.AddEditionInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		edition, err := services.AddEdition(db, log, uint(workID), input)
		if err != nil {
			if errors.Is(err, services.ErrWorkNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "work not found"})
				return
			}
			log.Error("Failed to add edition", zap.Uint64("work_id", workID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add edition"})
			return
		}
		c.JSON(http.StatusCreated, edition)
	})
}

func setupCatalogRecordRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/catalog-records")

	// POST - Flachen Katalogeintrag direkt einliefern (Ingestion-Grenze)
	rg.POST("/", func(c *gin.Context) {
		var record models.CatalogRecord
		if err := c.ShouldBindJSON(&record); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if record.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}
		if record.ExternalID != "" {
			var existing models.CatalogRecord
			if err := db.Where("external_id = ?", record.ExternalID).First(&existing).Error; err == nil {
				c.JSON(http.StatusConflict, gin.H{"error": "catalog record with this external_id already exists"})
				return
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Error("Duplicate check for catalog record failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
				return
			}
		}
		record.Backfilled = false
		record.EditionID = nil
		if err := db.Create(&record).Error; err != nil {
			log.Error("Failed to create catalog record", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create catalog record"})
			return
		}
		c.JSON(http.StatusCreated, record)
	})

	// POST - Abfrage mit Filtern
	rg.POST("/query", func(c *gin.Context) {
		type RecordQuery struct {
			Query      string `json:"query"`
			Source     string `json:"source"`
			Backfilled *bool  `json:"backfilled"`
			Limit      int    `json:"limit"`
		}

		var req RecordQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		query := db.Model(&models.CatalogRecord{})
		if req.Query != "" {
			query = query.Where("query = ?", req.Query)
		}
		if req.Source != "" {
			query = query.Where("source = ?", req.Source)
		}
		if req.Backfilled != nil {
			query = query.Where("backfilled = ?", *req.Backfilled)
		}
		if req.Limit > 0 {
			query = query.Limit(req.Limit)
		}

		var records []models.CatalogRecord
		if err := query.Order("created_at desc").Find(&records).Error; err != nil {
			log.Error("Database query for catalog records failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, records)
	})
}

func setupSearchQueryRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/search-queries")
	rg.POST("/", func(c *gin.Context) {
		var query models.SearchQuery
		if err := c.ShouldBindJSON(&query); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := db.Create(&query).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create search query"})
			return
		}
		c.JSON(http.StatusCreated, query)
	})
	rg.GET("/", func(c *gin.Context) {
		var queries []models.SearchQuery
		if err := db.Find(&queries).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, queries)
	})
}

func setupPipelineRoutes(router *gin.Engine,
	harvest *services.HarvestService,
	backfill *services.BackfillService,
	dedup *services.DedupService,
	enrich *services.EnrichService,
) {
	rg := router.Group("/pipeline")

	rg.POST("/run", func(c *gin.Context) {
		go runPipeline(context.Background(), harvest, backfill, dedup, enrich)
		c.JSON(http.StatusAccepted, gin.H{"message": "Full pipeline triggered."})
	})

	rg.POST("/harvest", func(c *gin.Context) {
		go func() {
			count, err := harvest.RunAllQueries(context.Background())
			if err != nil {
				harvest.Logger.Error("Async harvest failed", zap.Error(err))
			} else {
				newRecordsCounter.Add(float64(count))
				harvest.Logger.Info("Async harvest completed", zap.Int("new_records", count))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Harvest triggered."})
	})

	rg.POST("/backfill", func(c *gin.Context) {
		go func() {
			report, err := backfill.Run(context.Background())
			if err != nil {
				backfill.Logger.Error("Async backfill failed", zap.Error(err))
			} else {
				backfilledCounter.Add(float64(report.Created))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Backfill triggered."})
	})

	rg.POST("/dedup", func(c *gin.Context) {
		go func() {
			report, err := dedup.Run(context.Background())
			if err != nil {
				dedup.Logger.Error("Async dedup failed", zap.Error(err))
			} else {
				worksMergedCounter.Add(float64(report.Merged))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Dedup triggered."})
	})

	rg.POST("/enrich", func(c *gin.Context) {
		go func() {
			report, err := enrich.Run(context.Background())
			if err != nil {
				enrich.Logger.Error("Async enrichment failed", zap.Error(err))
			} else {
				eventsAddedCounter.Add(float64(report.Events))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Enrichment triggered."})
	})
}

func seedDefaultSearchQueries(db *gorm.DB, logger *zap.Logger) {
	var count int64
	db.Model(&models.SearchQuery{}).Count(&count)
	if count > 0 {
		return
	}
	queries := []models.SearchQuery{
		{Term: "robert jordan wheel of time"},
		{Term: "ursula k le guin earthsea"},
		{Term: "frank herbert dune"},
	}
	if err := db.Create(&queries).Error; err != nil {
		logger.Warn("Failed to seed default search queries", zap.Error(err))
	} else {
		logger.Info("Default search queries seeded.")
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dalmia/sensai-backend/internal/config"
	"github.com/dalmia/sensai-backend/internal/domain"
	"github.com/dalmia/sensai-backend/internal/eventlog"
	"github.com/dalmia/sensai-backend/internal/handler"
	"github.com/dalmia/sensai-backend/internal/middleware"
	"github.com/dalmia/sensai-backend/internal/repository"
	"github.com/dalmia/sensai-backend/internal/routes"
	"github.com/dalmia/sensai-backend/internal/service"
	"github.com/dalmia/sensai-backend/internal/ws"
	pkgcache "github.com/dalmia/sensai-backend/pkg/cache"
	"github.com/dalmia/sensai-backend/pkg/jwt"
	pkglogger "github.com/dalmia/sensai-backend/pkg/logger"
	pkgredis "github.com/dalmia/sensai-backend/pkg/redis"
	pkgsearch "github.com/dalmia/sensai-backend/pkg/search"
	pkgstorage "github.com/dalmia/sensai-backend/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           SensAI Backend API
// @version         1.0
// @description     Learning management backend: tasks, code drafts, learning materials, and third-party integrations
//
// @license.name    MIT
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	pkglogger.Init()
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	// MySQL
	db, err := initDB(cfg)
	if err != nil {
		pkglogger.Warn("Failed to connect to database: %v (continuing without DB)", err)
		db = nil
	} else {
		pkglogger.Info("Connected to MySQL")
		if err := db.AutoMigrate(
			&domain.Task{},
			&domain.Question{},
			&domain.LearningMaterial{},
			&domain.CodeDraft{},
			&domain.ChatMessage{},
			&domain.Integration{},
		); err != nil {
			pkglogger.Warn("Migration warning: %v", err)
		}
	}

	// Redis
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Warn("Failed to connect to Redis: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		pkglogger.Info("Connected to Redis")
	}

	// Cache. The in-memory fallback keeps OAuth state working without
	// Redis on a single instance.
	var cacheService pkgcache.Service
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
	} else {
		cacheService = pkgcache.NewMemory()
	}

	// Elasticsearch
	var searchClient *pkgsearch.Client
	if cfg.Elasticsearch.Enabled && len(cfg.Elasticsearch.Addresses) > 0 {
		var esErr error
		searchClient, esErr = pkgsearch.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
		if esErr != nil {
			pkglogger.Warn("Elasticsearch connection failed: %v (continuing without search)", esErr)
			searchClient = nil
		} else if err := searchClient.EnsureMaterialIndex(context.Background()); err != nil {
			pkglogger.Warn("Elasticsearch index setup failed: %v", err)
		}
	}

	// S3-compatible storage
	var s3Client *pkgstorage.S3Client
	if cfg.Storage.Enabled && cfg.Storage.Bucket != "" {
		var s3Err error
		s3Client, s3Err = pkgstorage.NewS3Client(pkgstorage.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Bucket:          cfg.Storage.Bucket,
			CDNURL:          cfg.Storage.CDNURL,
			BasePath:        cfg.Storage.BasePath,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
		})
		if s3Err != nil {
			pkglogger.Warn("S3 storage init failed: %v (continuing without media uploads)", s3Err)
			s3Client = nil
		} else {
			pkglogger.Info("Connected to S3 storage")
		}
	}

	// ClickHouse save-event sink
	var eventSink eventlog.Sink = eventlog.NopSink{}
	if cfg.ClickHouse.Enabled {
		sink, chErr := eventlog.NewClickHouseSink(eventlog.Config{
			Host:     cfg.ClickHouse.Host,
			Port:     cfg.ClickHouse.Port,
			Database: cfg.ClickHouse.Database,
			User:     cfg.ClickHouse.User,
			Password: cfg.ClickHouse.Password,
		})
		if chErr != nil {
			pkglogger.Warn("ClickHouse init failed: %v (save events disabled)", chErr)
		} else {
			eventSink = sink
			defer sink.Close()
		}
	}

	// WebSocket hub
	wsHub := ws.NewHub(redisClient)
	go wsHub.Run()
	defer wsHub.Stop()

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	router := gin.Default()

	// CORS
	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:           86400,
	}))

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	if redisClient != nil && !cfg.IsDevelopment() {
		router.Use(middleware.RateLimit(redisClient, middleware.DefaultRateLimitConfig()))
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "sensai-backend",
			"time":    time.Now().Unix(),
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if db == nil {
		pkglogger.Warn("No database connection, API routes disabled")
	} else {
		draftRepo := repository.NewDraftRepository(db)
		taskRepo := repository.NewTaskRepository(db)
		chatRepo := repository.NewChatRepository(db)
		integrationRepo := repository.NewIntegrationRepository(db)

		draftSvc := service.NewDraftService(draftRepo, cacheService, eventSink)
		taskSvc := service.NewTaskService(taskRepo, cacheService)
		materialSvc := service.NewMaterialService(taskRepo, cacheService, searchClient, eventSink)
		integrationSvc := service.NewIntegrationService(integrationRepo)
		notionSvc := service.NewNotionService(service.NotionConfig{
			ClientID:     cfg.Notion.ClientID,
			ClientSecret: cfg.Notion.ClientSecret,
			RedirectURI:  cfg.Notion.RedirectURI,
		}, integrationRepo, nil)

		routes.Setup(
			router,
			handler.NewDraftHandler(draftSvc, wsHub),
			handler.NewTaskHandler(taskSvc),
			handler.NewMaterialHandler(materialSvc),
			handler.NewIntegrationHandler(integrationSvc),
			handler.NewNotionHandler(notionSvc, cacheService, splitAndTrim(allowOrigins, ",")),
			handler.NewChatHandler(chatRepo),
			handler.NewMediaHandler(s3Client),
			handler.NewWSHandler(wsHub, allowOrigins),
			jwtManager,
		)
	}

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	pkglogger.Info("Listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func splitAndTrim(s, delimiter string) []string {
	parts := []string{}
	for _, part := range strings.Split(s, delimiter) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	middleware.SetDBConnectionsActive(float64(sqlDB.Stats().OpenConnections))

	return db, nil
}

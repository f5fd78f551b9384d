package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"impact-service/internal/blob"
	"impact-service/internal/cache"
	"impact-service/internal/converter"
	"impact-service/internal/handler"
	mid "impact-service/internal/middleware"
	"impact-service/internal/model"
	"impact-service/internal/news"
	"impact-service/internal/oauth"
	"impact-service/internal/payment"
	"impact-service/internal/recaptcha"
	"impact-service/internal/repository"
	"impact-service/internal/service"
	"impact-service/pkg/config"
	"impact-service/pkg/database"
	"impact-service/pkg/jwtutil"
	"impact-service/pkg/logger"
	"impact-service/prometheus"
)

func main() {
	// Load configuration
	appConfig, err := config.Load("impact-service")
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting impact-service", appConfig.LogConfig()...)

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize database
	db, err := database.InitDB(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(
		&model.Tenant{},
		&model.User{},
		&model.Portfolio{},
		&model.ReportBaseTemplate{},
		&model.DataSource{},
		&model.DataConnection{},
		&model.Donation{},
		&model.StoryRoom{},
		&model.ReleaseNote{},
	); err != nil {
		log.Fatal("Failed to migrate models", zap.Error(err))
	}
	log.Info("Database migration completed")

	// Blob store
	var store blob.Store
	if appConfig.Blob.Driver == "memory" {
		store = blob.NewMemoryStore()
	} else {
		store, err = blob.NewS3Store(context.Background(), &appConfig.Blob)
		if err != nil {
			log.Fatal("Failed to initialize blob store", zap.Error(err))
		}
	}
	log.Info("Blob store initialized", zap.String("driver", appConfig.Blob.Driver))

	// External gateways
	conv := converter.NewHTTPClient(&appConfig.Converter)
	exchanger := oauth.NewExchanger(30 * time.Second)
	stripeProvider := payment.NewStripeProvider(&appConfig.Stripe)
	newsProvider := news.NewHTTPProvider(&appConfig.News)
	newsCache := cache.NewMemory(appConfig.News.CacheTTL)
	verifier := recaptcha.NewClient(appConfig.Recaptcha.SecretKey, 10*time.Second)

	// Repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	connectionRepo := repository.NewDataConnectionRepository(db)
	sourceRepo := repository.NewDataSourceRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	userRepo := repository.NewUserRepository(db)
	storyRoomRepo := repository.NewStoryRoomRepository(db)
	releaseNoteRepo := repository.NewReleaseNoteRepository(db)

	// Services
	templateService := service.NewTemplateService(templateRepo)
	reportService := service.NewReportService(store, conv, templateService, appConfig.Blob.ReportBucket, appConfig.Domains.API)
	portfolioService := service.NewPortfolioService(portfolioRepo, store, reportService, appConfig.Blob.ChatBotBucket, appConfig.Blob.ReportBucket)
	editorService := service.NewEditorService(portfolioRepo, store, &http.Client{Timeout: 30 * time.Second}, appConfig.Blob.ReportBucket)
	integrationService := service.NewIntegrationService(connectionRepo, sourceRepo, exchanger)
	donationService := service.NewDonationService(donationRepo, tenantRepo, stripeProvider, appConfig.Domains.Frontend)
	newsService := service.NewNewsService(tenantRepo, newsProvider, newsCache, appConfig.News.CacheTTL)
	storyService := service.NewStoryService(storyRoomRepo, tenantRepo, store, verifier, appConfig.Blob.StoryBucket)
	accountService := service.NewAccountService(userRepo, tenantRepo)
	downloadService := service.NewDownloadService(store, userRepo, templateService, service.DownloadBuckets{
		ChatBot: appConfig.Blob.ChatBotBucket,
		Report:  appConfig.Blob.ReportBucket,
		Media:   appConfig.Blob.MediaBucket,
	}, appConfig.Domains.API)
	releaseNoteService := service.NewReleaseNoteService(releaseNoteRepo)

	// Handlers
	portfolioHandler := handler.NewPortfolioHandler(portfolioService, reportService)
	templateHandler := handler.NewTemplateHandler(templateService)
	editorHandler := handler.NewEditorHandler(editorService)
	connectionHandler := handler.NewDataConnectionHandler(integrationService)
	storyHandler := handler.NewStoryHandler(storyService)
	donationHandler := handler.NewDonationHandler(donationService, stripeProvider)
	newsHandler := handler.NewNewsHandler(newsService)
	releaseNoteHandler := handler.NewReleaseNoteHandler(releaseNoteService)
	accountHandler := handler.NewAccountHandler(accountService)
	downloadHandler := handler.NewDownloadHandler(downloadService)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomw.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public routes
	e.POST("/api/auth/login", accountHandler.Login)
	e.POST("/api/core/donate", donationHandler.Donate)
	e.GET("/api/core/donate/return", donationHandler.Return)
	e.GET("/api/core/donate/cancel", donationHandler.Cancel)
	e.POST("/api/core/stripe-webhook", donationHandler.Webhook)
	e.POST("/api/core/story-room/verify", storyHandler.Verify)
	e.POST("/api/core/story-room/upload", storyHandler.Upload)
	e.GET("/api/core/fetch-report-as-html/", editorHandler.FetchReportAsHTML)
	e.GET("/api/core/fetch-report-image", editorHandler.FetchImage)
	e.POST("/api/core/save-report-image-from-url", editorHandler.SaveImageFromURL)
	e.GET("/api/core/release-notes", releaseNoteHandler.List)
	e.GET("/api/core/release-notes/:id", releaseNoteHandler.Get)
	e.GET("/api/core/download/*", downloadHandler.Get)

	// Portfolio API routes
	portfolioAPI := e.Group("/api/core/portfolios", mid.AuthMiddleware)
	portfolioAPI.GET("", portfolioHandler.List)
	portfolioAPI.GET("/latest", portfolioHandler.Latest)
	portfolioAPI.GET("/:id", portfolioHandler.Get)
	portfolioAPI.POST("", portfolioHandler.Create)
	portfolioAPI.DELETE("/:id", portfolioHandler.Delete)
	portfolioAPI.GET("/:id/download", portfolioHandler.Download)

	// Report base template API routes
	templateAPI := e.Group("/api/core/report-base-templates", mid.AuthMiddleware)
	templateAPI.GET("", templateHandler.List)
	templateAPI.GET("/:id", templateHandler.Get)
	templateAPI.POST("", templateHandler.Create)
	templateAPI.POST("/:id/set-as-default", templateHandler.SetAsDefault)
	templateAPI.DELETE("/:id", templateHandler.Delete)

	// Report editor API routes
	editorAPI := e.Group("/api/core", mid.AuthMiddleware)
	editorAPI.POST("/upload-report", editorHandler.UploadReport)
	editorAPI.GET("/fetch-report", editorHandler.FetchReport)
	editorAPI.GET("/report-list", editorHandler.ListReports)
	editorAPI.POST("/upload-report-image", editorHandler.UploadImage)

	// Data connection API routes, tenant admin only
	connectionAPI := e.Group("/api/core/data-connections", mid.AuthMiddleware, mid.RequireTenantAdmin)
	connectionAPI.GET("", connectionHandler.List)
	connectionAPI.GET("/:id", connectionHandler.Get)
	connectionAPI.GET("/:id/refresh-token", connectionHandler.RefreshToken)
	connectionAPI.POST("/refresh-all", connectionHandler.RefreshAll)
	connectionAPI.DELETE("/:id", connectionHandler.Delete)

	// Story room API routes, tenant admin only
	storyAPI := e.Group("/api/core/story-room", mid.AuthMiddleware, mid.RequireTenantAdmin)
	storyAPI.GET("", storyHandler.GetRoom)
	storyAPI.PUT("", storyHandler.UpdateRoom)
	storyAPI.GET("/stories", storyHandler.ListStories)
	storyAPI.GET("/story", storyHandler.GetStory)
	storyAPI.DELETE("/story", storyHandler.DeleteStory)

	// News feed API route
	e.GET("/api/core/news-feed", newsHandler.Feed, mid.AuthMiddleware)

	// Account API routes
	accountAPI := e.Group("/api/auth/accounts", mid.AuthMiddleware)
	accountAPI.GET("", accountHandler.List)
	accountAPI.POST("", accountHandler.Add)
	accountAPI.PUT("/:id/active", accountHandler.SetActive)
	accountAPI.POST("/:id/change-password", accountHandler.ChangePassword, mid.RequireTenantAdmin)
	accountAPI.DELETE("/:id", accountHandler.Delete, mid.RequireTenantAdmin)

	// Tenant profile API routes, tenant admin only
	tenantAPI := e.Group("/api/auth/tenant", mid.AuthMiddleware, mid.RequireTenantAdmin)
	tenantAPI.GET("", accountHandler.GetTenant)
	tenantAPI.PUT("", accountHandler.UpdateTenant)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}

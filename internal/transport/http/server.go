package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	appsvc "ragfilechat/internal/app"
	"ragfilechat/internal/bootstrap"
	"ragfilechat/internal/cache"
	"ragfilechat/internal/platform/rabbitmq"
	"ragfilechat/internal/repository"
	"ragfilechat/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     app.Config.AllowedOriginList(),
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	sessionRepo := repository.NewSessionRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	documentRepo := repository.NewDocumentRepository(app.MySQL)

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
	)
	cleanupPublisher := rabbitmq.NewCleanupPublisher(app.MQConn, app.Config.RabbitMQ.FileCleanupQueue)

	chatService := appsvc.NewChatService(sessionRepo, messageRepo, app.Gemini, historyCache, app.Log)
	documentService := appsvc.NewDocumentService(documentRepo, app.Gemini, cleanupPublisher, app.Log)

	chatHandler := handler.NewChatHandler(chatService, app.Log)
	sessionHandler := handler.NewSessionHandler(chatService, app.Log)
	documentHandler := handler.NewDocumentHandler(
		documentService,
		app.Config.Upload.MaxFileSize,
		app.Config.AllowedMimeTypeList(),
		app.Config.Upload.ScratchDir,
		app.Log,
	)
	healthHandler := handler.NewHealthHandler(app)

	router.GET("/healthz", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	v1.GET("/health", healthHandler.Live)
	v1.POST("/upload", documentHandler.Upload)
	v1.GET("/documents", documentHandler.List)
	v1.DELETE("/documents/:id", documentHandler.Delete)
	v1.POST("/chat", chatHandler.Chat)
	v1.POST("/sessions", sessionHandler.Create)
	v1.GET("/sessions", sessionHandler.List)
	v1.DELETE("/sessions/:id", sessionHandler.Delete)
	v1.GET("/sessions/:id/messages", sessionHandler.Messages)

	return router
}

package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ytpm/domain/repository"
	httpHandler "ytpm/interfaces/http"
	"ytpm/interfaces/middleware"
)

func InitiateRouter(
	userHandler httpHandler.IUserHandler,
	bulkHandler httpHandler.IBulkHandler,
	actionHandler httpHandler.IActionHandler,
	quotaHandler httpHandler.IQuotaHandler,
	playlistHandler httpHandler.IPlaylistHandler,
	youtubeAuthHandler httpHandler.IYouTubeAuthHandler,
	userRepository repository.IUser,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4201", "http://localhost:4200", "https://localhost:4201", "https://localhost:4200"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("api")
	api.Use(middleware.Auth(userRepository))

	router.POST("/login", userHandler.Login)
	router.POST("/register", userHandler.Register)

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// OAuth account linking. The callback is public because Google redirects
	// the browser there without our Authorization header.
	if youtubeAuthHandler != nil {
		api.GET("/auth/youtube", youtubeAuthHandler.GetAuthURL)
		api.GET("/auth/youtube/status", youtubeAuthHandler.Status)
		router.GET("/auth/youtube/callback", youtubeAuthHandler.HandleCallback)
	}

	bulk := api.Group("/bulk")
	{
		bulk.POST("/add", bulkHandler.BulkAdd)
		bulk.POST("/remove", bulkHandler.BulkRemove)
		bulk.POST("/move", bulkHandler.BulkMove)
	}

	actions := api.Group("/actions")
	{
		actions.GET("", actionHandler.ListActions)
		actions.GET("/:actionId", actionHandler.GetAction)
		actions.GET("/:actionId/items", actionHandler.ListActionItems)
		actions.POST("/:actionId/undo", actionHandler.Undo)
		actions.POST("/:actionId/retry-failed", actionHandler.RetryFailed)
	}

	api.GET("/quota", quotaHandler.GetTodayQuota)

	api.GET("/playlists", playlistHandler.ListPlaylists)
	api.GET("/playlist-items", playlistHandler.ListPlaylistItems)

	return router
}

package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	slogGin "github.com/samber/slog-gin"

	authH "github.com/nretro/retrosync/internal/server/handlers/auth"
	collectionH "github.com/nretro/retrosync/internal/server/handlers/collection"
	notionH "github.com/nretro/retrosync/internal/server/handlers/notion"
	syncH "github.com/nretro/retrosync/internal/server/handlers/sync"
	"github.com/nretro/retrosync/internal/server/middlewares"
	"github.com/nretro/retrosync/internal/version"
)

func SetupRoutes(svc *Services) http.Handler {
	r := gin.New()

	authHandler := authH.New(svc.Auth)
	collectionHandler := collectionH.New(svc.Store)
	notionHandler := notionH.New(svc.Grants, svc.Publisher)
	syncHandler := syncH.New(svc.Store, svc.Publisher)

	httpLogger := slog.Default().WithGroup("http")
	r.Use(slogGin.NewWithConfig(httpLogger, slogGin.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	}))
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.BestSpeed))
	r.Use(cors.Default())

	r.GET("/", IndexHandler)
	r.GET("/healthz", HealthHandler)

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/refresh", authHandler.Refresh)

	// public OAuth redirect target; the state nonce identifies the user
	r.GET("/notion/callback", notionHandler.Callback)

	v1 := r.Group("/api/v1")
	v1.Use(middlewares.JWTAuth(svc.Auth))
	{
		// collections
		v1.GET("/collections", collectionHandler.List)
		v1.POST("/collections", collectionHandler.Create)
		v1.GET("/collections/:id", collectionHandler.Get)
		v1.PUT("/collections/:id", collectionHandler.Update)
		v1.DELETE("/collections/:id", collectionHandler.Delete)

		// todos
		v1.GET("/collections/:id/todos", collectionHandler.ListTodos)
		v1.POST("/collections/:id/todos", collectionHandler.CreateTodo)
		v1.PUT("/todos/:id", collectionHandler.UpdateTodo)
		v1.DELETE("/todos/:id", collectionHandler.DeleteTodo)

		// activities
		v1.GET("/collections/:id/activities", collectionHandler.ListActivities)
		v1.POST("/collections/:id/activities", collectionHandler.CreateActivity)
		v1.GET("/activities/:id", collectionHandler.GetActivity)
		v1.PUT("/activities/:id", collectionHandler.UpdateActivity)
		v1.DELETE("/activities/:id", collectionHandler.DeleteActivity)

		// workspace connection
		v1.GET("/notion", notionHandler.Status)
		v1.GET("/notion/authorize", notionHandler.Authorize)
		v1.DELETE("/notion", notionHandler.Disconnect)
		v1.GET("/notion/databases", notionHandler.ListDatabases)
		v1.GET("/notion/pages", notionHandler.ListPages)

		// publishing
		v1.POST("/publish/collections/:id", syncHandler.PublishCollection)
		v1.DELETE("/publish/collections/:id", syncHandler.UnpublishCollection)
		v1.POST("/publish/activities/:id", syncHandler.PublishActivity)

		// tracked syncs
		v1.POST("/sync/collections/:id", syncHandler.StartSync)
		v1.GET("/sync/:id", syncHandler.SyncStatus)
		v1.GET("/sync", syncHandler.SyncHistory)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "method not allowed",
		})
	})

	return r.Handler()
}

func IndexHandler(ctx *gin.Context) {
	ctx.String(http.StatusOK, version.DetailedWithApp())
}

func HealthHandler(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

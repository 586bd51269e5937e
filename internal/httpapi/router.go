// Package httpapi wires the REST surface: routing, CORS, bearer-token
// middleware, and thin handlers over the service layer.
package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/belovebe/taskmatch/internal/app"
	"github.com/belovebe/taskmatch/internal/repository"
	"github.com/belovebe/taskmatch/internal/service/chat"
	"github.com/belovebe/taskmatch/internal/service/discover"
	"github.com/belovebe/taskmatch/internal/service/profile"
	"github.com/belovebe/taskmatch/internal/service/responses"
	"github.com/belovebe/taskmatch/internal/service/session"
	"github.com/belovebe/taskmatch/internal/service/tasks"
)

// NewRouter builds the gin engine with every route mounted. All /api
// routes except the login exchange sit behind bearer auth.
func NewRouter(appCtx *app.AppContext) *gin.Engine {
	if appCtx.Config.App.ENV == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	sessions := session.NewService(appCtx)

	authHandler := NewAuthHandler(sessions)
	taskHandler := NewTaskHandler(tasks.NewService(appCtx))
	responseHandler := NewResponseHandler(responses.NewService(appCtx))
	chatHandler := NewChatHandler(chat.NewService(appCtx))
	discoverHandler := NewDiscoverHandler(discover.NewService(appCtx))
	profileHandler := NewProfileHandler(profile.NewService(appCtx))
	referenceHandler := NewReferenceHandler(repository.NewCategoryRepository(appCtx.DB))

	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(appCtx.Config.HTTP.CORSOrigins) == 1 && appCtx.Config.HTTP.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = appCtx.Config.HTTP.CORSOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/auth/telegram", authHandler.Login)

	authed := api.Group("")
	authed.Use(RequireAuth(sessions.Tokens()))

	authed.GET("/tasks", taskHandler.Feed)
	authed.GET("/tasks/my", taskHandler.My)
	authed.GET("/tasks/:id", taskHandler.Get)
	authed.POST("/tasks", taskHandler.Create)
	authed.PUT("/tasks/:id", taskHandler.Update)
	authed.PATCH("/tasks/:id/status", taskHandler.SetStatus)
	authed.DELETE("/tasks/:id", taskHandler.Delete)
	authed.GET("/tasks/:id/responses", taskHandler.Responses)

	authed.POST("/responses", responseHandler.Create)
	authed.GET("/responses/my", responseHandler.My)
	authed.PATCH("/responses/:id/status", responseHandler.SetStatus)

	authed.POST("/conversations", chatHandler.Open)
	authed.GET("/conversations/:id/messages", chatHandler.Messages)
	authed.POST("/conversations/:id/messages", chatHandler.Send)
	authed.POST("/conversations/:id/read", chatHandler.MarkRead)
	authed.GET("/notifications/unread", chatHandler.Unread)

	authed.GET("/discover", discoverHandler.Candidates)
	authed.POST("/discover/decision", discoverHandler.Decide)
	authed.POST("/discover/block", discoverHandler.Block)

	authed.GET("/profile/me", profileHandler.Me)
	authed.PATCH("/profile", profileHandler.Update)
	authed.GET("/filters", profileHandler.Filters)
	authed.PUT("/filters", profileHandler.SaveFilters)

	authed.GET("/categories", referenceHandler.Categories)
	authed.GET("/locations/countries", referenceHandler.Countries)
	authed.GET("/locations/countries/:code/cities", referenceHandler.Cities)

	return r
}

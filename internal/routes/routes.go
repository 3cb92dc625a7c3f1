package routes

import (
	"github.com/dalmia/sensai-backend/internal/handler"
	"github.com/dalmia/sensai-backend/internal/middleware"
	"github.com/dalmia/sensai-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	draftHandler *handler.DraftHandler,
	taskHandler *handler.TaskHandler,
	materialHandler *handler.MaterialHandler,
	integrationHandler *handler.IntegrationHandler,
	notionHandler *handler.NotionHandler,
	chatHandler *handler.ChatHandler,
	mediaHandler *handler.MediaHandler,
	wsHandler *handler.WSHandler,
	jwtManager *jwt.Manager,
) {
	api := router.Group("/api/v1")
	auth := middleware.JWTAuth(jwtManager)
	optionalAuth := middleware.OptionalJWTAuth(jwtManager)
	instructor := middleware.RequireInstructor()

	// Code drafts (authenticated; the editor autosave/save pipeline)
	drafts := api.Group("/drafts", auth)
	{
		drafts.GET("", draftHandler.List)
		drafts.GET("/:questionID", draftHandler.Get)
		drafts.PUT("", draftHandler.Save)
	}

	// Tasks and questions. Authoring is instructor only.
	tasks := api.Group("/tasks")
	{
		tasks.GET("/:id", taskHandler.Get)
		tasks.POST("", auth, instructor, taskHandler.Create)
		tasks.PUT("/:id", auth, instructor, taskHandler.Update)

		// Learning material content of a material task. Unpublished
		// material is visible to instructors only, hence the optional
		// auth on the read.
		tasks.GET("/:id/material", optionalAuth, materialHandler.Get)
		tasks.PUT("/:id/material", auth, instructor, materialHandler.Save)
		tasks.POST("/:id/material/publish", auth, instructor, materialHandler.Publish)
	}
	api.GET("/courses/:courseID/tasks", taskHandler.ListByCourse)
	api.GET("/materials/search", materialHandler.Search)

	// Quiz conversation transcript
	chat := api.Group("/chat", auth)
	{
		chat.GET("/:questionID", chatHandler.List)
		chat.POST("", chatHandler.Post)
	}

	// Third-party integrations and the Notion OAuth handshake
	integrations := api.Group("/integrations")
	{
		integrations.GET("", auth, integrationHandler.List)
		integrations.POST("", auth, integrationHandler.Create)
		integrations.DELETE("/:provider", auth, integrationHandler.Delete)

		notion := integrations.Group("/notion")
		{
			notion.GET("/connect", auth, notionHandler.Connect)
			// callback comes from the provider redirect, no bearer token
			notion.GET("/callback", notionHandler.Callback)
			notion.GET("/pages/:pageID", auth, notionHandler.Page)
		}
	}

	// Editor media uploads
	media := api.Group("/media", auth)
	{
		media.POST("", mediaHandler.Upload)
		media.DELETE("/*key", mediaHandler.Delete)
	}

	// Real-time editor events
	router.GET("/ws/editor", auth, wsHandler.Connect)
}

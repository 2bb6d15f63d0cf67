package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/formacode/course-service/internal/auth"
	"github.com/formacode/course-service/internal/services"
)

type HandlerManager struct {
	courseHandler *CourseHandler
	gameHandler   *GameHandler
}

func NewHandlerManager(
	syncService services.SyncService,
	outlineService services.OutlineService,
	playService services.PlayService,
	logger *slog.Logger,
) *HandlerManager {
	return &HandlerManager{
		courseHandler: NewCourseHandler(syncService, outlineService, logger),
		gameHandler:   NewGameHandler(playService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, authenticator *auth.Authenticator) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "course-service",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(authenticator.Middleware())
	{
		courses := v1.Group("/courses")
		{
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourseDocument)
			courses.GET("/:id/export", hm.courseHandler.ExportCourse)
			courses.GET("/:id/outline.xlsx", hm.courseHandler.ExportOutline)

			// Authoring operations replace or remove whole subtrees.
			authoring := courses.Group("")
			authoring.Use(auth.RequireAuthor())
			{
				authoring.POST("", hm.courseHandler.ImportCourse)
				authoring.PUT("/:id", hm.courseHandler.ReimportCourse)
				authoring.DELETE("/:id", hm.courseHandler.DeleteCourse)
			}
		}

		games := v1.Group("/games")
		{
			games.POST("/items/:id/sessions", hm.gameHandler.CreateItemSession)
			games.POST("/chapters/:id/sessions", hm.gameHandler.CreateChapterSession)
			games.POST("/sessions/:session_id/start", hm.gameHandler.StartSession)
			games.POST("/sessions/:session_id/actions", hm.gameHandler.ApplyAction)
			games.GET("/sessions/:session_id", hm.gameHandler.GetSession)
		}
	}
}

package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/zoomlabs/crm-server/internal/handlers"
	"github.com/zoomlabs/crm-server/internal/middleware"
	"github.com/zoomlabs/crm-server/internal/types"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Static("/uploads", "./uploads")

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		users := api.Group("/users")
		{
			users.GET("/create-admin", handlers.CreateAdmin)
			users.POST("/login", handlers.Login)

			authed := users.Group("", middleware.AuthMiddleware())
			{
				authed.POST("/create", handlers.CreateUser)
				authed.GET("/me", handlers.Me)
				authed.PUT("/update-profile", handlers.UpdateProfile)
				authed.POST("/change-password", handlers.ChangePassword)
				authed.GET("/paginated", handlers.GetPaginatedUsers)
				authed.GET("/:id", handlers.GetUserByID)
				authed.PUT("/:id", handlers.UpdateUserByID)
				authed.DELETE("/:id", handlers.SoftDeleteUser)
			}
		}

		contacts := api.Group("/contacts", middleware.AuthMiddleware())
		{
			contacts.POST("/add", handlers.AddContact)
			contacts.GET("/", handlers.ListContacts)
			contacts.PUT("/edit/:id", handlers.EditContact)
			contacts.DELETE("/delete/:id", handlers.DeleteContact)
			contacts.GET("/feedbacks/:contactId", handlers.GetContactFeedbacks)
		}

		alerts := api.Group("/alerts", middleware.AuthMiddleware())
		{
			alerts.GET("/today", handlers.GetTodayAlerts)
			alerts.PUT("/edit/:id", handlers.EditAlert)
			alerts.PUT("/snooze1d/:id", handlers.SnoozeOneDay)
		}

		notes := api.Group("/notes", middleware.AuthMiddleware())
		{
			notes.POST("/add", handlers.AddNote)
			notes.GET("/", middleware.CacheResponse("notes", 30*time.Second), handlers.GetAllNotes)
			notes.PUT("/tag/:id", handlers.UpdateTag)
			notes.PUT("/fav/:id", handlers.UpdateFavourite)
			notes.DELETE("/:id", handlers.DeleteNote)
		}

		scrum := api.Group("/scrumboard", middleware.AuthMiddleware())
		{
			scrum.GET("/", middleware.CacheResponse("scrumboard", 30*time.Second), handlers.GetScrumBoard)
			scrum.POST("/list/add", handlers.AddList)
			scrum.PUT("/list/edit/:id", handlers.EditList)
			scrum.DELETE("/list/delete/:id", handlers.DeleteList)
			scrum.DELETE("/list/clear/:id", handlers.ClearTasksFromList)
			scrum.POST("/task/add", handlers.AddTask)
			scrum.PUT("/task/edit/:id", handlers.EditTask)
			scrum.DELETE("/task/delete/:id", handlers.DeleteTask)
		}
	}

	return r
}

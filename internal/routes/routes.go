package routes

import (
	"pchat-api/internal/handlers"
	"pchat-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes() *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "pchat API is running",
		})
	})

	// Websocket endpoint; the handshake carries its own credential
	// check, so no JWT middleware here
	ginRouter.GET("/ws", handlers.WebSocketHandler)

	// Public routes (no authentication required)
	user := ginRouter.Group("/api/v1/user")
	{
		user.POST("/new", handlers.Register)
		user.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedUser := user.Group("")
	protectedUser.Use(middleware.JWTAuthMiddleware())
	{
		protectedUser.GET("/me", handlers.GetMyProfile)
		protectedUser.GET("/logout", handlers.Logout)
		protectedUser.GET("/search", handlers.SearchUser)
	}

	chat := ginRouter.Group("/api/v1/chat")
	chat.Use(middleware.JWTAuthMiddleware())
	{
		chat.POST("/new", handlers.NewGroupChat)
		chat.GET("/my", handlers.GetMyChats)
		chat.GET("/my/groups", handlers.GetMyGroups)
		chat.PUT("/addmembers", handlers.AddMembers)
		chat.PUT("/removemember", handlers.RemoveMember)
		chat.GET("/message/:id", handlers.GetMessages)
		chat.DELETE("/leave/:id", handlers.LeaveGroup)
		chat.GET("/:id", handlers.GetChatDetails)
		chat.PUT("/:id", handlers.RenameGroup)
		chat.DELETE("/:id", handlers.DeleteChat)
	}

	return ginRouter
}

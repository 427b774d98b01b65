package main

import (
	"log"
	"os"

	"pchat-api/internal/database"
	"pchat-api/internal/routes"
)

func main() {
	// Init database
	database.InitDB()

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	log.Printf("Server starting on port :%s", port)
	log.Println("API endpoints:")
	log.Println("  POST   /api/v1/user/new")
	log.Println("  POST   /api/v1/user/login")
	log.Println("  GET    /api/v1/user/me")
	log.Println("  GET    /api/v1/user/search")
	log.Println("  POST   /api/v1/chat/new")
	log.Println("  GET    /api/v1/chat/my")
	log.Println("  GET    /api/v1/chat/message/:id")
	log.Println("  GET    /ws")
	log.Println("  GET    /health")

	if err := ginRoutes.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

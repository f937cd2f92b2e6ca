package main

import (
	"log"
	"os"

	"syncdeck-api/internal/database"
	"syncdeck-api/internal/handlers"
	"syncdeck-api/internal/routes"
	"syncdeck-api/internal/uploads"
)

func main() {
	// Init database
	database.InitDB()

	// Evidence files land on local disk; swap the store for object storage
	// in larger deployments.
	store, err := uploads.NewDiskStore("uploads")
	if err != nil {
		log.Fatal("Failed to create upload directory: ", err)
	}
	handlers.SetEvidenceStore(store)

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8008"
	}
	addr := ":" + port

	log.Printf("Server starting on %s", addr)
	log.Println("API endpoints:")
	log.Println("  POST   /api/login")
	log.Println("  GET    /api/tasks")
	log.Println("  POST   /api/tasks")
	log.Println("  POST   /api/tasks/:id/progress")
	log.Println("  POST   /api/tasks/:id/approve")
	log.Println("  GET    /api/achievements/:id")
	log.Println("  GET    /api/analytics")
	log.Println("  GET    /health")

	if err := ginRoutes.Run(addr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

package main

import (
	"log"
	"os"

	"construction-monitoring-api/config"
	"construction-monitoring-api/controllers"
	"construction-monitoring-api/middleware"
	"construction-monitoring-api/monitor"
	"construction-monitoring-api/routes"
	"construction-monitoring-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize logging and database
	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}
	config.InitDB()

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	router.Use(middleware.CORSMiddleware())

	// Log viewer used by the /monitor page
	router.GET("/logs", func(c *gin.Context) {
		accessToken := os.Getenv("MONITOR_TOKEN")
		if accessToken == "" || c.Query("token") != accessToken {
			c.JSON(401, gin.H{"error": "Unauthorized"})
			return
		}

		logData, err := os.ReadFile(config.LogFilePath())
		if err != nil {
			c.JSON(500, gin.H{"error": "Unable to read log"})
			return
		}

		c.Data(200, "text/plain; charset=utf-8", logData)
	})
	monitor.RegisterMonitorPage(router)

	// Wire the validation engine and its collaborators
	fraudCfg := config.LoadFraudConfig()
	validation := services.NewValidationService(config.DB, fraudCfg)

	storagePath := os.Getenv("STORAGE_PATH")
	if storagePath == "" {
		storagePath = "./storage"
	}
	storage := services.NewStorageService(storagePath)

	var detector services.DetectionProvider
	if detectionURL := os.Getenv("DETECTION_SERVICE_URL"); detectionURL != "" {
		client := services.NewHTTPDetectionClient(detectionURL)
		if err := client.CheckHealth(); err != nil {
			log.Printf("Warning: detection service not healthy: %v", err)
		}
		detector = client
	} else {
		log.Println("DETECTION_SERVICE_URL not set; submissions will classify from an empty detection feed")
	}

	submissionController := controllers.NewSubmissionController(validation, detector, storage)

	routes.SetupRoutes(router, submissionController)

	// Start server
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	log.Printf("GPS tolerance %.0fm, duplicate hamming threshold %d",
		fraudCfg.GPSToleranceMeters, fraudCfg.DuplicateHammingThreshold)

	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

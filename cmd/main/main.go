package main

import (
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"landguard/internal/analysis"
	"landguard/internal/api"
	"landguard/internal/config"
	"landguard/internal/model"
	"landguard/internal/redis"
	"landguard/internal/scan"
	"landguard/internal/service/plot"
	"landguard/internal/worker"
)

func main() {
	setupLogging()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The result cache is optional; a missing Redis only disables restarts
	// surviving without a re-scan
	redis.Init(cfg.RedisUrl)
	defer closeConnections()

	setupSignalHandler()

	initializeServices(cfg)

	worker.StartAllWorkers()

	runAPIServer(cfg)
}

func setupLogging() {
	// Set up logging to file and terminal
	logFile, err := os.OpenFile("landguard.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	// Note: the file stays open for the entire application lifetime.

	// Use MultiWriter to output logs to both terminal and file
	multiWriter := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(multiWriter)
}

func initializeServices(cfg config.Config) {
	plotService := plot.GetPlotService()
	if err := plotService.InitService(cfg.DataDir, model.DefaultRegions()); err != nil {
		log.Fatalf("Failed to initialize plot service: %v", err)
	}

	// Re-apply cached analysis results before the bulk scan decides what is
	// still unscanned
	plotService.RestoreFromCache()

	scan.GetOrchestrator().SetClient(analysis.NewHTTPClient(cfg.BackendURL))
}

func runAPIServer(cfg config.Config) {
	// Initialize Gin router
	r := gin.Default()

	// Configure API routes
	api.SetupRouter(r)

	// Start the server
	r.Run(cfg.Port)
}

func closeConnections() {
	if err := redis.Close(); err != nil {
		log.Printf("Error closing Redis connection: %v", err)
	}
}

func setupSignalHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Println("Shutdown signal received, closing connections...")
		closeConnections()
		os.Exit(0)
	}()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pythonegrove/codesamples/internal/api"
	"github.com/pythonegrove/codesamples/internal/cache"
	"github.com/pythonegrove/codesamples/internal/config"
	"github.com/pythonegrove/codesamples/internal/db"
	"github.com/pythonegrove/codesamples/internal/email"
	"github.com/pythonegrove/codesamples/internal/services"
	"github.com/pythonegrove/codesamples/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'web' (site), 'bg' (background tasks), 'all' (default)")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	ctxIdx, cancelIdx := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(ctxIdx, mongoDb); err != nil {
		log.Printf("WARNING: Failed to ensure indexes: %v", err)
	}
	cancelIdx()

	// Initialize Cache (Redis)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Printf("Error disconnecting from Redis: %v", err)
		}
	}()

	// Initialize Email Sender
	var primaryEmailSender email.Sender
	if os.Getenv("MOCK_SERVICES") == "true" {
		log.Println("MOCK_SERVICES enabled: Using Redis email sender.")
		primaryEmailSender = email.NewRedisSender(redisClient, cfg.SmtpFromAddress)
	} else {
		log.Println("MOCK_SERVICES disabled or not set: Using SMTP/Logging email sender.")
		primaryEmailSender = email.NewSMTPSender(cfg)
	}

	compositeSender := email.NewCompositeEmailSender(primaryEmailSender)

	// Optionally add FileEmailSender if LOG_EMAILS is set
	if logEmailsPath := os.Getenv("LOG_EMAILS"); logEmailsPath != "" {
		log.Printf("LOG_EMAILS set to '%s', enabling file email logger.", logEmailsPath)
		fileSender, err := email.NewFileEmailSender(logEmailsPath)
		if err != nil {
			log.Printf("WARNING: Failed to initialize file email sender (LOG_EMAILS='%s'): %v. Proceeding without file logging.", logEmailsPath, err)
		} else {
			compositeSender.AddSender(fileSender)
		}
	}

	// Task client and dispatcher used by the contact form
	taskClient := tasks.NewClient(redisClient)
	defer taskClient.Close()
	dispatcher := tasks.NewAsynqDispatcher(taskClient)

	menuService := services.NewMenuService(mongoDb, cache.NewRedisJSONCache(redisClient, "menu:"), cfg.MenuCacheTTL)

	var wg sync.WaitGroup

	// Channel to signal shutdown from Service API
	shutdownChan := make(chan struct{}, 1)

	// Start Service API (always runs)
	serviceSrv := &http.Server{
		Addr:    ":" + cfg.ServiceApiPort,
		Handler: api.SetupServiceRouter(redisClient, menuService, shutdownChan),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		fmt.Printf("Service API listening on :%s\n", cfg.ServiceApiPort)
		if err := serviceSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Service API ListenAndServe error: %v", err)
		}
		fmt.Println("Service API server stopped.")
	}()

	// --- Mode-specific servers ---
	var siteSrv *http.Server
	var site *api.Site
	var backgroundTaskSrv *asynq.Server

	fmt.Printf("Starting application in '%s' mode...\n", cfg.RunMode)

	webMode := func() {
		fmt.Println("Starting site server...")
		site, err = api.SetupRouter(cfg, mongoDb, redisClient, dispatcher)
		if err != nil {
			log.Fatalf("Failed to set up site router: %v", err)
		}
		siteSrv = &http.Server{
			Addr:    ":" + cfg.SitePort,
			Handler: site.Engine,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Printf("Site listening on :%s\n", cfg.SitePort)
			if err := siteSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Site ListenAndServe error: %v", err)
			}
			fmt.Println("Site server stopped.")
		}()
	}

	bgMode := func() {
		fmt.Println("Starting background worker...")
		processor := tasks.NewTaskProcessor(cfg, compositeSender, services.NewEmailTemplateService(mongoDb), services.NewEnquiryService(mongoDb))
		var mux *asynq.ServeMux
		backgroundTaskSrv, mux = tasks.NewServer(redisClient, processor)
		if err := backgroundTaskSrv.Start(mux); err != nil {
			log.Fatalf("Background task server error: %v", err)
		}
		fmt.Println("Background task server started.")
	}

	switch cfg.RunMode {
	case "web":
		webMode()
	case "bg":
		bgMode()
	case "all":
		webMode()
		bgMode()
	default:
		log.Fatalf("Invalid run mode specified in config: %s.", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		fmt.Printf("\nReceived signal: %s. Shutting down gracefully...\n", sig)
	case <-shutdownChan:
		fmt.Println("\nShutdown requested via Service API. Shutting down gracefully...")
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	fmt.Println("Shutting down Service API server...")
	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		log.Printf("Service API server shutdown error: %v", err)
	}

	if siteSrv != nil {
		fmt.Println("Shutting down site server...")
		if err := siteSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("Site server shutdown error: %v", err)
		}
		site.RateLimiter.Stop()
	}

	if backgroundTaskSrv != nil {
		fmt.Println("Shutting down Background Task server...")
		backgroundTaskSrv.Shutdown()
	}

	fmt.Println("Waiting for servers to stop...")
	wg.Wait()

	fmt.Println("Server gracefully stopped")
}

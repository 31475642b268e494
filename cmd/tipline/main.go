package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dukerupert/tipline/internal/backup"
	"github.com/dukerupert/tipline/internal/database"
	"github.com/dukerupert/tipline/internal/logging"
	"github.com/dukerupert/tipline/internal/push"
	"github.com/dukerupert/tipline/internal/server"
)

func main() {
	_ = godotenv.Load()

	port := os.Getenv("TIPLINE_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("TIPLINE_DB_PATH")
	if dbPath == "" {
		dbPath = "tipline.db"
	}

	logger := logging.Setup(os.Getenv("TIPLINE_LOG_LEVEL"), os.Getenv("TIPLINE_LOG_FORMAT"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	cfg := server.Config{
		PushEndpoint: os.Getenv("TIPLINE_PUSH_ENDPOINT"),
		SeedURL:      os.Getenv("TIPLINE_SEED_URL"),
		AdminToken:   os.Getenv("TIPLINE_ADMIN_TOKEN"),
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  os.Getenv("TIPLINE_S3_ENDPOINT"),
				Bucket:    os.Getenv("TIPLINE_S3_BUCKET"),
				Region:    os.Getenv("TIPLINE_S3_REGION"),
				AccessKey: os.Getenv("TIPLINE_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("TIPLINE_S3_SECRET_KEY"),
			},
			Passphrase: os.Getenv("TIPLINE_BACKUP_PASSPHRASE"),
		},
	}

	if credPath := os.Getenv("TIPLINE_PUSH_CREDENTIALS"); credPath != "" {
		creds, err := push.LoadCredentials(credPath)
		if err != nil {
			log.Fatalf("failed to load push credentials: %v", err)
		}
		cfg.Credentials = creds
	}

	srv := server.New(db, cfg, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Tipline running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/avelkov/cloudnest/internal/api"
	"github.com/avelkov/cloudnest/internal/config"
	"github.com/avelkov/cloudnest/internal/repositories"
)

// @title CloudNest API
// @version 1.0
// @description Minimal personal cloud storage: register, log in, upload, download and delete files scoped to your account.
// @BasePath /
func main() {
	// The storage root must exist and accept writes before anything else runs
	if err := repositories.InitBlobDir(config.Envs.StorageRoot); err != nil {
		log.Fatalf("Error accessing storage directory: %v", err)
	}

	// Connect to database
	repositories.ConnectDatabase()

	mux := api.SetupRouter()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.Envs.Port),
		Handler: mux,
		// No ReadTimeout/WriteTimeout: uploads and downloads may run for a
		// long time under the 16 GiB cap. Slow-header clients still get cut.
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Starting CloudNest server on port: %s", config.Envs.Port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on port %s: %v", config.Envs.Port, err)
	}
}

package api

import (
	"fmt"
	"log"
	"net/http"

	_ "github.com/avelkov/cloudnest/docs"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/avelkov/cloudnest/internal/api/handlers"
	"github.com/avelkov/cloudnest/internal/api/middleware"
	"github.com/avelkov/cloudnest/internal/config"
	"github.com/rs/cors"
)

func SetupRouter() http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(config.Envs.CorsConfig)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	// Registered without method patterns so a stray GET gets a 405 from the
	// handler instead of falling through to the auth redirect.
	mainMux.HandleFunc("/register", handlers.RegisterUser)
	mainMux.HandleFunc("/login", handlers.LoginUser)

	// ---------- PROTECTED ROUTES ----------
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /{$}", handlers.ListFiles)
	protectedMux.HandleFunc("GET /logout", handlers.Logout)
	protectedMux.HandleFunc("POST /upload", handlers.UploadFiles)
	protectedMux.HandleFunc("GET /download/{filename}", handlers.DownloadFile)
	protectedMux.HandleFunc("GET /delete/{filename}", handlers.DeleteFile)

	mainMux.Handle("/", middleware.AuthMiddleware(protectedMux))

	log.Println("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(handler)
	return handler
}

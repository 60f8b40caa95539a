package api

import (
	"fmt"
	"log"
	"net/http"

	_ "github.com/docdrop/server/docs"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/docdrop/server/internal/api/handlers"
	"github.com/docdrop/server/internal/api/middleware"
	"github.com/docdrop/server/internal/config"
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

	authMux := http.NewServeMux()
	authMux.HandleFunc("/sign-up", handlers.RegisterUser)
	authMux.HandleFunc("/login", handlers.LoginUser)
	authMux.HandleFunc("/google/login", handlers.HandleGoogleLogin)
	authMux.HandleFunc("/google/callback", handlers.HandleGoogleCallback)

	mainMux.Handle("/api/v1/auth/",
		http.StripPrefix("/api/v1/auth", authMux),
	)

	// ---------- PROTECTED ROUTES ----------
	protectedMux := http.NewServeMux()

	protectedMux.HandleFunc("GET /files", handlers.ListFiles)
	protectedMux.HandleFunc("POST /files", handlers.UploadFiles)
	protectedMux.HandleFunc("GET /files/accepted-types", handlers.AcceptedTypes)
	protectedMux.HandleFunc("GET /files/{id}/preview", handlers.PreviewFile)
	protectedMux.HandleFunc("GET /files/{id}/download", handlers.DownloadFile)
	protectedMux.HandleFunc("DELETE /files/{id}", handlers.DeleteFile)

	protectedMux.HandleFunc("POST /auth/logout", handlers.Logout)
	protectedMux.HandleFunc("DELETE /auth/account", handlers.DeleteAccount)

	mainMux.Handle("/api/v1/",
		http.StripPrefix(
			"/api/v1",
			middleware.AuthMiddleware(protectedMux),
		),
	)

	log.Println("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(handler)
	return handler
}

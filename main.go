package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/CareerBridge/CB-Backend/internal/auth"
	"github.com/CareerBridge/CB-Backend/internal/config"
	"github.com/CareerBridge/CB-Backend/internal/db"
	"github.com/CareerBridge/CB-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("Invalid config: ", err)
	}

	db.Connect(cfg.DatabaseURL)
	auth.Init()

	store := auth.NewStore(db.DB)
	sessions := auth.NewSessionService(store, cfg.SessionLifetime(), cfg.CookieSecure)
	service := auth.NewService(store, sessions)
	handler := auth.NewHandler(service, sessions)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go auth.NewSweeper(store, cfg.SweepInterval(), cfg.SweepBatchSize).Run(ctx)

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)
	r.Mount("/auth", auth.SetupRoutes(handler, middleware.SessionMiddleware(sessions)))

	fmt.Println("Server listening on port :" + cfg.Port + "...")

	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}

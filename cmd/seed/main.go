package main

import (
	"errors"
	"log"
	"os"

	"github.com/CareerBridge/CB-Backend/internal/auth"
	"github.com/CareerBridge/CB-Backend/internal/config"
	"github.com/CareerBridge/CB-Backend/internal/db"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Seeds the admin account. Registration only accepts applicant and
// employer roles, so admins have to come from here.
func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("Invalid config: ", err)
	}

	db.Connect(cfg.DatabaseURL)
	auth.Init()

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@careerbridge.io"
	}

	password := os.Getenv("ADMIN_PASSWORD")
	generated := password == ""
	if generated {
		password = uuid.New().String()
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("Hashing admin password failed: %v", err)
	}

	store := auth.NewStore(db.DB)
	admin := &auth.User{
		Name:         "Administrator",
		Username:     "admin",
		Email:        email,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
	}

	if _, err := store.InsertUser(admin); err != nil {
		var cv *auth.ConstraintViolationError
		if errors.As(err, &cv) {
			log.Println("Admin account already exists, nothing to do")
			return
		}
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded admin account %s", email)
	if generated {
		log.Printf("Generated admin password: %s", password)
	}
}

package main

import (
	"log"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/vietanh2810/stand-portal-api/cmd/app"
)

// @title        Stand Portal API
// @version      1.0
// @description  Exhibitor stand submissions, admin review and per-stand discussion.
//
// @BasePath  /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token issued by /auth/login
func main() {
	if err := app.Start(); err != nil {
		log.Fatalf("app.Start -> %v", err)
	}
}

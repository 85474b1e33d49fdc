package main

import (
	"flag"
	"log"

	"pickleball/internal/auth"
	"pickleball/internal/config"
	"pickleball/internal/db"
)

func main() {
	filePath := flag.String("file", "users.csv", "path to users csv (name,email,password,skill_level)")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	conn, err := db.Open(cfg.DatabaseURL, db.Pool{MaxOpenConns: 2})
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	inserted, err := db.LoadUsers(conn, *filePath, auth.HashPassword)
	if err != nil {
		log.Fatalf("failed to load users: %v", err)
	}
	log.Printf("loaded %d users from %s", inserted, *filePath)
}

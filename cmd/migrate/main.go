package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"strconv"

	"pickleball/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Usage: migrate [-dir db/migrations] up | down N | version
func main() {
	dir := flag.String("dir", "db/migrations", "migrations directory")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	m, err := migrate.New("file://"+*dir, mustDatabaseURL())
	if err != nil {
		log.Fatalf("migration setup failed: %v", err)
	}
	defer m.Close()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}
	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("database migration failed: %v", err)
		}
		log.Println("database migrations applied")
	case "down":
		steps, err := strconv.Atoi(flag.Arg(1))
		if err != nil || steps <= 0 {
			log.Fatal("down requires a positive step count")
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("database rollback failed: %v", err)
		}
		log.Printf("rolled back %d migration(s)", steps)
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Println("no migrations applied")
			return
		}
		if err != nil {
			log.Fatalf("read version failed: %v", err)
		}
		log.Printf("version=%d dirty=%t", version, dirty)
	default:
		log.Fatalf("unknown command %q (want up, down N or version)", command)
	}
}

func mustDatabaseURL() string {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	return dsn
}

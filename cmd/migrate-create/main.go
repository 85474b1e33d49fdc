package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4/source/file"
)

const versionLayout = "20060102150405"

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

func main() {
	name := flag.String("name", "", "migration name, e.g. add_game_court_number")
	dir := flag.String("dir", filepath.Join("db", "migrations"), "migrations directory")
	flag.Parse()

	upPath, downPath, err := scaffold(*dir, *name, time.Now().UTC())
	if err != nil {
		log.Fatalf("create migration: %v", err)
	}
	log.Printf("created %s and %s", upPath, downPath)
}

// scaffold writes an empty up/down pair whose version sorts after every
// migration already in dir.
func scaffold(dir, name string, now time.Time) (string, string, error) {
	slug := slugify(name)
	if slug == "" {
		return "", "", errors.New("migration name is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create migrations dir: %w", err)
	}
	latest, err := latestVersion(dir)
	if err != nil {
		return "", "", err
	}
	version, _ := strconv.ParseUint(now.Format(versionLayout), 10, 64)
	if version <= latest {
		version = latest + 1
	}

	base := fmt.Sprintf("%d_%s", version, slug)
	upPath := filepath.Join(dir, base+".up.sql")
	downPath := filepath.Join(dir, base+".down.sql")
	if err := writeNew(upPath, "-- up: "+slug+"\nBEGIN;\n\nCOMMIT;\n"); err != nil {
		return "", "", err
	}
	if err := writeNew(downPath, "-- down: "+slug+"\nBEGIN;\n\nCOMMIT;\n"); err != nil {
		_ = os.Remove(upPath)
		return "", "", err
	}
	return upPath, downPath, nil
}

func slugify(name string) string {
	return strings.Trim(nonWord.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// latestVersion walks the directory through the same source driver the
// migrate command reads, so unparseable files fail here too.
func latestVersion(dir string) (uint64, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return 0, err
	}
	drv, err := (&file.File{}).Open("file://" + filepath.ToSlash(abs))
	if err != nil {
		return 0, fmt.Errorf("read migrations: %w", err)
	}
	defer drv.Close()

	version, err := drv.First()
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	for {
		next, err := drv.Next(version)
		if errors.Is(err, os.ErrNotExist) {
			return uint64(version), nil
		}
		if err != nil {
			return 0, err
		}
		version = next
	}
}

func writeNew(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

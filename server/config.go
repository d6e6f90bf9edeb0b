package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds server settings. Flags take precedence over environment
// variables, which may come from a .env file.
type Config struct {
	Addr            string
	DBPath          string
	AdminSecret     string
	PublicURL       string
	AllowedOrigins  []string
	PrintAdminToken bool
}

// LoadConfig reads .env (if present), then the environment, then args
func LoadConfig(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	var origins string
	fset := flag.NewFlagSet("mousemaze", flag.ContinueOnError)
	fset.StringVar(&cfg.Addr, "addr", getEnv("MAZE_ADDR", ":3000"), "HTTP listen address")
	fset.StringVar(&cfg.DBPath, "db", getEnv("MAZE_DB", ""), "SQLite analytics database path (empty disables)")
	fset.StringVar(&cfg.AdminSecret, "admin-secret", getEnv("MAZE_ADMIN_SECRET", ""), "HMAC secret for admin tokens (empty disables /api/stats)")
	fset.StringVar(&cfg.PublicURL, "public-url", getEnv("MAZE_PUBLIC_URL", ""), "URL encoded in the join QR code")
	fset.StringVar(&origins, "origins", getEnv("MAZE_ORIGINS", "*"), "comma-separated allowed origins")
	fset.BoolVar(&cfg.PrintAdminToken, "print-admin-token", false, "print a fresh admin token and exit")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

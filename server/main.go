package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	admin := NewAdmin(cfg.AdminSecret)
	if cfg.PrintAdminToken {
		if admin == nil {
			log.Fatal("-print-admin-token needs an admin secret")
		}
		token, err := admin.IssueToken("admin")
		if err != nil {
			log.Fatalf("issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	var db *DB
	if cfg.DBPath != "" {
		db, err = OpenDB(cfg.DBPath)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
	}

	analytics := NewAnalytics(db)
	defer analytics.Stop()

	hub := NewHub(analytics)
	go hub.Run()
	defer hub.Stop()

	handler := SetupRoutes(hub, cfg, analytics, admin)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: cfg.Addr, Handler: handler}

	go func() {
		log.Printf("server running at %s", cfg.Addr)
		if db != nil {
			log.Printf("recording analytics to %s", cfg.DBPath)
		}
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

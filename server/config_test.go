package main

import (
	"reflect"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("MAZE_ADDR", "")
	t.Setenv("MAZE_DB", "")
	t.Setenv("MAZE_ORIGINS", "")
	t.Setenv("MAZE_ADMIN_SECRET", "")

	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":3000" {
		t.Errorf("expected :3000, got %s", cfg.Addr)
	}
	if cfg.DBPath != "" || cfg.AdminSecret != "" {
		t.Errorf("expected storage and admin disabled, got %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"*"}) {
		t.Errorf("expected wildcard origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigEnvAndFlags(t *testing.T) {
	t.Setenv("MAZE_ADDR", ":4000")
	t.Setenv("MAZE_DB", "env.db")
	t.Setenv("MAZE_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := LoadConfig([]string{"-db", "flag.db", "-print-admin-token"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":4000" {
		t.Errorf("expected env addr, got %s", cfg.Addr)
	}
	if cfg.DBPath != "flag.db" {
		t.Errorf("expected flag to win, got %s", cfg.DBPath)
	}
	if !cfg.PrintAdminToken {
		t.Error("expected print-admin-token")
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("expected %v, got %v", want, cfg.AllowedOrigins)
	}
}

func TestLoadConfigBadFlag(t *testing.T) {
	if _, err := LoadConfig([]string{"-nope"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

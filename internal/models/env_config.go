package models

import (
	"fmt"
	"os"
	"strings"
)

type EnvConfig struct {
	DatabaseURL string
	Port        string
	OpsPort     string
	AdminSecret string
	Candidates  []string
	Debug       bool
}

func ReadEnvConfig() EnvConfig {
	debug := os.Getenv("SCRUTINIO_DEBUG") == "true"
	port := os.Getenv("SCRUTINIO_PORT")
	if port == "" {
		port = "8080"
	}
	opsPort := os.Getenv("SCRUTINIO_OPS_PORT")
	if opsPort == "" {
		opsPort = "8081"
	}
	candidates := splitCandidates(os.Getenv("SCRUTINIO_CANDIDATES"))
	if len(candidates) == 0 {
		fmt.Println("Using default value for SCRUTINIO_CANDIDATES")
		candidates = []string{"Alice", "Bob", "Charlie"}
	}
	return EnvConfig{
		DatabaseURL: os.Getenv("SCRUTINIO_DATABASE_URL"),
		Port:        port,
		OpsPort:     opsPort,
		AdminSecret: os.Getenv("SCRUTINIO_ADMIN_SECRET"),
		Candidates:  candidates,
		Debug:       debug,
	}
}

func splitCandidates(raw string) []string {
	var names []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

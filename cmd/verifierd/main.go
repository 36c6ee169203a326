package main

import (
	"log"
	"os"
	"strconv"

	"github.com/rawblock/confidential-verifier/internal/api"
	"github.com/rawblock/confidential-verifier/internal/auditstore"
	"github.com/rawblock/confidential-verifier/internal/curve"
	"github.com/rawblock/confidential-verifier/internal/proofcache"
	"github.com/rawblock/confidential-verifier/internal/verifier"
)

func main() {
	log.Println("Starting Confidential Amount Verifier...")

	// ─── Required Environment Variables ─────────────────────────────────
	// All credentials MUST come from environment variables. No fallback
	// defaults for security-sensitive values. Use a .env file for local
	// development: cp .env.example .env && edit .env
	// ────────────────────────────────────────────────────────────────────

	dbURL := requireEnv("DATABASE_URL")

	store, err := auditstore.Connect(dbURL)
	if err != nil {
		log.Printf("Warning: failed to connect to PostgreSQL, continuing without an audit trail. Error: %v", err)
	} else {
		defer store.Close()
		if err := store.InitSchema(); err != nil {
			log.Printf("Warning: audit store schema init failed: %v", err)
		}
	}

	ctx := curve.NewContext(
		curve.WithRangeVerifier(curve.RefVerifier{}),
		curve.WithSurjectionVerifier(curve.RefVerifier{}),
	)

	cacheSize := getEnvIntOrDefault("PROOF_CACHE_SIZE", proofcache.DefaultMaxEntries)
	caches := verifier.Caches{
		Range:      proofcache.NewRangeCache(cacheSize),
		Surjection: proofcache.NewSurjectionCache(cacheSize),
	}

	if os.Getenv("VERIFIER_DEBUG_LOG") == "1" {
		log.Println("VERIFIER_DEBUG_LOG=1: per-commitment trace logging enabled")
	}

	wsHub := api.NewHub()
	go wsHub.Run()

	r := api.SetupRouter(ctx, caches, store, wsHub)

	port := getEnvOrDefault("PORT", "5339")

	log.Printf("Verifier running on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// requireEnv reads a required environment variable and exits if it is not set.
// This prevents the binary from starting with missing critical configuration.
func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("FATAL: Required environment variable %s is not set. "+
			"Copy .env.example to .env and fill in your values: cp .env.example .env", key)
	}
	return val
}

// getEnvOrDefault returns the env var value or a safe default for non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvIntOrDefault parses an integer-valued env var, falling back to
// fallback if it is unset or not a valid integer.
func getEnvIntOrDefault(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("Warning: %s=%q is not a valid integer, using default %d", key, val, fallback)
		return fallback
	}
	return n
}

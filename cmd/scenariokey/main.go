package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"bingoart/internal/infra"
	"bingoart/internal/infra/credentials"
)

func main() {
	_ = godotenv.Load()

	var keyFlag, secretFlag string
	flag.StringVar(&keyFlag, "key", "", "Scenario API key (fallbacks to SCENARIO_API_KEY)")
	flag.StringVar(&secretFlag, "secret", "", "Scenario API secret (fallbacks to SCENARIO_API_SECRET)")
	flag.Parse()

	pair := credentials.KeyPair{
		Key:    firstNonEmpty(keyFlag, os.Getenv("SCENARIO_API_KEY"), os.Getenv("SCENARIO_ID")),
		Secret: firstNonEmpty(secretFlag, os.Getenv("SCENARIO_API_SECRET"), os.Getenv("SCENARIO_SECRET")),
	}
	if !pair.Complete() {
		fmt.Fprintln(os.Stderr, "scenario key and secret are required via -key/-secret or environment")
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "scenariokey").Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))
	if err := store.SetScenarioKeyPair(ctx, pair); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist scenario credentials: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Scenario credentials stored successfully")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

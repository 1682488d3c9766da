package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/procurely/sourcing-insights/internal/history"
	"github.com/procurely/sourcing-insights/internal/httpapi"
	"github.com/procurely/sourcing-insights/internal/insight"
	"github.com/procurely/sourcing-insights/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	dbFlag := flag.String("db", "", "path to SQLite analysis database (overrides DB_PATH env var; empty disables history)")
	llmTimeout := flag.Duration("llm-timeout", insight.DefaultLLMTimeout, "budget for one collaborator call")
	flag.Parse()

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	shutdown, err := telemetry.Setup(context.Background(), "sourcing-insights")
	if err != nil {
		log.Fatalf("telemetry setup: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(ctx)
	}()

	var caller insight.LLMCaller
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		c, err := insight.NewAnthropicCallerFromEnv()
		if err != nil {
			log.Fatalf("anthropic client: %v", err)
		}
		caller = c
		log.Printf("collaborator configured, generative strategy enabled")
	} else {
		log.Printf("ANTHROPIC_API_KEY not set, using rule-based strategy only")
	}
	pipeline := insight.NewPipeline(caller).WithLLMTimeout(*llmTimeout)

	dbPath := *dbFlag
	if dbPath == "" {
		dbPath = os.Getenv("DB_PATH")
	}
	var store *history.Store
	if dbPath != "" {
		s, err := history.Open(dbPath)
		if err != nil {
			log.Fatalf("failed to open analysis database (%s): %v", dbPath, err)
		}
		defer s.Close()
		store = s
		log.Printf("storing analyses at %s", dbPath)
	}

	h := httpapi.NewServer(pipeline, store)
	log.Printf("sourcing-insights listening on %s", addr)
	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal(err)
	}
}

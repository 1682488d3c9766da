package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/procurely/sourcing-insights/internal/insight"
)

func main() {
	_ = godotenv.Load()

	inputPath := flag.String("input", "", "Path to analysis request JSON (category + suppliers)")
	outputPath := flag.String("output", "", "Path to write the markdown report (defaults to stdout)")
	jsonOutputPath := flag.String("json-output", "", "Optional path to write the full result envelope JSON")
	noLLM := flag.Bool("no-llm", false, "Skip the collaborator and use the rule-based strategy")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("missing required -input")
	}

	in, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}
	var req insight.AnalysisRequest
	if err := json.Unmarshal(in, &req); err != nil {
		log.Fatalf("decode input JSON: %v", err)
	}

	var caller insight.LLMCaller
	if !*noLLM && os.Getenv("ANTHROPIC_API_KEY") != "" {
		c, err := insight.NewAnthropicCallerFromEnv()
		if err != nil {
			log.Fatalf("anthropic client: %v", err)
		}
		caller = c
	}

	res, err := insight.NewPipeline(caller).Analyze(context.Background(), req)
	if err != nil {
		log.Fatalf("analyze: %v", err)
	}

	if err := writeMarkdown(*outputPath, res.ReportMarkdown); err != nil {
		log.Fatalf("write markdown: %v", err)
	}
	if *jsonOutputPath != "" {
		if err := writeResultJSON(*jsonOutputPath, res); err != nil {
			log.Fatalf("write json output: %v", err)
		}
	}
}

func writeMarkdown(outputPath, markdown string) error {
	if outputPath == "" {
		_, err := fmt.Print(markdown)
		return err
	}
	return os.WriteFile(outputPath, []byte(markdown), 0o644)
}

func writeResultJSON(path string, res insight.Result) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

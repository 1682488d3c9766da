package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/procurely/sourcing-insights/internal/insight"
	"github.com/procurely/sourcing-insights/internal/render"
)

func main() {
	inputPath := flag.String("input", "", "Path to saved analysis result envelope JSON")
	outputPath := flag.String("output", "", "Path to write the rendered document (.html or .pdf; defaults to stdout HTML)")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("missing required -input")
	}

	in, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}
	var res insight.Result
	if err := json.Unmarshal(in, &res); err != nil {
		log.Fatalf("decode input JSON: %v", err)
	}

	if strings.HasSuffix(strings.ToLower(*outputPath), ".pdf") {
		pdf, err := render.NewChromiumPDFRenderer().Render(context.Background(), res)
		if err != nil {
			log.Fatalf("render pdf: %v", err)
		}
		if err := os.WriteFile(*outputPath, pdf, 0o644); err != nil {
			log.Fatalf("write pdf: %v", err)
		}
		return
	}

	doc, err := render.BuildHTML(res)
	if err != nil {
		log.Fatalf("render html: %v", err)
	}
	if *outputPath == "" {
		if _, err := fmt.Print(doc); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := os.WriteFile(*outputPath, []byte(doc), 0o644); err != nil {
		log.Fatalf("write html: %v", err)
	}
}

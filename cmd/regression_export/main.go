// Command regression_export renders a flyer PDF through the Scanner and
// writes its ScanResult as a JSON regression fixture, for capturing a
// known-good output to compare future runs against. The fixture input is a
// PDF file on disk, not a database row.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dealsscannerpro/internal/categories"
	"dealsscannerpro/internal/config"
	"dealsscannerpro/internal/llm"
	"dealsscannerpro/internal/pipeline"
)

func main() {
	pdfPath := flag.String("pdf", "", "path to the flyer PDF to scan")
	name := flag.String("name", "", "sample name (default: the PDF's base name)")
	outPath := flag.String("out", "", "output json file path (default: internal/pipeline/testdata/regression/<name>.json)")
	overwrite := flag.Bool("overwrite", false, "overwrite output if it exists")
	flag.Parse()

	path := strings.TrimSpace(*pdfPath)
	if path == "" {
		fmt.Fprintln(os.Stderr, "missing --pdf")
		os.Exit(2)
	}

	sampleName := strings.TrimSpace(*name)
	if sampleName == "" {
		sampleName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	dest := strings.TrimSpace(*outPath)
	if dest == "" {
		dest = filepath.Join("internal", "pipeline", "testdata", "regression", sampleName+".json")
	}
	if !*overwrite {
		if _, err := os.Stat(dest); err == nil {
			fmt.Fprintf(os.Stderr, "output exists: %s (use --overwrite)\n", dest)
			os.Exit(1)
		}
	}

	pdfBytes, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	cfg := config.Load()
	categoryService := categories.NewService(cfg.CategoryServiceURL)
	llmClient := llm.NewClient(cfg.NormalizerURL, cfg.NormalizerKey, cfg.NormalizerModel)
	normalizer := pipeline.NewNormalizer(llmClient, categoryService)
	scanner := pipeline.NewScanner(pipeline.Services{Normalize: normalizer})

	result, err := scanner.Scan(context.Background(), pdfBytes, filepath.Base(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan failed: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	b = append(b, '\n')

	if err := os.WriteFile(dest, b, 0644); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Println(dest)
}

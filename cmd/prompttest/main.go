package main

// Score a local resume file with the configured provider:
//   go run ./cmd/prompttest -resume ./cv.pdf

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resumepro/internal/extract"
	"resumepro/internal/llm"
	"resumepro/internal/llm/gemini"
	"resumepro/internal/llm/openai"
	"resumepro/internal/scoring"
	"resumepro/internal/shared/config"
)

type options struct {
	resume   string
	out      string
	provider string
	model    string
	timeout  time.Duration
}

func main() {
	cfg := config.Load()

	var opts options
	flag.StringVar(&opts.resume, "resume", "", "Path to resume file (pdf, docx or txt)")
	flag.StringVar(&opts.out, "out", "", "Also write the JSON result to this path")
	flag.StringVar(&opts.provider, "provider", cfg.LLMProvider, "LLM provider (openai, gemini, none)")
	flag.StringVar(&opts.model, "model", cfg.LLMModel, "LLM model")
	flag.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Overall time limit")
	flag.Parse()

	if err := run(cfg, opts); err != nil {
		fmt.Fprintln(os.Stderr, "prompttest:", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, opts options) error {
	if strings.TrimSpace(opts.resume) == "" {
		return errors.New("-resume is required")
	}
	data, err := os.ReadFile(opts.resume)
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}
	fileName := filepath.Base(opts.resume)

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	text, err := extract.FromBytes(ctx, data, "", fileName)
	if err != nil {
		return fmt.Errorf("extract %s: %w", fileName, err)
	}
	client, err := buildClient(ctx, cfg, opts.provider, opts.model)
	if err != nil {
		return err
	}

	started := time.Now()
	res, err := scoring.NewAnalyzer(client).Analyze(ctx, scoring.Request{ResumeText: text, FileName: fileName})
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	fmt.Fprintf(os.Stderr, "scored %d chars with %s in %s\n", len(text), opts.provider, time.Since(started).Round(time.Millisecond))

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	if opts.out != "" {
		if err := os.WriteFile(opts.out, out, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.out, err)
		}
	}
	_, err = os.Stdout.Write(out)
	return err
}

func buildClient(ctx context.Context, cfg config.Config, provider, model string) (llm.Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		return openai.NewClient(cfg.OpenAIAPIKey, model)
	case "gemini", "google":
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, model)
	case "none":
		return llm.PlaceholderClient{}, nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", provider)
	}
}

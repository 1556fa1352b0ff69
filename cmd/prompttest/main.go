package main

// Print or run the generation and analysis prompts against the configured provider:
//   go run ./cmd/prompttest -mode generate -input input.json
//   go run ./cmd/prompttest -mode analyze -resume resume.json -jd jd.txt -send

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"jobtracker-backend/internal/analyses"
	"jobtracker-backend/internal/bootstrap"
	"jobtracker-backend/internal/llm"
	"jobtracker-backend/internal/profiles"
	"jobtracker-backend/internal/resumes"
	"jobtracker-backend/internal/shared/config"
	"jobtracker-backend/resume/model"
)

func main() {
	cfg := config.Load()

	mode := flag.String("mode", "generate", "generate or analyze")
	inputPath := flag.String("input", "", "generation input JSON (generate mode)")
	instructions := flag.String("instructions", "", "custom system instructions (generate mode)")
	resumePath := flag.String("resume", "", "resume document JSON (analyze mode)")
	jdPath := flag.String("jd", "", "job description text (analyze mode)")
	send := flag.Bool("send", false, "send the prompt to the configured provider instead of printing it")
	outPath := flag.String("out", "", "path to write the output (optional)")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider")
	modelName := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	var (
		req llm.Request
		err error
	)
	switch strings.TrimSpace(*mode) {
	case "generate":
		req, err = generateRequest(*inputPath, *instructions)
	case "analyze":
		req, err = analyzeRequest(*resumePath, *jdPath)
	default:
		err = fmt.Errorf("unsupported mode: %s", *mode)
	}
	if err != nil {
		exitErr(err.Error())
	}

	var out []byte
	if !*send {
		out = []byte("SYSTEM:\n" + req.System + "\n\nUSER:\n" + req.UserContent() + "\n")
	} else {
		cfg.LLMProvider = *provider
		cfg.LLMModel = *modelName
		out, err = run(cfg, req)
		if err != nil {
			exitErr(err.Error())
		}
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, out, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(out); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func generateRequest(path, instructions string) (llm.Request, error) {
	if strings.TrimSpace(path) == "" {
		return llm.Request{}, fmt.Errorf("input path is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return llm.Request{}, fmt.Errorf("read input: %w", err)
	}
	var in profiles.GenerationInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return llm.Request{}, fmt.Errorf("decode input: %w", err)
	}
	return resumes.BuildRequest(in, instructions)
}

func analyzeRequest(resumePath, jdPath string) (llm.Request, error) {
	if strings.TrimSpace(resumePath) == "" || strings.TrimSpace(jdPath) == "" {
		return llm.Request{}, fmt.Errorf("resume and jd paths are required")
	}
	resume, err := os.ReadFile(resumePath)
	if err != nil {
		return llm.Request{}, fmt.Errorf("read resume: %w", err)
	}
	jd, err := os.ReadFile(jdPath)
	if err != nil {
		return llm.Request{}, fmt.Errorf("read job description: %w", err)
	}
	return analyses.BuildRequest(strings.TrimSpace(string(jd)), string(resume)), nil
}

func run(cfg config.Config, req llm.Request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.LLMTimeout)
	defer cancel()

	gen, err := bootstrap.NewGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, fmt.Errorf("no provider configured for %q", cfg.LLMProvider)
	}
	raw, err := gen.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("llm %s: %w", req.Operation, err)
	}
	obj, err := llm.ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("extract json: %w\n%s", err, raw)
	}
	if req.Schema == model.SchemaJSON() {
		if err := model.ValidateJSON(obj); err != nil {
			return nil, fmt.Errorf("invalid resume document: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(obj), "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

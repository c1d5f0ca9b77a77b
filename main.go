package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/replysight/server/internal/agent/engine"
	"github.com/replysight/server/internal/agent/llm"
	"github.com/replysight/server/internal/agent/model"
	"github.com/replysight/server/internal/agent/research"
	"github.com/replysight/server/internal/agent/session"
	"github.com/replysight/server/internal/core"
	pkgredis "github.com/replysight/server/pkg/redis"

	logx "github.com/replysight/server/pkg/logger"
)

// AppConfig defines all configurable parameters for the service, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Engine configs
	Decision  model.DecisionModelConfig
	Evaluator model.EvaluatorModelConfig
	Composer  model.ComposerModelConfig
	Engine    model.EngineConfig
	Research  model.ResearchConfig
	Session   model.SessionConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	rdb, err := cfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	ttl, err := time.ParseDuration(cfg.Session.TTL)
	if err != nil {
		log.Fatalf("Invalid SESSION_TTL '%s': %v", cfg.Session.TTL, err)
	}

	academic := research.NewArxivAdapter(cfg.Research)
	bestPractice := research.NewTavilyAdapter(cfg.Research)

	cms, err := llm.New(ctx, llm.Config{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Decision:  cfg.Decision,
		Evaluator: cfg.Evaluator,
		Composer:  cfg.Composer,
	}, []*schema.ToolInfo{academic.Info(), bestPractice.Info()})
	if err != nil {
		log.Fatalf("Failed to create chat models: %v", err)
	}

	eng, err := engine.New(engine.Config{
		DecisionModel:      cms.Decision,
		EvaluatorModel:     cms.Evaluator,
		ComposerModel:      cms.Composer,
		DecisionModelName:  cms.DecisionName,
		EvaluatorModelName: cms.EvaluatorName,
		ComposerModelName:  cms.ComposerName,
		Academic:           academic,
		BestPractice:       bestPractice,
		Engine:             cfg.Engine,
		Sessions:           session.NewRedisStore(rdb, ttl),
	})
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	wf := eng.DescribeWorkflow()
	fmt.Printf("Workflow: %d nodes, %d edges, cycles=%v\n", len(wf.NodeNames), len(wf.Edges), wf.HasCycles)
	fmt.Println(wf.Mermaid())

	complaints := []struct {
		description string
		complaint   string
	}{
		{
			description: "Defective earbud, return denied",
			complaint:   "The right earbud stopped charging after one week and your site says I'm not eligible for a return. This is ridiculous.",
		},
		{
			description: "Missing tracking information",
			complaint:   "I ordered a laptop stand two weeks ago and still have no tracking number. Where is my order?",
		},
		{
			description: "Billing overcharge",
			complaint:   "You charged my card twice for the same subscription month and support hasn't answered in four days.",
		},
	}

	for i, tc := range complaints {
		fmt.Printf("\nComplaint %d: %s\n", i+1, tc.description)
		fmt.Println("Processing...")

		report, err := eng.Generate(ctx, tc.complaint)
		if err != nil {
			log.Fatalf("Failed to generate reply for complaint %d: %v", i+1, err)
		}

		fmt.Printf("Reply: %s\n", report.Reply.Reply)
		fmt.Printf("Citations: %v\n", report.Citations)
		fmt.Printf("Latency: %dms | iterations: %d | helpfulness: %.2f | quality: %s | cost: $%.6f\n",
			report.LatencyMs, report.Iterations, report.HelpfulnessScore, report.ResearchQuality, report.CostUSD)
		fmt.Printf("Ended because: %s\n", report.DecisionReason)
	}
}

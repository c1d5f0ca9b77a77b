// Package llm constructs the production chat models backing the engine.
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/replysight/server/internal/agent/model"
	logx "github.com/replysight/server/pkg/logger"
)

// Config holds the provider credentials plus per-model settings.
type Config struct {
	APIKey  string
	BaseURL string

	Decision  model.DecisionModelConfig
	Evaluator model.EvaluatorModelConfig
	Composer  model.ComposerModelConfig
}

// ChatModels holds the three engine models sharing one Gemini client. The
// decision model has the research tools bound so it can request retrievals.
type ChatModels struct {
	Decision  *gemini.ChatModel
	Evaluator *gemini.ChatModel
	Composer  *gemini.ChatModel

	DecisionName  string
	EvaluatorName string
	ComposerName  string
}

// New creates the three chat models and binds the research tools to the
// decision model.
func New(ctx context.Context, cfg Config, toolInfos []*schema.ToolInfo) (*ChatModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	decision, err := newModel(ctx, client, cfg.Decision.Model, cfg.Decision.Temperature, cfg.Decision.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("error creating decision model: %w", err)
	}
	if err := decision.BindTools(toolInfos); err != nil {
		logx.Error().Err(err).Msg("Failed to bind research tools to decision model")
		return nil, fmt.Errorf("failed to bind research tools: %w", err)
	}

	evaluator, err := newModel(ctx, client, cfg.Evaluator.Model, cfg.Evaluator.Temperature, cfg.Evaluator.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("error creating evaluator model: %w", err)
	}

	composer, err := newModel(ctx, client, cfg.Composer.Model, cfg.Composer.Temperature, cfg.Composer.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("error creating composer model: %w", err)
	}

	return &ChatModels{
		Decision:      decision,
		Evaluator:     evaluator,
		Composer:      composer,
		DecisionName:  cfg.Decision.Model,
		EvaluatorName: cfg.Evaluator.Model,
		ComposerName:  cfg.Composer.Model,
	}, nil
}

func newModel(ctx context.Context, client *genai.Client, name string, temperature float32, maxTokens int) (*gemini.ChatModel, error) {
	return gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       name,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
}

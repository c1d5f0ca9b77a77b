package model

// ================ Config ================

// EngineConfig carries the hard bounds of the decision engine. Both ceilings
// guard billed external calls; termination by bound is a correctness
// requirement, not a tuning knob.
type EngineConfig struct {
	IterationCeiling     int     `envconfig:"ENGINE_ITERATION_CEILING" default:"4"`
	HistoryCeiling       int     `envconfig:"ENGINE_HISTORY_CEILING" default:"10"`
	HelpfulnessThreshold float64 `envconfig:"ENGINE_HELPFULNESS_THRESHOLD" default:"0.7"`
}

type DecisionModelConfig struct {
	Model       string  `envconfig:"DECISION_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"DECISION_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"DECISION_TEMPERATURE" default:"0.3"`
}

type EvaluatorModelConfig struct {
	Model       string  `envconfig:"EVALUATOR_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"EVALUATOR_MAX_TOKENS" default:"200"`
	Temperature float32 `envconfig:"EVALUATOR_TEMPERATURE" default:"0.1"`
}

type ComposerModelConfig struct {
	Model       string  `envconfig:"COMPOSER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"COMPOSER_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"COMPOSER_TEMPERATURE" default:"0.7"`
}

type ResearchConfig struct {
	// ArxivBaseURL selects the academic backend. Empty means the built-in
	// static corpus.
	ArxivBaseURL    string `envconfig:"ARXIV_BASE_URL"`
	ArxivMaxResults int    `envconfig:"ARXIV_MAX_RESULTS" default:"3"`

	TavilyAPIKey     string `envconfig:"TAVILY_API_KEY"`
	TavilyBaseURL    string `envconfig:"TAVILY_BASE_URL" default:"https://api.tavily.com/search"`
	TavilyDepth      string `envconfig:"TAVILY_SEARCH_DEPTH" default:"basic"`
	TavilyMaxResults int    `envconfig:"TAVILY_MAX_RESULTS" default:"3"`
}

type SessionConfig struct {
	TTL string `envconfig:"SESSION_TTL" default:"15m"`
}

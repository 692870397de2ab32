package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

const configFilePath = "config.yaml"

type Config struct {
	Log        Log        `yaml:"log"`
	LLM        LLM        `yaml:"llm"`
	Embeddings Embeddings `yaml:"embeddings"`
	Memory     Memory     `yaml:"memory"`
	History    History    `yaml:"history"`
	Server     Server     `yaml:"server"`
}

type LLM struct {
	// OpenAI-compatible base url of the hosted model provider
	BaseURL string `yaml:"base_url" example:"https://api.groq.com/openai/v1" validate:"required"`
	// API token, taken from the GROQ_API_KEY environment variable
	Token string `yaml:"-" validate:"required"`
	// Chat completion model
	Model string `yaml:"model" example:"llama-3.3-70b-versatile" validate:"required"`
	// Sampling temperature, nil means the default. Explicit 0 is honored.
	Temperature *float32 `yaml:"temperature" example:"0.2"`
}

type Embeddings struct {
	// OpenAI-compatible base url of the embedding provider
	BaseURL string `yaml:"base_url" example:"http://localhost:11434/v1" validate:"required"`
	// API token, taken from the EMBEDDINGS_API_KEY environment variable.
	// Falls back to the LLM token, local providers ignore it anyway.
	Token string `yaml:"-"`
	// Embedding model
	Model string `yaml:"model" example:"nomic-embed-text" validate:"required"`
}

type Memory struct {
	// Chroma server url
	ChromaURL string `yaml:"chroma_url" example:"http://localhost:8000" validate:"required"`
	// Collection holding the study notes
	Collection string `yaml:"collection" example:"study_notes" validate:"required"`
	// Number of notes retrieved per query
	TopK int `yaml:"top_k" example:"4" validate:"min=1"`
}

type History struct {
	// Maximum turns retained per session, oldest dropped first
	MaxTurns int `yaml:"max_turns" example:"20" validate:"min=1"`
}

type Server struct {
	// HTTP listen address
	Addr string `yaml:"addr" example:":8080" validate:"required"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

// Load reads the optional config.yaml, merges environment credentials and
// defaults, then validates. A missing GROQ_API_KEY is a startup-time error.
func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile(configFilePath)
	if err != nil && !os.IsNotExist(err) {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err = yaml.Unmarshal(data, &result); err != nil {
			return nil, oops.Errorf("failed to parse YAML config: %w", err)
		}
	}

	result.LLM.Token = os.Getenv("GROQ_API_KEY")
	result.Embeddings.Token = os.Getenv("EMBEDDINGS_API_KEY")

	if result.LLM.Token == "" {
		return nil, oops.Errorf("GROQ_API_KEY is not set")
	}

	result.ApplyDefaults()

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

// ApplyDefaults fills in every unset field with its default value.
func (c *Config) ApplyDefaults() {
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "llama-3.3-70b-versatile"
	}
	if c.LLM.Temperature == nil {
		c.LLM.Temperature = lo.ToPtr(float32(0.2))
	}
	if c.Embeddings.BaseURL == "" {
		c.Embeddings.BaseURL = "http://localhost:11434/v1"
	}
	if c.Embeddings.Model == "" {
		c.Embeddings.Model = "nomic-embed-text"
	}
	if c.Embeddings.Token == "" {
		c.Embeddings.Token = c.LLM.Token
	}
	if c.Memory.ChromaURL == "" {
		c.Memory.ChromaURL = "http://localhost:8000"
	}
	if c.Memory.Collection == "" {
		c.Memory.Collection = "study_notes"
	}
	if c.Memory.TopK == 0 {
		c.Memory.TopK = 4
	}
	if c.History.MaxTurns == 0 {
		c.History.MaxTurns = 20
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

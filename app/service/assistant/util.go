package assistant

import (
	"net/http"
	"time"

	"studymate/app/config"

	"github.com/sashabaranov/go-openai"
)

func createClient(cfg config.LLM) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.Token)

	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: 30 * time.Second,
	}

	return openai.NewClientWithConfig(clientConfig)
}

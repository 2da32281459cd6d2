package llm

import (
	"context"
	"fmt"
	"time"
)

// Settings selects and configures a Provider.
type Settings struct {
	Provider string
	Endpoint string
	Model    string
	Region   string
	Timeout  time.Duration
}

// NewProvider creates the Provider named by s.Provider.
func NewProvider(ctx context.Context, s Settings) (Provider, error) {
	switch s.Provider {
	case "ollama", "":
		if s.Endpoint == "" {
			return nil, fmt.Errorf("ollama endpoint is required")
		}
		return NewOllama(s.Endpoint, s.Model, s.Timeout), nil
	case "bedrock":
		return NewBedrock(ctx, s.Region, s.Model, s.Timeout)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", s.Provider)
	}
}

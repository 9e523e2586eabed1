package boot

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env    string `env:"ENV,default=dev"`
	Server struct {
		Port        string `env:"PORT,default=8080"`
		MetricsPort string `env:"METRICS_PORT,default=8081"`
	}
	ChatPro struct {
		APIURL     string `env:"CHATPRO_API_URL,default=https://v5.chatpro.com.br/"`
		InstanceID string `env:"CHATPRO_INSTANCE_ID"`
		APIToken   string `env:"CHATPRO_API_TOKEN"`
	}
	ConversationStore string `env:"CONVERSATION_STORE,default=memory"`
}

func Load() (*Config, error) {
	config := &Config{}
	if err := envconfig.Process(context.Background(), config); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "dev"
}

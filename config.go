package shellsense

import "time"

type ModelConfig struct {
	AccountID       string `env:"ACCOUNT_ID,required"`
	APIToken        string `env:"API_TOKEN,required"`
	ModelName       string `env:"MODEL_NAME,default=@hf/nousresearch/hermes-2-pro-mistral-7b"`
	FriendlyModel   string `env:"FRIENDLY_RESPONSE_MODEL,default=@cf/meta/llama-3.1-8b-instruct"`
	CloudflareBase  string `env:"CLOUDFLARE_API_BASE,default=https://api.cloudflare.com/client/v4/accounts"`
}

type AgentConfig struct {
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT,default=60s"`
	ToolTimeout    time.Duration `env:"TOOL_TIMEOUT,default=30s"`
	RefineAnswers  bool          `env:"REFINE_ANSWERS,default=true"`
	SlackWebhook   string        `env:"SLACK_WEBHOOK_URL,default="`
	SlackChannel   string        `env:"SLACK_CHANNEL,default=#general"`
	DispatchLogDir string        `env:"DISPATCH_LOG_DIR,default=./logs"`
}

type BedrockConfig struct {
	ModelID     string  `env:"BEDROCK_MODEL_ID,default="`
	MaxTokens   int32   `env:"MAX_TOKENS,default=1024"`
	Temperature float32 `env:"TEMPERATURE,default=0.2"`
	TopP        float32 `env:"TOP_P,default=0.9"`
}

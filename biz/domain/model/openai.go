package model

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/joulaa-platform/joulaa-core-api/biz/infra/config"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/util/httpx"
)

const (
	GPT4o     = "gpt-4o"
	GPT4oMini = "gpt-4o-mini"
)

func init() {
	RegisterModel(GPT4o, NewOpenAIModel)
	RegisterModel(GPT4oMini, NewOpenAIModel)
}

func NewOpenAIModel(ctx context.Context, name, _ string) (einomodel.ToolCallingChatModel, error) {
	c := config.GetConfig()
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:     c.OpenAI.APIKey,
		BaseURL:    c.OpenAI.BaseURL,
		Model:      name,
		HTTPClient: httpx.GetClient(),
	})
}

package model

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/ark"
	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/joulaa-platform/joulaa-core-api/biz/infra/config"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/util/httpx"
)

const (
	DoubaoPro  = "doubao-1-5-pro-32k-250115"
	DoubaoLite = "doubao-1-5-lite-32k-250115"
)

func init() {
	RegisterModel(DoubaoPro, NewArkModel)
	RegisterModel(DoubaoLite, NewArkModel)
}

func NewArkModel(ctx context.Context, name, _ string) (einomodel.ToolCallingChatModel, error) {
	c := config.GetConfig()
	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		APIKey:     c.ARK.APIKey,
		Model:      name,
		HTTPClient: httpx.GetClient(),
	})
}

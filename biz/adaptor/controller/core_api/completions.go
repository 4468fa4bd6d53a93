package core_api

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/joulaa-platform/joulaa-core-api/biz/adaptor"
	"github.com/joulaa-platform/joulaa-core-api/biz/application/dto/core_api"
	"github.com/joulaa-platform/joulaa-core-api/provider"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

// Completions HTTP回退的对话补全
// @router /chat/completions [POST]
func Completions(ctx context.Context, c *app.RequestContext) {
	var req core_api.CompletionsReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, errorx.WrapByCode(err, errno.ParamErrCode))
		return
	}
	resp, err := provider.Get().CompletionsService.Completions(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

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

// PresignAttach 附件直传预签名
// @router /attach/presign [POST]
func PresignAttach(ctx context.Context, c *app.RequestContext) {
	var req core_api.PresignAttachReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, errorx.WrapByCode(err, errno.ParamErrCode))
		return
	}
	resp, err := provider.Get().AttachService.PresignAttach(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

package core_api

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/joulaa-platform/joulaa-core-api/biz/adaptor"
	"github.com/joulaa-platform/joulaa-core-api/provider"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/pkg/logs"
	"github.com/joulaa-platform/joulaa-core-api/pkg/wsx"
)

// Chat 实时对话
// @router /ws/chat [GET]
func Chat(ctx context.Context, c *app.RequestContext) {
	ctx = adaptor.InjectContext(ctx, c)
	if err := wsx.UpgradeWs(ctx, c, provider.Get().ChatService.Chat); err != nil {
		logs.Errorf("[controller] [Chat] websocket upgrade error: %s", errorx.ErrorWithoutStack(err))
	}
}

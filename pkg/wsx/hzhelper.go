package wsx

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	hzws "github.com/hertz-contrib/websocket"
)

var upgrader = hzws.HertzUpgrader{
	CheckOrigin: func(ctx *app.RequestContext) bool { return true },
}

// UpgradeWs 将hertz请求升级为websocket, 升级成功后移交handler
// handler返回即断开连接
func UpgradeWs(ctx context.Context, c *app.RequestContext, handler func(ctx context.Context, cli *Client)) error {
	return upgrader.Upgrade(c, func(conn *hzws.Conn) {
		handler(ctx, NewClient(conn))
	})
}

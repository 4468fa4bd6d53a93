package service

import (
	"context"

	"github.com/google/wire"

	"github.com/joulaa-platform/joulaa-core-api/biz/adaptor"
	"github.com/joulaa-platform/joulaa-core-api/biz/domain/relay"
	"github.com/joulaa-platform/joulaa-core-api/biz/domain/session"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/config"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/pkg/logs"
	"github.com/joulaa-platform/joulaa-core-api/pkg/safego"
	"github.com/joulaa-platform/joulaa-core-api/pkg/wsx"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

type IChatService interface {
	Chat(ctx context.Context, cli *wsx.Client)
}

// ChatService websocket会话入口
type ChatService struct {
	Conf        *config.Config
	Registry    *session.Registry
	Coordinator *relay.Coordinator
}

var ChatServiceSet = wire.NewSet(
	wire.Struct(new(ChatService), "*"),
	wire.Bind(new(IChatService), new(*ChatService)),
)

// Chat websocket主循环
// 认证失败发error帧后断开; 成功则注册会话, 下发connected, 进入读循环
// 读循环串行解析信封, 每轮生成在独立协程中执行, cancel帧不受在途轮次阻塞
func (s *ChatService) Chat(ctx context.Context, cli *wsx.Client) {
	uid, orgId, err := adaptor.ExtractUserMeta(ctx)
	if err != nil {
		s.reject(cli, errorx.WrapByCode(err, errno.UnAuthErrCode))
		return
	}

	sess := s.Registry.Register(ctx, uid, cli)
	defer s.Registry.Unregister(sess.Id)

	logs.CtxInfof(ctx, "[chat] session online, sid=%s uid=%s", sess.Id, uid)
	s.Registry.SendTo(sess.Id, adaptor.Connected(sess.Id))

	sink := &wsSink{registry: s.Registry, uid: uid}
	for {
		data, err := cli.ReadBytes()
		if err != nil {
			if !wsx.IsNormal(err) {
				logs.CtxErrorf(ctx, "[chat] read err:%s", errorx.ErrorWithoutStack(err))
			}
			return
		}

		in, err := adaptor.DecodeInbound(data)
		if err != nil {
			s.Registry.SendTo(sess.Id, adaptor.ErrEnvelope("", err))
			continue
		}

		switch in.Type {
		case adaptor.InboundSendMessage:
			t := &relay.Turn{
				UserId:         uid,
				OrgId:          orgId,
				SessionId:      sess.Id,
				ConversationId: in.ConversationId,
				AgentId:        in.AgentId,
				Content:        in.Message,
			}
			safego.Go(ctx, func() {
				if _, err := s.Coordinator.Submit(ctx, t, sink); err != nil {
					logs.CtxErrorf(ctx, "[chat] turn err:%s", errorx.ErrorWithoutStack(err))
				}
			})
		case adaptor.InboundCancel:
			s.Coordinator.Cancel(in.ConversationId, uid)
		}
	}
}

func (s *ChatService) reject(cli *wsx.Client, err error) {
	if data, e := adaptor.EncodeOutbound(adaptor.ErrEnvelope("", err)); e == nil {
		_ = cli.Write(wsx.TextMessage, data)
	}
	_ = cli.Close()
}

// wsSink 把一轮生成的下行帧扇出到该用户的所有在线连接
type wsSink struct {
	registry *session.Registry
	uid      string
}

func (s *wsSink) Chunk(cid string, ord int64, delta string) {
	s.registry.Send(s.uid, adaptor.MessageChunk(cid, ord, delta))
}

func (s *wsSink) Complete(cid, mid, status string) {
	s.registry.Send(s.uid, adaptor.MessageComplete(cid, mid, status))
}

func (s *wsSink) Error(cid string, err error) {
	s.registry.Send(s.uid, adaptor.ErrEnvelope(cid, err))
}

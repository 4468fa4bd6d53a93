package service

import (
	"context"

	"github.com/google/wire"

	"github.com/joulaa-platform/joulaa-core-api/biz/adaptor"
	"github.com/joulaa-platform/joulaa-core-api/biz/application/dto/core_api"
	dm "github.com/joulaa-platform/joulaa-core-api/biz/domain/msg"
	"github.com/joulaa-platform/joulaa-core-api/biz/domain/relay"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/util"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/pkg/logs"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

type ICompletionsService interface {
	Completions(ctx context.Context, req *core_api.CompletionsReq) (*core_api.CompletionsResp, error)
}

// CompletionsService websocket不可用时的HTTP回退
// 走同一个协调器, 单飞/序号/落库语义与websocket路径完全一致, 只是不下发增量
type CompletionsService struct {
	Coordinator *relay.Coordinator
}

var CompletionsServiceSet = wire.NewSet(
	wire.Struct(new(CompletionsService), "*"),
	wire.Bind(new(ICompletionsService), new(*CompletionsService)),
)

func (s *CompletionsService) Completions(ctx context.Context, req *core_api.CompletionsReq) (*core_api.CompletionsResp, error) {
	uid, orgId, err := adaptor.ExtractUserMeta(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}
	if req.Message == "" {
		return nil, errorx.NewWithMsg(errno.ParamErrCode, "message不能为空")
	}

	res, err := s.Coordinator.Submit(ctx, &relay.Turn{
		UserId:         uid,
		OrgId:          orgId,
		ConversationId: req.ConversationId,
		AgentId:        req.AgentId,
		Content:        req.Message,
	}, relay.NopSink{})
	if err != nil {
		logs.Errorf("completions error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.CompletionsErrCode)
	}

	return &core_api.CompletionsResp{
		Resp:           util.Success(),
		ConversationId: res.Conversation.ConversationId.Hex(),
		Message:        dm.ToDTOOne(res.AssistantMsg),
	}, nil
}

package service

import (
	"context"

	"github.com/google/wire"

	"github.com/joulaa-platform/joulaa-core-api/biz/adaptor"
	"github.com/joulaa-platform/joulaa-core-api/biz/application/dto/core_api"
	dm "github.com/joulaa-platform/joulaa-core-api/biz/domain/msg"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/mapper/conversation"
	mmsg "github.com/joulaa-platform/joulaa-core-api/biz/infra/mapper/message"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/util"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/pkg/logs"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

type IConversationService interface {
	CreateConversation(ctx context.Context, req *core_api.CreateConversationReq) (*core_api.CreateConversationResp, error)
	ListConversation(ctx context.Context, req *core_api.ListConversationReq) (*core_api.ListConversationResp, error)
	GetConversation(ctx context.Context, req *core_api.GetConversationReq) (*core_api.GetConversationResp, error)
	RenameConversation(ctx context.Context, req *core_api.RenameConversationReq) (*core_api.RenameConversationResp, error)
	ArchiveConversation(ctx context.Context, req *core_api.ArchiveConversationReq) (*core_api.ArchiveConversationResp, error)
	DeleteConversation(ctx context.Context, req *core_api.DeleteConversationReq) (*core_api.DeleteConversationResp, error)
	SearchConversation(ctx context.Context, req *core_api.SearchConversationReq) (*core_api.SearchConversationResp, error)
}

type ConversationService struct {
	ConversationMapper conversation.MongoMapper
	MessageMapper      mmsg.MongoMapper
}

var ConversationServiceSet = wire.NewSet(
	wire.Struct(new(ConversationService), "*"),
	wire.Bind(new(IConversationService), new(*ConversationService)),
)

func (s *ConversationService) CreateConversation(ctx context.Context, req *core_api.CreateConversationReq) (*core_api.CreateConversationResp, error) {
	// 鉴权
	uid, orgId, err := adaptor.ExtractUserMeta(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	// 调用mapper创建对话
	c, err := s.ConversationMapper.CreateNewConversation(ctx, uid, orgId, req.AgentId)
	if err != nil {
		logs.Errorf("create conversation error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationCreateErrCode)
	}

	return &core_api.CreateConversationResp{Resp: util.Success(), ConversationId: c.ConversationId.Hex()}, nil
}

func (s *ConversationService) ListConversation(ctx context.Context, req *core_api.ListConversationReq) (*core_api.ListConversationResp, error) {
	// 鉴权
	uid, err := adaptor.ExtractUserId(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	cs, hasMore, err := s.ConversationMapper.ListConversations(ctx, uid, req.GetPage())
	if err != nil {
		logs.Errorf("list conversation error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationListErrCode)
	}

	resp := &core_api.ListConversationResp{Resp: util.Success(), Conversations: toConversationItems(cs), HasMore: hasMore}
	if len(cs) > 0 {
		resp.Cursor = cs[len(cs)-1].ConversationId.Hex()
	}
	return resp, nil
}

func (s *ConversationService) GetConversation(ctx context.Context, req *core_api.GetConversationReq) (*core_api.GetConversationResp, error) {
	// 鉴权, 只有归属者能看到消息
	uid, err := adaptor.ExtractUserId(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}
	if _, err = s.ConversationMapper.FindConversation(ctx, uid, req.ConversationId); err != nil {
		return nil, err
	}

	msgs, hasMore, err := s.MessageMapper.ListMessage(ctx, req.ConversationId, req.GetPage())
	if err != nil {
		logs.Errorf("get conversation messages error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationGetErrCode)
	}

	resp := &core_api.GetConversationResp{Resp: util.Success(), Messages: dm.ToDTO(msgs), HasMore: hasMore}
	if len(msgs) > 0 {
		resp.Cursor = msgs[len(msgs)-1].MessageId.Hex()
	}
	return resp, nil
}

func (s *ConversationService) RenameConversation(ctx context.Context, req *core_api.RenameConversationReq) (*core_api.RenameConversationResp, error) {
	// 鉴权
	uid, err := adaptor.ExtractUserId(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}
	if req.Brief == "" {
		return nil, errorx.NewWithMsg(errno.ParamErrCode, "brief不能为空")
	}

	if err = s.ConversationMapper.UpdateConversationBrief(ctx, uid, req.ConversationId, req.Brief); err != nil {
		logs.Errorf("update conversation brief error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationRenameErrCode)
	}
	return &core_api.RenameConversationResp{Resp: util.Success()}, nil
}

func (s *ConversationService) ArchiveConversation(ctx context.Context, req *core_api.ArchiveConversationReq) (*core_api.ArchiveConversationResp, error) {
	// 鉴权
	uid, err := adaptor.ExtractUserId(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	if err = s.ConversationMapper.ArchiveConversation(ctx, uid, req.ConversationId); err != nil {
		logs.Errorf("archive conversation error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationArchiveErrCode)
	}
	return &core_api.ArchiveConversationResp{Resp: util.Success()}, nil
}

func (s *ConversationService) DeleteConversation(ctx context.Context, req *core_api.DeleteConversationReq) (*core_api.DeleteConversationResp, error) {
	uid, err := adaptor.ExtractUserId(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}
	if err = s.ConversationMapper.DeleteConversation(ctx, uid, req.ConversationId); err != nil {
		logs.Errorf("delete conversation error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationDeleteErrCode)
	}
	return &core_api.DeleteConversationResp{Resp: util.Success()}, nil
}

func (s *ConversationService) SearchConversation(ctx context.Context, req *core_api.SearchConversationReq) (*core_api.SearchConversationResp, error) {
	// 鉴权
	uid, err := adaptor.ExtractUserId(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	cs, hasMore, err := s.ConversationMapper.SearchConversations(ctx, uid, req.Key, req.GetPage())
	if err != nil {
		logs.Errorf("search conversation error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationSearchErrCode)
	}

	resp := &core_api.SearchConversationResp{Resp: util.Success(), Conversations: toConversationItems(cs), HasMore: hasMore}
	if len(cs) > 0 {
		resp.Cursor = cs[len(cs)-1].ConversationId.Hex()
	}
	return resp, nil
}

func toConversationItems(cs []*conversation.Conversation) []*core_api.Conversation {
	items := make([]*core_api.Conversation, 0, len(cs))
	for _, c := range cs {
		item := &core_api.Conversation{
			ConversationId: c.ConversationId.Hex(),
			Brief:          c.Brief,
			Status:         int32(c.Status),
			CreateTime:     c.CreateTime.Unix(),
			UpdateTime:     c.UpdateTime.Unix(),
		}
		if !c.AgentId.IsZero() {
			item.AgentId = c.AgentId.Hex()
		}
		items = append(items, item)
	}
	return items
}

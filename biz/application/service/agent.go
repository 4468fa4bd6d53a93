package service

import (
	"context"

	"github.com/google/wire"

	"github.com/joulaa-platform/joulaa-core-api/biz/adaptor"
	"github.com/joulaa-platform/joulaa-core-api/biz/application/dto/core_api"
	"github.com/joulaa-platform/joulaa-core-api/biz/domain/model"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/config"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/cst"
	agentmapper "github.com/joulaa-platform/joulaa-core-api/biz/infra/mapper/agent"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/util"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/pkg/logs"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

type IAgentService interface {
	CreateAgent(ctx context.Context, req *core_api.CreateAgentReq) (*core_api.CreateAgentResp, error)
	UpdateAgent(ctx context.Context, req *core_api.UpdateAgentReq) (*core_api.UpdateAgentResp, error)
	GetAgent(ctx context.Context, req *core_api.GetAgentReq) (*core_api.GetAgentResp, error)
	ListAgent(ctx context.Context, req *core_api.ListAgentReq) (*core_api.ListAgentResp, error)
	DeleteAgent(ctx context.Context, req *core_api.DeleteAgentReq) (*core_api.DeleteAgentResp, error)
}

type AgentService struct {
	Conf        *config.Config
	AgentMapper agentmapper.MongoMapper
}

var AgentServiceSet = wire.NewSet(
	wire.Struct(new(AgentService), "*"),
	wire.Bind(new(IAgentService), new(*AgentService)),
)

func (s *AgentService) CreateAgent(ctx context.Context, req *core_api.CreateAgentReq) (*core_api.CreateAgentResp, error) {
	// 鉴权
	uid, orgId, err := adaptor.ExtractUserMeta(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}
	if req.Name == "" {
		return nil, errorx.NewWithMsg(errno.ParamErrCode, "name不能为空")
	}

	a, err := s.build(uid, orgId, req)
	if err != nil {
		return nil, err
	}
	if err = s.AgentMapper.Insert(ctx, a); err != nil {
		logs.Errorf("create agent error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.AgentCreateErrCode)
	}
	return &core_api.CreateAgentResp{Resp: util.Success(), AgentId: a.AgentId.Hex()}, nil
}

func (s *AgentService) UpdateAgent(ctx context.Context, req *core_api.UpdateAgentReq) (*core_api.UpdateAgentResp, error) {
	// 鉴权
	uid, orgId, err := adaptor.ExtractUserMeta(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	a, err := s.build(uid, orgId, &core_api.CreateAgentReq{
		Name:         req.Name,
		Description:  req.Description,
		Model:        req.Model,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
		Instructions: req.Instructions,
		Visibility:   req.Visibility,
	})
	if err != nil {
		return nil, err
	}
	if a.AgentId, err = util.ObjectIDFromHex(req.AgentId); err != nil {
		return nil, err
	}
	a.Active = req.Active == nil || *req.Active

	if err = s.AgentMapper.Update(ctx, uid, a); err != nil {
		logs.Errorf("update agent error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.AgentUpdateErrCode)
	}
	return &core_api.UpdateAgentResp{Resp: util.Success()}, nil
}

func (s *AgentService) GetAgent(ctx context.Context, req *core_api.GetAgentReq) (*core_api.GetAgentResp, error) {
	// 鉴权
	uid, orgId, err := adaptor.ExtractUserMeta(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	a, err := s.AgentMapper.FindById(ctx, req.AgentId)
	if err != nil {
		return nil, err
	}
	// 私有的限属主和同组织成员
	if !a.AccessibleBy(uid, orgId) {
		return nil, errorx.New(errno.AgentForbiddenErrCode)
	}
	return &core_api.GetAgentResp{Resp: util.Success(), Agent: toAgentItem(a)}, nil
}

func (s *AgentService) ListAgent(ctx context.Context, req *core_api.ListAgentReq) (*core_api.ListAgentResp, error) {
	// 鉴权
	uid, orgId, err := adaptor.ExtractUserMeta(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	as, hasMore, err := s.AgentMapper.ListVisible(ctx, uid, orgId, req.GetPage())
	if err != nil {
		logs.Errorf("list agent error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.AgentListErrCode)
	}

	items := make([]*core_api.Agent, 0, len(as))
	for _, a := range as {
		items = append(items, toAgentItem(a))
	}
	return &core_api.ListAgentResp{Resp: util.Success(), Agents: items, HasMore: hasMore}, nil
}

func (s *AgentService) DeleteAgent(ctx context.Context, req *core_api.DeleteAgentReq) (*core_api.DeleteAgentResp, error) {
	uid, err := adaptor.ExtractUserId(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}
	if err = s.AgentMapper.Delete(ctx, uid, req.AgentId); err != nil {
		logs.Errorf("delete agent error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.AgentDeleteErrCode)
	}
	return &core_api.DeleteAgentResp{Resp: util.Success()}, nil
}

// build 校验并填充默认值, 模型必须是已注册的
func (s *AgentService) build(uid, orgId string, req *core_api.CreateAgentReq) (*agentmapper.Agent, error) {
	ouid, err := util.ObjectIDFromHex(uid)
	if err != nil {
		return nil, err
	}

	a := &agentmapper.Agent{
		OwnerId:      ouid,
		Name:         req.Name,
		Description:  req.Description,
		Model:        req.Model,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
		Instructions: req.Instructions,
		Visibility:   req.Visibility,
		Active:       true,
	}
	if orgId != "" { // 组织归属随创建者, 可为空
		if a.OrgId, err = util.ObjectIDFromHex(orgId); err != nil {
			return nil, err
		}
	}
	if a.Model == "" {
		a.Model = s.Conf.Stream.DefaultModel
	}
	if !model.Supported(a.Model) {
		return nil, errorx.New(errno.ModelNotSupportedErrCode)
	}
	if a.Temperature < 0 || a.Temperature > 2 {
		return nil, errorx.NewWithMsg(errno.ParamErrCode, "temperature取值应在[0, 2]")
	}
	if a.MaxTokens <= 0 {
		a.MaxTokens = s.Conf.Stream.DefaultMaxTokens
	}
	if a.Visibility != cst.AgentPublic && a.Visibility != cst.AgentPrivate {
		return nil, errorx.NewWithMsg(errno.ParamErrCode, "非法的visibility")
	}
	return a, nil
}

func toAgentItem(a *agentmapper.Agent) *core_api.Agent {
	return &core_api.Agent{
		AgentId:      a.AgentId.Hex(),
		Name:         a.Name,
		Description:  a.Description,
		Model:        a.Model,
		Temperature:  a.Temperature,
		MaxTokens:    a.MaxTokens,
		Instructions: a.Instructions,
		Visibility:   a.Visibility,
		Active:       a.Active,
		CreateTime:   a.CreateTime.Unix(),
		UpdateTime:   a.UpdateTime.Unix(),
	}
}

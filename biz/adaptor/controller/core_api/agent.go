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

// CreateAgent 创建智能体
// @router /agent/create [POST]
func CreateAgent(ctx context.Context, c *app.RequestContext) {
	var req core_api.CreateAgentReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, errorx.WrapByCode(err, errno.ParamErrCode))
		return
	}
	resp, err := provider.Get().AgentService.CreateAgent(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// UpdateAgent 更新智能体
// @router /agent/update [POST]
func UpdateAgent(ctx context.Context, c *app.RequestContext) {
	var req core_api.UpdateAgentReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, errorx.WrapByCode(err, errno.ParamErrCode))
		return
	}
	resp, err := provider.Get().AgentService.UpdateAgent(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// GetAgent 智能体详情
// @router /agent/get [GET]
func GetAgent(ctx context.Context, c *app.RequestContext) {
	var req core_api.GetAgentReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, errorx.WrapByCode(err, errno.ParamErrCode))
		return
	}
	resp, err := provider.Get().AgentService.GetAgent(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// ListAgent 智能体列表
// @router /agent/list [POST]
func ListAgent(ctx context.Context, c *app.RequestContext) {
	var req core_api.ListAgentReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, errorx.WrapByCode(err, errno.ParamErrCode))
		return
	}
	resp, err := provider.Get().AgentService.ListAgent(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// DeleteAgent 删除智能体
// @router /agent/delete [POST]
func DeleteAgent(ctx context.Context, c *app.RequestContext) {
	var req core_api.DeleteAgentReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, errorx.WrapByCode(err, errno.ParamErrCode))
		return
	}
	resp, err := provider.Get().AgentService.DeleteAgent(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

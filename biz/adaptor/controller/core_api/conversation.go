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

// CreateConversation 创建对话
// @router /conversation/create [POST]
func CreateConversation(ctx context.Context, c *app.RequestContext) {
	var req core_api.CreateConversationReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, errorx.WrapByCode(err, errno.ParamErrCode))
		return
	}
	resp, err := provider.Get().ConversationService.CreateConversation(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// ListConversation 对话列表
// @router /conversation/list [POST]
func ListConversation(ctx context.Context, c *app.RequestContext) {
	var req core_api.ListConversationReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, errorx.WrapByCode(err, errno.ParamErrCode))
		return
	}
	resp, err := provider.Get().ConversationService.ListConversation(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// GetConversation 对话消息记录
// @router /conversation/get [POST]
func GetConversation(ctx context.Context, c *app.RequestContext) {
	var req core_api.GetConversationReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, errorx.WrapByCode(err, errno.ParamErrCode))
		return
	}
	resp, err := provider.Get().ConversationService.GetConversation(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// RenameConversation 重命名对话
// @router /conversation/rename [POST]
func RenameConversation(ctx context.Context, c *app.RequestContext) {
	var req core_api.RenameConversationReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, errorx.WrapByCode(err, errno.ParamErrCode))
		return
	}
	resp, err := provider.Get().ConversationService.RenameConversation(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// ArchiveConversation 归档对话
// @router /conversation/archive [POST]
func ArchiveConversation(ctx context.Context, c *app.RequestContext) {
	var req core_api.ArchiveConversationReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, errorx.WrapByCode(err, errno.ParamErrCode))
		return
	}
	resp, err := provider.Get().ConversationService.ArchiveConversation(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// DeleteConversation 删除对话
// @router /conversation/delete [POST]
func DeleteConversation(ctx context.Context, c *app.RequestContext) {
	var req core_api.DeleteConversationReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, errorx.WrapByCode(err, errno.ParamErrCode))
		return
	}
	resp, err := provider.Get().ConversationService.DeleteConversation(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// SearchConversation 搜索对话
// @router /conversation/search [POST]
func SearchConversation(ctx context.Context, c *app.RequestContext) {
	var req core_api.SearchConversationReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, errorx.WrapByCode(err, errno.ParamErrCode))
		return
	}
	resp, err := provider.Get().ConversationService.SearchConversation(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

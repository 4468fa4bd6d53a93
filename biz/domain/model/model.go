package model

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

type getModelFunc func(ctx context.Context, name, uid string) (model.ToolCallingChatModel, error)

var models = map[string]getModelFunc{}

// RegisterModel 注册模型工厂, 各provider在init中调用
func RegisterModel(name string, f getModelFunc) {
	models[name] = f
}

// getModel 获取模型
func getModel(ctx context.Context, name, uid string) (model.ToolCallingChatModel, error) {
	f, ok := models[name]
	if !ok {
		return nil, errorx.New(errno.ModelNotSupportedErrCode)
	}
	return f(ctx, name, uid)
}

// Supported 模型是否已注册
func Supported(name string) bool {
	_, ok := models[name]
	return ok
}

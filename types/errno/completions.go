package errno

import (
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx/code"
)

const (
	CompletionsErrCode       = 70001
	ConversationBusyErrCode  = 70002
	ProviderErrCode          = 70003
	ProviderTimeoutErrCode   = 70004
	MessagePersistErrCode    = 70005
	ModelNotSupportedErrCode = 70006
)

func init() {
	code.Register(
		CompletionsErrCode,
		"对话生成失败",
		code.WithAffectStability(false),
	)
	code.Register(
		ConversationBusyErrCode,
		"当前对话正在生成回复",
		code.WithAffectStability(false),
	)
	code.Register(
		ProviderErrCode,
		"模型服务调用失败",
		code.WithAffectStability(true),
	)
	code.Register(
		ProviderTimeoutErrCode,
		"模型服务响应超时",
		code.WithAffectStability(true),
	)
	code.Register(
		MessagePersistErrCode,
		"消息持久化失败",
		code.WithAffectStability(true),
	)
	code.Register(
		ModelNotSupportedErrCode,
		"不支持的模型",
		code.WithAffectStability(false),
	)
}

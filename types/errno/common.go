package errno

import (
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx/code"
)

const (
	UnAuthErrCode      = 1000
	UnImplementErrCode = 888
	OIDErrCode         = 777
	InterruptCode      = 666
	ParamErrCode       = 555
)

func init() {
	code.Register(
		UnAuthErrCode,
		"身份认证失败",
		code.WithAffectStability(false),
	)
	code.Register(
		UnImplementErrCode,
		"功能暂未实现",
		code.WithAffectStability(true),
	)
	code.Register(
		OIDErrCode,
		"标识符格式错误",
		code.WithAffectStability(false),
	)
	code.Register(
		InterruptCode,
		"生成已中断",
		code.WithAffectStability(false),
	)
	code.Register(
		ParamErrCode,
		"请求参数错误",
		code.WithAffectStability(false),
	)
}

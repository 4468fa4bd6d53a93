package logs

// logs 是对go-zero logx的薄封装, 统一日志出口
// 最佳实践: 业务日志带 [component] 前缀, 链路内日志使用Ctx系列

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"
)

func Infof(format string, v ...any) {
	logx.Infof(format, v...)
}

func Errorf(format string, v ...any) {
	logx.Errorf(format, v...)
}

func CtxInfof(ctx context.Context, format string, v ...any) {
	logx.WithContext(ctx).Infof(format, v...)
}

func CtxErrorf(ctx context.Context, format string, v ...any) {
	logx.WithContext(ctx).Errorf(format, v...)
}

// CondErrorf 条件成立时记录错误日志, 用于过滤io.EOF这类正常结束
func CondErrorf(cond bool, format string, v ...any) {
	if cond {
		logx.Errorf(format, v...)
	}
}

package errorx

// errorx 是HTTP服务的业务异常
// 若返回errorx给前端, 则HTTP状态码应该是200, 且响应体为{code, msg}
// 最佳实践:
// - 业务处理链路的末端使用errorx, PostProcess处理后给出用户友好的响应
// - 错误码在 types/errno 中预注册
// - 除却末端的errorx外, 其余的error照常处理

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx/code"
)

// IErrorx 业务异常的只读视图, 供adaptor层构造响应
type IErrorx interface {
	GetCode() int32
	GetMsg() string
}

// StatusError 携带错误码与捕获栈的业务异常
type StatusError struct {
	code  int32
	msg   string
	stack string
	cause error
}

var _ IErrorx = (*StatusError)(nil)

// New 根据注册的错误码创建业务异常
func New(c int32) error {
	return &StatusError{code: c, msg: code.Message(c), stack: string(debug.Stack())}
}

// NewWithMsg 使用自定义描述创建业务异常
func NewWithMsg(c int32, msg string) error {
	return &StatusError{code: c, msg: msg, stack: string(debug.Stack())}
}

// WrapByCode 将底层错误包装为带错误码的业务异常, err为nil时返回nil
func WrapByCode(err error, c int32) error {
	if err == nil {
		return nil
	}
	var se *StatusError
	if errors.As(err, &se) { // 已经是业务异常, 保留原始错误码
		return err
	}
	return &StatusError{code: c, msg: code.Message(c), stack: string(debug.Stack()), cause: err}
}

func (e *StatusError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("code=%d, msg=%s, cause=%v", e.code, e.msg, e.cause)
	}
	return fmt.Sprintf("code=%d, msg=%s", e.code, e.msg)
}

func (e *StatusError) Unwrap() error { return e.cause }

// GetCode 获取Code
func (e *StatusError) GetCode() int32 { return e.code }

// GetMsg 获取Msg
func (e *StatusError) GetMsg() string { return e.msg }

// Code 提取错误链中的业务错误码, 无则返回0
func Code(err error) int32 {
	var se *StatusError
	if errors.As(err, &se) {
		return se.code
	}
	return 0
}

// AsErrorx 提取错误链中的业务异常视图
func AsErrorx(err error, target *IErrorx) bool {
	var se *StatusError
	if errors.As(err, &se) {
		*target = se
		return true
	}
	return false
}

// Is 判断错误链中是否存在指定错误码
func Is(err error, c int32) bool {
	return Code(err) == c
}

// ErrorWithoutStack 返回不含栈信息的错误描述, 用于日志
func ErrorWithoutStack(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}

package code

// code 维护全局错误码注册表
// 各业务域在 types/errno 中通过init注册自己的错误码段

import (
	"fmt"
	"sync"
)

type definition struct {
	code            int32
	message         string
	affectStability bool
}

var (
	mu       sync.RWMutex
	registry = map[int32]*definition{}
)

type Option func(*definition)

// WithAffectStability 标记该错误是否影响服务稳定性指标
// 用户侧错误(如参数错误, 鉴权失败)应该为false
func WithAffectStability(affect bool) Option {
	return func(d *definition) {
		d.affectStability = affect
	}
}

// Register 注册一个错误码, 重复注册直接panic, 暴露启动期的冲突
func Register(code int32, message string, opts ...Option) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[code]; ok {
		panic(fmt.Sprintf("duplicate error code: %d", code))
	}
	d := &definition{code: code, message: message}
	for _, opt := range opts {
		opt(d)
	}
	registry[code] = d
}

// Message 获取错误码对应的描述, 未注册时返回空串
func Message(code int32) string {
	mu.RLock()
	defer mu.RUnlock()
	if d, ok := registry[code]; ok {
		return d.message
	}
	return ""
}

// AffectStability 该错误码是否影响稳定性
func AffectStability(code int32) bool {
	mu.RLock()
	defer mu.RUnlock()
	if d, ok := registry[code]; ok {
		return d.affectStability
	}
	return true
}

package session

import (
	"context"
	"sync"

	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joulaa-platform/joulaa-core-api/biz/adaptor"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/config"
	"github.com/joulaa-platform/joulaa-core-api/pkg/safego"
	"github.com/joulaa-platform/joulaa-core-api/pkg/wsx"
)

// Registry 在线连接注册表
// 同一用户允许多条连接, 下行帧对该用户的所有连接扇出
type Registry struct {
	conf *config.Config

	mu       sync.RWMutex
	sessions map[string]*Session            // sessionId -> session
	byUser   map[string]map[string]*Session // userId -> sessionId -> session

	onClose func(sessionId string)
}

var RegistrySet = wire.NewSet(NewRegistry)

func NewRegistry(conf *config.Config) *Registry {
	return &Registry{
		conf:     conf,
		sessions: make(map[string]*Session),
		byUser:   make(map[string]map[string]*Session),
	}
}

// SetCloseHook 连接摘除后回调, 用于取消该连接发起的在途生成
func (r *Registry) SetCloseHook(h func(sessionId string)) {
	r.onClose = h
}

// Register 新连接注册并启动写泵
func (r *Registry) Register(ctx context.Context, uid string, cli *wsx.Client) *Session {
	buf := r.conf.Stream.SessionBuffer
	if buf <= 0 {
		buf = 64
	}
	s := &Session{
		Id:     primitive.NewObjectID().Hex(),
		UserId: uid,
		cli:    cli,
		out:    make(chan *adaptor.Outbound, buf),
	}

	r.mu.Lock()
	r.sessions[s.Id] = s
	if r.byUser[uid] == nil {
		r.byUser[uid] = make(map[string]*Session)
	}
	r.byUser[uid][s.Id] = s
	r.mu.Unlock()

	safego.Go(ctx, func() { s.pump(ctx) })
	return s
}

// Unregister 连接断开, 从注册表摘除并触发关闭钩子
// 重复摘除是无害的no-op
func (r *Registry) Unregister(sid string) {
	r.mu.Lock()
	s := r.sessions[sid]
	if s != nil {
		delete(r.sessions, sid)
		if m := r.byUser[s.UserId]; m != nil {
			delete(m, sid)
			if len(m) == 0 {
				delete(r.byUser, s.UserId)
			}
		}
	}
	r.mu.Unlock()

	if s == nil {
		return
	}
	s.close()
	if r.onClose != nil {
		r.onClose(sid)
	}
}

// Send 发给该用户的所有在线连接
func (r *Registry) Send(uid string, o *adaptor.Outbound) {
	r.mu.RLock()
	ss := make([]*Session, 0, len(r.byUser[uid]))
	for _, s := range r.byUser[uid] {
		ss = append(ss, s)
	}
	r.mu.RUnlock()

	for _, s := range ss {
		s.push(o)
	}
}

// SendTo 只发给指定连接
func (r *Registry) SendTo(sid string, o *adaptor.Outbound) {
	r.mu.RLock()
	s := r.sessions[sid]
	r.mu.RUnlock()
	if s != nil {
		s.push(o)
	}
}

// Count 在线连接数
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

package session

import (
	"context"
	"sync"

	"github.com/joulaa-platform/joulaa-core-api/biz/adaptor"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/pkg/logs"
	"github.com/joulaa-platform/joulaa-core-api/pkg/wsx"
)

// Session 一条已认证的websocket连接
// 下行帧先进有界缓冲, 由独立的pump协程串行写出,
// 业务协程推帧永不阻塞
type Session struct {
	Id     string
	UserId string

	cli *wsx.Client
	out chan *adaptor.Outbound

	mu      sync.Mutex
	closed  bool
	pressed *adaptor.Outbound // 待补发的背压标记, 在被丢帧的原位置写出
}

// push 非阻塞入队
// 缓冲满说明消费端跟不上, 只丢最旧的一帧, 由背压标记占位;
// 连续溢出时标记合并, 每次溢出恰好丢一帧
func (s *Session) push(o *adaptor.Outbound) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.out <- o:
		return
	default:
	}

	select {
	case dropped := <-s.out:
		s.pressed = adaptor.Backpressure(dropped.ConversationId)
	default:
	}
	select {
	case s.out <- o:
	default:
	}
}

// pump 出站写循环, 连接断开或会话关闭后退出
func (s *Session) pump(ctx context.Context) {
	for o := range s.out {
		if m := s.takePressed(); m != nil && !s.write(ctx, m) {
			return
		}
		if !s.write(ctx, o) {
			return
		}
	}
}

func (s *Session) takePressed() *adaptor.Outbound {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.pressed
	s.pressed = nil
	return m
}

func (s *Session) write(ctx context.Context, o *adaptor.Outbound) bool {
	data, err := adaptor.EncodeOutbound(o)
	if err != nil {
		logs.CtxErrorf(ctx, "[session] encode outbound err:%s", errorx.ErrorWithoutStack(err))
		return true
	}
	if err = s.cli.Write(wsx.TextMessage, data); err != nil {
		logs.CondErrorf(!wsx.IsNormal(err), "[session] write err:%s", errorx.ErrorWithoutStack(err))
		return false
	}
	return true
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.out)
	_ = s.cli.Close()
}

package model

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// ErrAbandoned 流被消费方放弃
var ErrAbandoned = errors.New("chunk stream abandoned")

// Summary chunk流的终结统计
type Summary struct {
	PromptTokens     int32
	CompletionTokens int32
	TotalTokens      int32
	Truncated        bool
}

// ProviderError 模型服务错误
// Retryable标记该错误是否值得重试, 限流和5xx算, 鉴权和参数错误不算
type ProviderError struct {
	Retryable bool
	Reason    string
	cause     error
}

func (e *ProviderError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("provider: %s: %v", e.Reason, e.cause)
	}
	return "provider: " + e.Reason
}

func (e *ProviderError) Unwrap() error { return e.cause }

type streamItem struct {
	text string
	err  error
}

// ChunkStream 一次生成产出的增量序列, 只能消费一次, 不可重启
type ChunkStream struct {
	ch          chan streamItem
	done        chan struct{}
	abandonOnce sync.Once
	inactivity  time.Duration

	mu      sync.Mutex
	summary *Summary
}

// ChunkWriter 生产端句柄
type ChunkWriter struct {
	s         *ChunkStream
	closeOnce sync.Once
}

// NewChunkStream 构造一条chunk管道, 返回消费端和生产端
func NewChunkStream(inactivity time.Duration, buf int) (*ChunkStream, *ChunkWriter) {
	if inactivity <= 0 {
		inactivity = time.Minute
	}
	if buf < 0 {
		buf = 0
	}
	s := &ChunkStream{
		ch:         make(chan streamItem, buf),
		done:       make(chan struct{}),
		inactivity: inactivity,
	}
	return s, &ChunkWriter{s: s}
}

// Recv 取下一个增量
// 返回io.EOF表示正常终结, 此后Summary可用
// cancel触发时放弃剩余chunk并返回ErrAbandoned
// 两个chunk之间超过不活跃窗口按不可重试的超时处理
func (s *ChunkStream) Recv(cancel <-chan struct{}) (string, error) {
	timer := time.NewTimer(s.inactivity)
	defer timer.Stop()
	select {
	case it, ok := <-s.ch:
		if !ok {
			return "", io.EOF
		}
		if it.err != nil {
			return "", it.err
		}
		return it.text, nil
	case <-cancel:
		s.Abandon()
		return "", ErrAbandoned
	case <-timer.C:
		s.Abandon()
		return "", &ProviderError{Reason: "inactivity timeout"}
	}
}

// Abandon 放弃流, 之后生产端的Send会直接失败
func (s *ChunkStream) Abandon() {
	s.abandonOnce.Do(func() { close(s.done) })
}

// Summary 正常终结后返回统计, 其余情况返回nil
func (s *ChunkStream) Summary() *Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// Send 写入一个增量, 流已被放弃时返回false
func (w *ChunkWriter) Send(text string) bool {
	select {
	case w.s.ch <- streamItem{text: text}:
		return true
	case <-w.s.done:
		return false
	}
}

// Fail 以错误终结流
func (w *ChunkWriter) Fail(err error) {
	w.closeOnce.Do(func() {
		select {
		case w.s.ch <- streamItem{err: err}:
		case <-w.s.done:
		}
		close(w.s.ch)
	})
}

// Finish 正常终结流
func (w *ChunkWriter) Finish(sum *Summary) {
	w.closeOnce.Do(func() {
		w.s.mu.Lock()
		w.s.summary = sum
		w.s.mu.Unlock()
		close(w.s.ch)
	})
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joulaa-platform/joulaa-core-api/biz/adaptor"
	"github.com/joulaa-platform/joulaa-core-api/biz/domain/session"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/config"
	"github.com/joulaa-platform/joulaa-core-api/pkg/wsx"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	wrote  chan struct{}
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{wrote: make(chan struct{}, 64)}
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	c.frames = append(c.frames, append([]byte(nil), data...))
	c.mu.Unlock()
	c.wrote <- struct{}{}
	return nil
}

func (c *fakeConn) ReadMessage() (int, []byte, error)         { select {} }
func (c *fakeConn) WriteControl(int, []byte, time.Time) error { return nil }
func (c *fakeConn) ReadJSON(any) error                        { return nil }
func (c *fakeConn) WriteJSON(any) error                       { return nil }
func (c *fakeConn) SetPingHandler(func(string) error)         {}
func (c *fakeConn) SetCloseHandler(func(int, string) error)   {}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) lastFrame(t *testing.T) *adaptor.Outbound {
	t.Helper()
	select {
	case <-c.wrote:
	case <-time.After(time.Second):
		t.Fatal("no frame written")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.frames)
	var o adaptor.Outbound
	require.NoError(t, sonic.Unmarshal(c.frames[len(c.frames)-1], &o))
	return &o
}

func TestChatRejectsUnauthenticated(t *testing.T) {
	s := &ChatService{Conf: &config.Config{}}
	conn := newFakeConn()

	// ctx里没有hertz请求, 认证必然失败
	s.Chat(context.Background(), wsx.NewClient(conn))

	o := conn.lastFrame(t)
	assert.Equal(t, adaptor.OutboundError, o.Type)
	assert.EqualValues(t, errno.UnAuthErrCode, o.Code)
	conn.mu.Lock()
	assert.True(t, conn.closed)
	conn.mu.Unlock()
}

func TestWsSinkFanout(t *testing.T) {
	r := session.NewRegistry(&config.Config{Stream: config.Stream{SessionBuffer: 16}})
	conn := newFakeConn()
	uid := "user-1"
	sess := r.Register(context.Background(), uid, wsx.NewClient(conn))
	defer r.Unregister(sess.Id)

	sink := &wsSink{registry: r, uid: uid}

	sink.Chunk("cid-1", 0, "增量")
	o := conn.lastFrame(t)
	assert.Equal(t, adaptor.OutboundMessageChunk, o.Type)
	assert.Equal(t, "增量", o.Chunk)

	sink.Complete("cid-1", "mid-1", "complete")
	o = conn.lastFrame(t)
	assert.Equal(t, adaptor.OutboundMessageComplete, o.Type)
	assert.Equal(t, "complete", o.Status)

	sink.Error("cid-1", errors.New("boom"))
	o = conn.lastFrame(t)
	assert.Equal(t, adaptor.OutboundError, o.Type)
	assert.EqualValues(t, errno.CompletionsErrCode, o.Code)
}

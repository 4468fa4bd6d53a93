package wsx

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	hzws "github.com/hertz-contrib/websocket"
	"github.com/joulaa-platform/joulaa-core-api/pkg/logs"
)

// Client 是对websocket连接的工具类, 封装了常见读写操作, 简化了异常处理
// 最佳实践是单线程读, 所以此处不设读锁, 若并发读, 需自行维护读锁
// 一个client和一个conn此处设计为一一对应, 不支持更改client的conn
type Client struct {
	// 写锁
	mu   sync.Mutex
	conn Conn
	// 连接是否关闭
	closed bool
}

// NewClient 生成管理传入连接的client
func NewClient(conn Conn) *Client {
	return &Client{conn: conn}
}

// NewClientWithDial 主动建立连接并包装为client
func NewClientWithDial(ctx context.Context, url string, header http.Header) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// closeCode 提取关闭帧状态码, 兼容两种websocket实现
func closeCode(err error) (int, bool) {
	var he *hzws.CloseError
	if errors.As(err, &he) {
		return he.Code, true
	}
	var ge *websocket.CloseError
	if errors.As(err, &ge) {
		return ge.Code, true
	}
	return 0, false
}

// classifyErr 将错误归类
func (ws *Client) classifyErr(err error) error {
	if err == nil {
		return nil
	}
	code, ok := closeCode(err)
	if !ok {
		return err
	}
	ws.closed = true
	switch code {
	case CloseNormalClosure, CloseGoingAway, CloseNoStatusReceived:
		return NormalCloseErr
	default:
		// 为了避免内部错误被隐藏, 此处日志记录错误原因
		logs.Errorf("[wsx] close error: %v", err)
		return AbnormalCloseErr
	}
}

// Read 读取一条消息, 同时返回错误
func (ws *Client) Read() (mt int, data []byte, err error) {
	mt, data, err = ws.conn.ReadMessage()
	return mt, data, ws.classifyErr(err)
}

// ReadBytes 读取一条二进制消息
func (ws *Client) ReadBytes() (data []byte, err error) {
	_, data, err = ws.Read()
	return data, err
}

// ReadString 读取一条文本消息
func (ws *Client) ReadString() (string, error) {
	_, data, err := ws.Read()
	return string(data), err
}

// ReadJSON 读取一个JSON对象, 并写入指定位置
func (ws *Client) ReadJSON(obj any) (err error) {
	return ws.classifyErr(ws.conn.ReadJSON(obj))
}

// Write 写入指定类型消息
func (ws *Client) Write(mt int, data []byte) (err error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	err = ws.conn.WriteMessage(mt, data)
	return ws.classifyErr(err)
}

// WriteBytes 写入二进制消息
func (ws *Client) WriteBytes(data []byte) (err error) {
	return ws.Write(BinaryMessage, data)
}

// WriteString 写入字符串消息
func (ws *Client) WriteString(data string) (err error) {
	return ws.Write(TextMessage, []byte(data))
}

// WriteJSON 写入序列化为JSON的对象
func (ws *Client) WriteJSON(obj any) (err error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.classifyErr(ws.conn.WriteJSON(obj))
}

// Ping 写入心跳消息
func (ws *Client) Ping(data []byte) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.conn.WriteControl(PingMessage, data, time.Now().Add(DefaultTimeout))
}

// Pong 写入Pong消息
func (ws *Client) Pong(data []byte) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.conn.WriteControl(PongMessage, data, time.Now().Add(DefaultTimeout))
}

func (ws *Client) SetPingHandler(h func(appData string) error) {
	ws.conn.SetPingHandler(h)
}

func (ws *Client) ControlClose(data []byte) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.conn.WriteControl(CloseMessage, data, time.Now().Add(DefaultTimeout))
}

func (ws *Client) SetCloseHandler(h func(code int, text string) error) {
	ws.conn.SetCloseHandler(h)
}

// Close 关闭连接
func (ws *Client) Close() error {
	if !ws.closed {
		if err := ws.conn.WriteControl(CloseMessage, NormalCloseMsg, time.Now().Add(DefaultTimeout)); err != nil {
			logs.Errorf("[wsx] send close message error: %v", err)
		}
		ws.closed = true
		return ws.conn.Close()
	}
	return nil
}

func (ws *Client) IsClosed() bool {
	return ws.closed
}

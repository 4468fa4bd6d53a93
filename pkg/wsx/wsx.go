package wsx

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

// websocket消息类型与关闭码, 与RFC6455一致, hertz-contrib与gorilla取值相同
const (
	TextMessage   = 1
	BinaryMessage = 2
	CloseMessage  = 8
	PingMessage   = 9
	PongMessage   = 10

	CloseNormalClosure    = 1000
	CloseGoingAway        = 1001
	CloseNoStatusReceived = 1005
)

const DefaultTimeout = 5 * time.Second

var (
	// NormalCloseErr 对端正常关闭连接
	NormalCloseErr = errors.New("websocket normal close")
	// AbnormalCloseErr 对端异常关闭连接
	AbnormalCloseErr = errors.New("websocket abnormal close")

	// NormalCloseMsg 正常关闭帧的负载
	NormalCloseMsg = websocket.FormatCloseMessage(CloseNormalClosure, "")
)

func IsNormal(err error) bool {
	return err == nil || errors.Is(err, NormalCloseErr)
}

// Conn 抽象hertz-contrib/websocket与gorilla/websocket共有的连接操作
// 服务端升级得到前者, Dial得到后者, Client对两者一视同仁
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	ReadJSON(v any) error
	WriteJSON(v any) error
	SetPingHandler(h func(appData string) error)
	SetCloseHandler(h func(code int, text string) error)
	Close() error
}

package adaptor

import (
	"github.com/bytedance/sonic"

	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

/* websocket信封, 入站和出站各是一个闭合集合 */

const (
	InboundSendMessage = "send_message"
	InboundCancel      = "cancel"

	OutboundConnected       = "connected"
	OutboundMessageChunk    = "message_chunk"
	OutboundMessageComplete = "message_complete"
	OutboundError           = "error"
	OutboundBackpressure    = "backpressure"
)

// Inbound 客户端上行信封
type Inbound struct {
	Type           string `json:"type"`
	ConversationId string `json:"conversation_id,omitempty"`
	AgentId        string `json:"agent_id,omitempty"`
	Message        string `json:"message,omitempty"`
}

// DecodeInbound 解析上行信封
// 未知type或缺字段按参数错误处理, 不断连接
func DecodeInbound(data []byte) (*Inbound, error) {
	var in Inbound
	if err := sonic.Unmarshal(data, &in); err != nil {
		return nil, errorx.WrapByCode(err, errno.ParamErrCode)
	}
	switch in.Type {
	case InboundSendMessage:
		if in.Message == "" {
			return nil, errorx.NewWithMsg(errno.ParamErrCode, "message不能为空")
		}
	case InboundCancel:
		if in.ConversationId == "" {
			return nil, errorx.NewWithMsg(errno.ParamErrCode, "conversation_id不能为空")
		}
	default:
		return nil, errorx.NewWithMsg(errno.ParamErrCode, "未知的信封类型")
	}
	return &in, nil
}

// Outbound 服务端下行信封
type Outbound struct {
	Type           string `json:"type"`
	SessionId      string `json:"session_id,omitempty"`
	ConversationId string `json:"conversation_id,omitempty"`
	Ord            int64  `json:"ord"`
	Chunk          string `json:"chunk,omitempty"`
	MessageId      string `json:"message_id,omitempty"`
	Status         string `json:"status,omitempty"`
	Code           int32  `json:"code,omitempty"`
	Msg            string `json:"msg,omitempty"`
}

// Connected 握手完成后的首个下行帧
func Connected(sessionId string) *Outbound {
	return &Outbound{Type: OutboundConnected, SessionId: sessionId}
}

// MessageChunk 一个文本增量, ord在单次生成内从0递增
func MessageChunk(cid string, ord int64, chunk string) *Outbound {
	return &Outbound{Type: OutboundMessageChunk, ConversationId: cid, Ord: ord, Chunk: chunk}
}

// MessageComplete 生成终结帧, status为complete/truncated/failed
func MessageComplete(cid, mid, status string) *Outbound {
	return &Outbound{Type: OutboundMessageComplete, ConversationId: cid, MessageId: mid, Status: status}
}

// ErrEnvelope 错误帧, 错误码取自errorx
func ErrEnvelope(cid string, err error) *Outbound {
	o := &Outbound{Type: OutboundError, ConversationId: cid, Code: errno.CompletionsErrCode}
	var ex errorx.IErrorx
	if errorx.AsErrorx(err, &ex) {
		o.Code, o.Msg = ex.GetCode(), ex.GetMsg()
	} else if err != nil {
		o.Msg = err.Error()
	}
	return o
}

// Backpressure 缓冲溢出丢弃chunk后的标记帧
func Backpressure(cid string) *Outbound {
	return &Outbound{Type: OutboundBackpressure, ConversationId: cid}
}

// EncodeOutbound 序列化下行信封
func EncodeOutbound(o *Outbound) ([]byte, error) {
	return sonic.Marshal(o)
}
